package models

import (
	"errors"
	"strings"
	"time"
)

// Validate checks if the comment meets all validation requirements
func (c *Comment) Validate() error {
	if err := validate.Struct(c); err != nil {
		return err
	}

	if c.CreatedAt.IsZero() {
		return errors.New("createdAt cannot be zero")
	}

	for i := range c.Replies {
		if err := validate.Struct(&c.Replies[i]); err != nil {
			return err
		}
	}

	return nil
}

// BeforeCreate sets up any necessary fields before creation
func (c *Comment) BeforeCreate() {
	now := time.Now()
	if c.CreatedAt.IsZero() {
		c.CreatedAt = now
	}
	c.UpdatedAt = now
	if c.Status == "" {
		c.Status = StatusPending
	}
	if c.Replies == nil {
		c.Replies = []Reply{}
	}
}

// SetStatus moves the comment to the given moderation state.
func (c *Comment) SetStatus(status CommentStatus) error {
	if !status.Valid() {
		return errors.New("unknown comment status: " + string(status))
	}
	c.Status = status
	c.UpdatedAt = time.Now()
	return nil
}

// IsApproved reports whether the comment counts towards its post.
func (c *Comment) IsApproved() bool {
	return c.Status == StatusApproved
}

// NewReply builds a reply stamped with the current time and validates it.
func NewReply(author, content string) (Reply, error) {
	reply := Reply{
		Author:    strings.TrimSpace(author),
		Content:   strings.TrimSpace(content),
		CreatedAt: time.Now(),
	}
	if err := validate.Struct(&reply); err != nil {
		return Reply{}, err
	}
	return reply, nil
}

// AddReply appends a reply. Replies are never edited or removed.
func (c *Comment) AddReply(reply Reply) {
	c.Replies = append(c.Replies, reply)
	c.UpdatedAt = time.Now()
}
