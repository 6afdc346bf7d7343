package models

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// Report JSON field names so messages match the request payload.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})
	return v
}

// CommentStatus is the moderation state of a comment.
type CommentStatus string

const (
	StatusPending  CommentStatus = "pending"
	StatusApproved CommentStatus = "approved"
	StatusSpam     CommentStatus = "spam"
)

// Valid reports whether s is one of the known moderation states.
func (s CommentStatus) Valid() bool {
	switch s {
	case StatusPending, StatusApproved, StatusSpam:
		return true
	}
	return false
}

// User is an account that can author posts.
type User struct {
	ID           int       `json:"id"`
	Name         string    `json:"name" validate:"required,min=2,max=50"`
	Email        string    `json:"email" validate:"required,email,max=254"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
}

// Post represents a blog post. CommentsCount mirrors the number of
// approved comments and is rewritten by the comment sync.
type Post struct {
	ID            int       `json:"id"`
	AuthorID      int       `json:"authorId" validate:"gte=0"`
	Title         string    `json:"title" validate:"required,min=3,max=200"`
	Content       string    `json:"content" validate:"required"`
	Published     bool      `json:"published"`
	Views         int       `json:"views" validate:"gte=0"`
	Likes         int       `json:"likes" validate:"gte=0"`
	CommentsCount int       `json:"commentsCount" validate:"gte=0"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// Comment represents a reader comment on a blog post.
type Comment struct {
	ID        int           `json:"id"`
	PostID    int           `json:"post" validate:"required,gt=0"`
	Author    string        `json:"author" validate:"required,max=100"`
	Content   string        `json:"content" validate:"required,max=2000"`
	Status    CommentStatus `json:"status" validate:"required,oneof=pending approved spam"`
	Likes     int           `json:"likes" validate:"gte=0"`
	Replies   []Reply       `json:"replies"`
	CreatedAt time.Time     `json:"createdAt"`
	UpdatedAt time.Time     `json:"updatedAt"`
}

// Reply is nested inside its parent comment and has no status of its own.
type Reply struct {
	Author    string    `json:"author" validate:"required,max=100"`
	Content   string    `json:"content" validate:"required,max=2000"`
	CreatedAt time.Time `json:"createdAt"`
}

// ValidationMessage turns validator output into a short, client-facing
// sentence such as "author is required".
func ValidationMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return err.Error()
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, describe(fe))
	}
	return strings.Join(msgs, "; ")
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", fe.Field())
	case "email":
		return fmt.Sprintf("%s must be a valid email address", fe.Field())
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", fe.Field(), fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", fe.Field(), fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", fe.Field(), strings.ReplaceAll(fe.Param(), " ", ", "))
	case "gt", "gte":
		return fmt.Sprintf("%s must not be negative", fe.Field())
	}
	return fmt.Sprintf("%s is invalid", fe.Field())
}
