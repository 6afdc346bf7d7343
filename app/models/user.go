package models

import (
	"strings"
	"time"
)

// Validate checks the user's profile fields.
func (u *User) Validate() error {
	return validate.Struct(u)
}

// Normalize trims the name and lower-cases the email so lookups are
// case-insensitive.
func (u *User) Normalize() {
	u.Name = strings.TrimSpace(u.Name)
	u.Email = strings.ToLower(strings.TrimSpace(u.Email))
}

// BeforeCreate sets up any necessary fields before creation
func (u *User) BeforeCreate() {
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now()
	}
}
