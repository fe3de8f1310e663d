package model

import (
	"strings"
	"time"
)

// Profile is the per-user profile document
type Profile struct {
	OwnerID     string    `json:"owner_id"`
	DisplayName string    `json:"display_name,omitempty"`
	Email       string    `json:"email,omitempty"`
	PhotoURL    string    `json:"photo_url,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// Profile constraints
const (
	MaxDisplayNameLength = 100
)

// UpdateProfileRequest represents a request to update the profile
type UpdateProfileRequest struct {
	DisplayName *string `json:"display_name,omitempty"`
}

// Validate validates the update profile request
func (r *UpdateProfileRequest) Validate() []FieldError {
	var errors []FieldError
	if r.DisplayName == nil {
		errors = append(errors, FieldError{Field: "display_name", Message: "display_name is required"})
		return errors
	}
	name := strings.TrimSpace(*r.DisplayName)
	if name == "" {
		errors = append(errors, FieldError{Field: "display_name", Message: "display_name must not be empty"})
	}
	if len(name) > MaxDisplayNameLength {
		errors = append(errors, FieldError{Field: "display_name", Message: "display_name must be at most 100 characters"})
	}
	return errors
}
