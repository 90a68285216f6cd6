package model

import (
	"time"

	"github.com/google/uuid"
)

// User represents an account. DisplayName and PhotoURL are snapshotted onto
// attempts at completion time.
type User struct {
	ID           uuid.UUID `json:"id"`
	Email        string    `json:"email"`
	DisplayName  string    `json:"display_name"`
	PhotoURL     string    `json:"photo_url,omitempty"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// RegisterRequest is the payload for creating an account.
type RegisterRequest struct {
	Email       string `json:"email" binding:"required,email,max=255"`
	DisplayName string `json:"display_name" binding:"required,min=1,max=100"`
	Password    string `json:"password" binding:"required,min=6,max=72"`
}

// LoginRequest is the payload for authentication.
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// UpdateProfileRequest is the payload for profile edits.
type UpdateProfileRequest struct {
	DisplayName string  `json:"display_name" binding:"omitempty,min=1,max=100"`
	PhotoURL    *string `json:"photo_url" binding:"omitempty,max=500"`
}
