package models

import (
	"time"

	"github.com/google/uuid"
)

// UserStatus describes whether an account can participate in the platform.
type UserStatus string

const (
	UserStatusActive   UserStatus = "active"
	UserStatusInactive UserStatus = "inactive"
)

// User is a registered artisan.
type User struct {
	ID           uuid.UUID  `json:"id"`
	Name         string     `json:"name"`
	Craft        string     `json:"craft"`
	Email        string     `json:"email"`
	PasswordHash string     `json:"-"`
	Status       UserStatus `json:"status"`
	Searchable   bool       `json:"searchable"`
	CreatedAt    time.Time  `json:"created_at"`
}

// CreateUserParams carries registration input.
type CreateUserParams struct {
	Name         string
	Craft        string
	Email        string
	PasswordHash string
}

// UserSearchResult is a user row annotated with the caller's friendship state.
type UserSearchResult struct {
	ID               uuid.UUID `json:"id"`
	Name             string    `json:"name"`
	Craft            string    `json:"craft"`
	FriendshipStatus string    `json:"friendship_status"`
}
