package models

import (
	"time"

	"github.com/google/uuid"
)

// FriendshipStatus is the lifecycle state of a friendship request.
type FriendshipStatus string

const (
	FriendshipStatusPending  FriendshipStatus = "pending"
	FriendshipStatusAccepted FriendshipStatus = "accepted"
	FriendshipStatusRejected FriendshipStatus = "rejected"
)

// RejectionCooldown is how long a rejected pair must wait before the
// requester may try again.
const RejectionCooldown = 30 * 24 * time.Hour

// FriendshipRequest is one directed request between two users. A pair has at
// most one pending request at a time, in either direction.
type FriendshipRequest struct {
	ID          uuid.UUID        `json:"id"`
	RequesterID uuid.UUID        `json:"requester_id"`
	RecipientID uuid.UUID        `json:"recipient_id"`
	Status      FriendshipStatus `json:"status"`
	RequestedAt time.Time        `json:"requested_at"`
	RespondedAt *time.Time       `json:"responded_at,omitempty"`
}

// PendingRequest is an incoming request joined with the requester's profile.
type PendingRequest struct {
	ID          uuid.UUID `json:"id"`
	RequesterID uuid.UUID `json:"requester_id"`
	Name        string    `json:"name"`
	Craft       string    `json:"craft"`
	RequestedAt time.Time `json:"requested_at"`
}

// Friend is the other party of an accepted friendship.
type Friend struct {
	UserID uuid.UUID `json:"user_id"`
	Name   string    `json:"name"`
	Craft  string    `json:"craft"`
	Since  time.Time `json:"since"`
}
