package models

import (
	"time"

	"github.com/google/uuid"
)

// NotificationType names the events a user can be notified about.
type NotificationType string

const (
	NotificationFriendRequestReceived NotificationType = "friend_request_received"
	NotificationFriendRequestAccepted NotificationType = "friend_request_accepted"
	NotificationImageShared           NotificationType = "image_shared"
	NotificationAlbumShared           NotificationType = "album_shared"
	NotificationCommentAdded          NotificationType = "comment_added"
)

// Notification is a persisted event row for one user. The optional ids point
// at whatever entity the event concerns.
type Notification struct {
	ID          uuid.UUID        `json:"id"`
	UserID      uuid.UUID        `json:"user_id"`
	Type        NotificationType `json:"type"`
	ActorUserID *uuid.UUID       `json:"actor_user_id,omitempty"`
	RequestID   *uuid.UUID       `json:"request_id,omitempty"`
	ImageID     *uuid.UUID       `json:"image_id,omitempty"`
	AlbumID     *uuid.UUID       `json:"album_id,omitempty"`
	ReadAt      *time.Time       `json:"read_at,omitempty"`
	CreatedAt   time.Time        `json:"created_at"`
}

// NotificationWithActor joins a notification with the acting user's name.
type NotificationWithActor struct {
	Notification
	ActorName string `json:"actor_name,omitempty"`
}
