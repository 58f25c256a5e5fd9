package models

import (
	"time"

	"github.com/google/uuid"
)

// Image is one uploaded photo. The bytes live outside the system; FilePath
// is an opaque reference to wherever they are stored.
type Image struct {
	ID          uuid.UUID `json:"id"`
	AlbumID     uuid.UUID `json:"album_id"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	FilePath    string    `json:"file_path"`
	IsPublic    bool      `json:"is_public"`
	UploadedAt  time.Time `json:"uploaded_at"`
}

// AddImageParams carries upload input for an owned album.
type AddImageParams struct {
	AlbumID     uuid.UUID
	Title       string
	Description string
	FilePath    string
	IsPublic    bool
}

// ShareLink grants one recipient access to one image and files it into a
// destination album owned by the recipient. The image itself never moves.
type ShareLink struct {
	ID          uuid.UUID `json:"id"`
	ImageID     uuid.UUID `json:"image_id"`
	RecipientID uuid.UUID `json:"recipient_id"`
	AlbumID     uuid.UUID `json:"album_id"`
	SharedAt    time.Time `json:"shared_at"`
}

// SharedImage is an image joined with who shared it, for the shared-with-me view.
type SharedImage struct {
	Image
	SharedByID   uuid.UUID `json:"shared_by_id"`
	SharedByName string    `json:"shared_by_name"`
	SharedAt     time.Time `json:"shared_at"`
}

// FeedItem is an image as seen by a specific viewer: annotated with its
// owner, whether any explicit share admits it, and its comment count.
type FeedItem struct {
	Image
	AlbumTitle   string    `json:"album_title"`
	OwnerID      uuid.UUID `json:"owner_id"`
	OwnerName    string    `json:"owner_name"`
	IsShared     bool      `json:"is_shared"`
	CommentCount int       `json:"comment_count"`
}
