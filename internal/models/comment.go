package models

import (
	"time"

	"github.com/google/uuid"
)

// Comment is a remark left on an image by a user who can see it.
type Comment struct {
	ID        uuid.UUID `json:"id"`
	ImageID   uuid.UUID `json:"image_id"`
	AuthorID  uuid.UUID `json:"author_id"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"created_at"`
}

// CommentWithAuthor joins a comment with its author's profile for display.
type CommentWithAuthor struct {
	Comment
	AuthorName  string `json:"author_name"`
	AuthorCraft string `json:"author_craft"`
}
