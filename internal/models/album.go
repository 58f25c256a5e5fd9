package models

import (
	"time"

	"github.com/google/uuid"
)

// AlbumKind distinguishes user-created albums from system-materialized ones.
type AlbumKind string

const (
	// AlbumKindNormal is a user-created album.
	AlbumKindNormal AlbumKind = "normal"
	// AlbumKindFriendship is materialized on the acceptor's side of a new
	// friendship and holds the other party's public images.
	AlbumKindFriendship AlbumKind = "friendship"
	// AlbumKindShared collects images one specific friend shared with the owner.
	AlbumKindShared AlbumKind = "shared"
)

// AlbumCapacity is the maximum number of images an album may reference,
// counting both uploads and incoming share links.
const AlbumCapacity = 20

// Album is an image container owned by one user. Derived albums (friendship,
// shared) carry the user they were materialized for in SourceUserID and are
// reused across operations for the same (owner, source, kind) key.
type Album struct {
	ID           uuid.UUID  `json:"id"`
	OwnerID      uuid.UUID  `json:"owner_id"`
	Title        string     `json:"title"`
	Kind         AlbumKind  `json:"kind"`
	SourceUserID *uuid.UUID `json:"source_user_id,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
}

// AlbumWithCount is an album annotated with its current image count.
type AlbumWithCount struct {
	Album
	ImageCount int `json:"image_count"`
}
