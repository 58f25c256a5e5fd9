package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const userChannelPrefix = "user:"

// Event names published over the per-user channels.
const (
	EventFriendRequestReceived = "friend_request_received"
	EventFriendRequestAccepted = "friend_request_accepted"
	EventImageShared           = "image_shared"
	EventAlbumShared           = "album_shared"
	EventCommentAdded          = "comment_added"
)

// RealtimeService pushes events to connected clients over Redis pub/sub.
// Each user has one channel; whatever serves the client connections
// subscribes to it. Publishing is best effort and never blocks or fails
// the business operation that triggered it.
type RealtimeService struct {
	redis *redis.Client
}

func NewRealtimeService(redis *redis.Client) *RealtimeService {
	return &RealtimeService{redis: redis}
}

type eventEnvelope struct {
	Event   string    `json:"event"`
	Payload any       `json:"payload,omitempty"`
	SentAt  time.Time `json:"sent_at"`
}

func (s *RealtimeService) PublishToUser(ctx context.Context, userID uuid.UUID, event string, payload any) error {
	data, err := json.Marshal(eventEnvelope{
		Event:   event,
		Payload: payload,
		SentAt:  time.Now().UTC(),
	})
	if err != nil {
		return fmt.Errorf("encoding event: %w", err)
	}

	if err := s.redis.Publish(ctx, userChannelPrefix+userID.String(), data).Err(); err != nil {
		return fmt.Errorf("publishing event: %w", err)
	}
	return nil
}
