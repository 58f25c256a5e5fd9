package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/TallerAbierto/craftshare/internal/models"
)

var ErrNotificationNotFound = errors.New("notification not found")

type NotificationService struct {
	db DB
}

func NewNotificationService(db DB) *NotificationService {
	return &NotificationService{db: db}
}

// CreateNotificationParams carries the event being recorded. The optional ids
// point at whichever entity the event concerns.
type CreateNotificationParams struct {
	UserID      uuid.UUID
	Type        models.NotificationType
	ActorUserID *uuid.UUID
	RequestID   *uuid.UUID
	ImageID     *uuid.UUID
	AlbumID     *uuid.UUID
}

func (s *NotificationService) Create(ctx context.Context, params CreateNotificationParams) (*models.Notification, error) {
	n := &models.Notification{}
	err := s.db.QueryRow(ctx,
		`INSERT INTO notifications (user_id, type, actor_user_id, request_id, image_id, album_id)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING id, user_id, type, actor_user_id, request_id, image_id, album_id, read_at, created_at`,
		params.UserID, params.Type, params.ActorUserID, params.RequestID, params.ImageID, params.AlbumID,
	).Scan(&n.ID, &n.UserID, &n.Type, &n.ActorUserID, &n.RequestID, &n.ImageID, &n.AlbumID,
		&n.ReadAt, &n.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("creating notification: %w", err)
	}
	return n, nil
}

func (s *NotificationService) List(ctx context.Context, userID uuid.UUID, limit int) ([]models.NotificationWithActor, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}

	rows, err := s.db.Query(ctx,
		`SELECT n.id, n.user_id, n.type, n.actor_user_id, n.request_id, n.image_id, n.album_id,
		        n.read_at, n.created_at, COALESCE(u.name, '')
		 FROM notifications n
		 LEFT JOIN users u ON u.id = n.actor_user_id
		 WHERE n.user_id = $1
		 ORDER BY n.created_at DESC
		 LIMIT $2`,
		userID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("listing notifications: %w", err)
	}
	defer rows.Close()

	var results []models.NotificationWithActor
	for rows.Next() {
		var n models.NotificationWithActor
		if err := rows.Scan(&n.ID, &n.UserID, &n.Type, &n.ActorUserID, &n.RequestID,
			&n.ImageID, &n.AlbumID, &n.ReadAt, &n.CreatedAt, &n.ActorName); err != nil {
			return nil, fmt.Errorf("scanning notification: %w", err)
		}
		results = append(results, n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading notifications: %w", err)
	}

	if results == nil {
		results = []models.NotificationWithActor{}
	}
	return results, nil
}

func (s *NotificationService) UnreadCount(ctx context.Context, userID uuid.UUID) (int, error) {
	var count int
	err := s.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM notifications WHERE user_id = $1 AND read_at IS NULL`,
		userID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("counting unread notifications: %w", err)
	}
	return count, nil
}

func (s *NotificationService) MarkRead(ctx context.Context, userID, notificationID uuid.UUID) error {
	result, err := s.db.Exec(ctx,
		`UPDATE notifications SET read_at = NOW()
		 WHERE id = $1 AND user_id = $2 AND read_at IS NULL`,
		notificationID, userID,
	)
	if err != nil {
		return fmt.Errorf("marking notification read: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrNotificationNotFound
	}
	return nil
}

func (s *NotificationService) MarkAllRead(ctx context.Context, userID uuid.UUID) (int64, error) {
	result, err := s.db.Exec(ctx,
		`UPDATE notifications SET read_at = NOW()
		 WHERE user_id = $1 AND read_at IS NULL`,
		userID,
	)
	if err != nil {
		return 0, fmt.Errorf("marking notifications read: %w", err)
	}
	return result.RowsAffected(), nil
}
