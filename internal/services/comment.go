package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/TallerAbierto/craftshare/internal/models"
)

var (
	ErrCommentNotFound  = errors.New("comment not found")
	ErrNotCommentAuthor = errors.New("you did not write this comment")
	ErrEmptyComment     = errors.New("comment body is empty")
)

type CommentService struct {
	db            DB
	access        ImageAccessChecker
	notifications NotificationCreator
	realtime      Publisher
	async         func(fn func())
}

func NewCommentService(db DB, access ImageAccessChecker, notifications NotificationCreator, realtime Publisher) *CommentService {
	return &CommentService{
		db:            db,
		access:        access,
		notifications: notifications,
		realtime:      realtime,
		async:         func(fn func()) { go fn() },
	}
}

func (s *CommentService) Add(ctx context.Context, authorID, imageID uuid.UUID, body string) (*models.Comment, error) {
	body = strings.TrimSpace(body)
	if body == "" {
		return nil, ErrEmptyComment
	}

	canAccess, err := s.access.CanAccessImage(ctx, authorID, imageID)
	if err != nil {
		return nil, err
	}
	if !canAccess {
		return nil, ErrImageNotFound
	}

	comment := &models.Comment{}
	err = s.db.QueryRow(ctx,
		`INSERT INTO comments (image_id, author_id, body)
		 VALUES ($1, $2, $3)
		 RETURNING id, image_id, author_id, body, created_at`,
		imageID, authorID, body,
	).Scan(&comment.ID, &comment.ImageID, &comment.AuthorID, &comment.Body, &comment.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("adding comment: %w", err)
	}

	s.async(func() {
		s.notifyImageOwner(context.Background(), authorID, imageID, comment)
	})

	return comment, nil
}

func (s *CommentService) ListByImage(ctx context.Context, viewerID, imageID uuid.UUID) ([]models.CommentWithAuthor, error) {
	canAccess, err := s.access.CanAccessImage(ctx, viewerID, imageID)
	if err != nil {
		return nil, err
	}
	if !canAccess {
		return nil, ErrImageNotFound
	}

	rows, err := s.db.Query(ctx,
		`SELECT c.id, c.image_id, c.author_id, c.body, c.created_at, u.name, u.craft
		 FROM comments c
		 JOIN users u ON u.id = c.author_id
		 WHERE c.image_id = $1
		 ORDER BY c.created_at`,
		imageID,
	)
	if err != nil {
		return nil, fmt.Errorf("listing comments: %w", err)
	}
	defer rows.Close()

	var results []models.CommentWithAuthor
	for rows.Next() {
		var c models.CommentWithAuthor
		if err := rows.Scan(&c.ID, &c.ImageID, &c.AuthorID, &c.Body, &c.CreatedAt,
			&c.AuthorName, &c.AuthorCraft); err != nil {
			return nil, fmt.Errorf("scanning comment: %w", err)
		}
		results = append(results, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading comments: %w", err)
	}

	if results == nil {
		results = []models.CommentWithAuthor{}
	}
	return results, nil
}

func (s *CommentService) Delete(ctx context.Context, callerID, commentID uuid.UUID) error {
	var authorID uuid.UUID
	err := s.db.QueryRow(ctx,
		`SELECT author_id FROM comments WHERE id = $1`,
		commentID,
	).Scan(&authorID)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrCommentNotFound
	}
	if err != nil {
		return fmt.Errorf("getting comment: %w", err)
	}
	if authorID != callerID {
		return ErrNotCommentAuthor
	}

	result, err := s.db.Exec(ctx, `DELETE FROM comments WHERE id = $1`, commentID)
	if err != nil {
		return fmt.Errorf("deleting comment: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrCommentNotFound
	}
	return nil
}

func (s *CommentService) notifyImageOwner(ctx context.Context, authorID, imageID uuid.UUID, comment *models.Comment) {
	var ownerID uuid.UUID
	err := s.db.QueryRow(ctx,
		`SELECT a.owner_id FROM images i
		 JOIN albums a ON a.id = i.album_id
		 WHERE i.id = $1`,
		imageID,
	).Scan(&ownerID)
	if err != nil || ownerID == authorID {
		return
	}

	_, _ = s.notifications.Create(ctx, CreateNotificationParams{
		UserID:      ownerID,
		Type:        models.NotificationCommentAdded,
		ActorUserID: &authorID,
		ImageID:     &imageID,
	})
	_ = s.realtime.PublishToUser(ctx, ownerID, EventCommentAdded, comment)
}
