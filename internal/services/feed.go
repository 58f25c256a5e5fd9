package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/TallerAbierto/craftshare/internal/models"
)

// FeedService resolves what a viewer can see. An image is admitted when the
// viewer owns it, an accepted friend owns it, or a share link grants it
// explicitly; the three predicates are evaluated together in one query and
// duplicates collapse to a single row.
type FeedService struct {
	db DB
}

func NewFeedService(db DB) *FeedService {
	return &FeedService{db: db}
}

const feedVisibilityPredicate = `
	a.owner_id = $1
	OR EXISTS (
		SELECT 1 FROM friendship_requests fr
		WHERE fr.status = 'accepted'
		  AND ((fr.requester_id = $1 AND fr.recipient_id = a.owner_id)
		    OR (fr.requester_id = a.owner_id AND fr.recipient_id = $1))
	)
	OR EXISTS (
		SELECT 1 FROM share_links sl
		WHERE sl.image_id = i.id AND sl.recipient_id = $1
	)`

func (s *FeedService) ResolveFeed(ctx context.Context, viewerID uuid.UUID) ([]models.FeedItem, error) {
	rows, err := s.db.Query(ctx,
		`SELECT i.id, i.album_id, i.title, i.description, i.file_path, i.is_public, i.uploaded_at,
		        a.title, a.owner_id, u.name,
		        EXISTS (
			SELECT 1 FROM share_links sl
			WHERE sl.image_id = i.id AND sl.recipient_id = $1
		        ),
		        (SELECT COUNT(*) FROM comments c WHERE c.image_id = i.id)
		 FROM images i
		 JOIN albums a ON a.id = i.album_id
		 JOIN users u ON u.id = a.owner_id
		 WHERE `+feedVisibilityPredicate+`
		 ORDER BY i.uploaded_at DESC`,
		viewerID,
	)
	if err != nil {
		return nil, fmt.Errorf("resolving feed: %w", err)
	}
	defer rows.Close()

	var items []models.FeedItem
	for rows.Next() {
		var item models.FeedItem
		if err := rows.Scan(&item.ID, &item.AlbumID, &item.Title, &item.Description,
			&item.FilePath, &item.IsPublic, &item.UploadedAt,
			&item.AlbumTitle, &item.OwnerID, &item.OwnerName,
			&item.IsShared, &item.CommentCount); err != nil {
			return nil, fmt.Errorf("scanning feed item: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading feed: %w", err)
	}

	if items == nil {
		items = []models.FeedItem{}
	}
	return items, nil
}

// GetImage resolves one image for a viewer. Absence and lack of access are
// indistinguishable on purpose.
func (s *FeedService) GetImage(ctx context.Context, viewerID, imageID uuid.UUID) (*models.FeedItem, error) {
	item := &models.FeedItem{}
	err := s.db.QueryRow(ctx,
		`SELECT i.id, i.album_id, i.title, i.description, i.file_path, i.is_public, i.uploaded_at,
		        a.title, a.owner_id, u.name,
		        EXISTS (
			SELECT 1 FROM share_links sl
			WHERE sl.image_id = i.id AND sl.recipient_id = $1
		        ),
		        (SELECT COUNT(*) FROM comments c WHERE c.image_id = i.id)
		 FROM images i
		 JOIN albums a ON a.id = i.album_id
		 JOIN users u ON u.id = a.owner_id
		 WHERE i.id = $2 AND (`+feedVisibilityPredicate+`)`,
		viewerID, imageID,
	).Scan(&item.ID, &item.AlbumID, &item.Title, &item.Description,
		&item.FilePath, &item.IsPublic, &item.UploadedAt,
		&item.AlbumTitle, &item.OwnerID, &item.OwnerName,
		&item.IsShared, &item.CommentCount)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrImageNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getting image: %w", err)
	}
	return item, nil
}

// CanAccessImage is the looser predicate used by the comment path: the owner,
// anyone the image was shared with, and anyone at all when it is public.
func (s *FeedService) CanAccessImage(ctx context.Context, viewerID, imageID uuid.UUID) (bool, error) {
	var canAccess bool
	err := s.db.QueryRow(ctx,
		`SELECT EXISTS (
			SELECT 1 FROM images i
			JOIN albums a ON a.id = i.album_id
			WHERE i.id = $2
			  AND (a.owner_id = $1
			    OR i.is_public = true
			    OR EXISTS (
				SELECT 1 FROM share_links sl
				WHERE sl.image_id = i.id AND sl.recipient_id = $1
			    ))
		)`,
		viewerID, imageID,
	).Scan(&canAccess)
	if err != nil {
		return false, fmt.Errorf("checking image access: %w", err)
	}
	return canAccess, nil
}
