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
	ErrAlbumNotFound  = errors.New("album not found")
	ErrNotAlbumOwner  = errors.New("you do not own this album")
	ErrDuplicateTitle = errors.New("an album with this title already exists")
	ErrAlbumFull      = errors.New("album is full")
)

type AlbumService struct {
	db DB
}

func NewAlbumService(db DB) *AlbumService {
	return &AlbumService{db: db}
}

func (s *AlbumService) Create(ctx context.Context, ownerID uuid.UUID, title string) (*models.Album, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, ErrDuplicateTitle
	}

	var exists bool
	err := s.db.QueryRow(ctx,
		`SELECT EXISTS(
			SELECT 1 FROM albums
			WHERE owner_id = $1 AND title = $2 AND kind = 'normal'
		)`,
		ownerID, title,
	).Scan(&exists)
	if err != nil {
		return nil, fmt.Errorf("checking album title: %w", err)
	}
	if exists {
		return nil, ErrDuplicateTitle
	}

	album := &models.Album{}
	err = s.db.QueryRow(ctx,
		`INSERT INTO albums (owner_id, title, kind)
		 VALUES ($1, $2, 'normal')
		 RETURNING id, owner_id, title, kind, source_user_id, created_at`,
		ownerID, title,
	).Scan(&album.ID, &album.OwnerID, &album.Title, &album.Kind, &album.SourceUserID, &album.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("creating album: %w", err)
	}

	return album, nil
}

func (s *AlbumService) GetByID(ctx context.Context, albumID uuid.UUID) (*models.Album, error) {
	album := &models.Album{}
	err := s.db.QueryRow(ctx,
		`SELECT id, owner_id, title, kind, source_user_id, created_at
		 FROM albums WHERE id = $1`,
		albumID,
	).Scan(&album.ID, &album.OwnerID, &album.Title, &album.Kind, &album.SourceUserID, &album.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrAlbumNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getting album: %w", err)
	}
	return album, nil
}

// ListByOwner returns the owner's albums, each counted across uploads and
// incoming share links.
func (s *AlbumService) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]models.AlbumWithCount, error) {
	rows, err := s.db.Query(ctx,
		`SELECT a.id, a.owner_id, a.title, a.kind, a.source_user_id, a.created_at,
		        (SELECT COUNT(*) FROM images i WHERE i.album_id = a.id)
		      + (SELECT COUNT(*) FROM share_links sl WHERE sl.album_id = a.id)
		 FROM albums a
		 WHERE a.owner_id = $1
		 ORDER BY a.created_at DESC`,
		ownerID,
	)
	if err != nil {
		return nil, fmt.Errorf("listing albums: %w", err)
	}
	defer rows.Close()

	var results []models.AlbumWithCount
	for rows.Next() {
		var a models.AlbumWithCount
		if err := rows.Scan(&a.ID, &a.OwnerID, &a.Title, &a.Kind, &a.SourceUserID,
			&a.CreatedAt, &a.ImageCount); err != nil {
			return nil, fmt.Errorf("scanning album: %w", err)
		}
		results = append(results, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading albums: %w", err)
	}

	if results == nil {
		results = []models.AlbumWithCount{}
	}
	return results, nil
}

func (s *AlbumService) Delete(ctx context.Context, ownerID, albumID uuid.UUID) error {
	album, err := s.GetByID(ctx, albumID)
	if err != nil {
		return err
	}
	if album.OwnerID != ownerID {
		return ErrNotAlbumOwner
	}

	_, err = s.db.Exec(ctx, `DELETE FROM albums WHERE id = $1`, albumID)
	if err != nil {
		return fmt.Errorf("deleting album: %w", err)
	}
	return nil
}

// EnsureDerivedAlbum resolves or creates the album materialized for
// (owner, source, kind). The key is stable; the title is a display attribute
// regenerated on every call so it tracks the source user's current name.
// Runs against any Querier so callers can use it inside their transactions.
func (s *AlbumService) EnsureDerivedAlbum(ctx context.Context, q Querier, ownerID, sourceUserID uuid.UUID, kind models.AlbumKind, title string) (uuid.UUID, error) {
	var albumID uuid.UUID
	err := q.QueryRow(ctx,
		`INSERT INTO albums (owner_id, title, kind, source_user_id)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (owner_id, source_user_id, kind) WHERE source_user_id IS NOT NULL
		 DO UPDATE SET title = EXCLUDED.title
		 RETURNING id`,
		ownerID, title, kind, sourceUserID,
	).Scan(&albumID)
	if err != nil {
		return uuid.Nil, fmt.Errorf("ensuring derived album: %w", err)
	}
	return albumID, nil
}

// albumItemCount counts everything occupying capacity in an album: uploaded
// images plus share links filed into it.
func albumItemCount(ctx context.Context, q Querier, albumID uuid.UUID) (int, error) {
	var count int
	err := q.QueryRow(ctx,
		`SELECT (SELECT COUNT(*) FROM images WHERE album_id = $1)
		      + (SELECT COUNT(*) FROM share_links WHERE album_id = $1)`,
		albumID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("counting album items: %w", err)
	}
	return count, nil
}
