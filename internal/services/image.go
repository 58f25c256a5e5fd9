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
	ErrImageNotFound = errors.New("image not found")
	ErrNotImageOwner = errors.New("you do not own this image")
)

type ImageService struct {
	db DB
}

func NewImageService(db DB) *ImageService {
	return &ImageService{db: db}
}

// Add files an uploaded image into one of the caller's albums. The album
// capacity counts uploads and incoming share links alike.
func (s *ImageService) Add(ctx context.Context, ownerID uuid.UUID, params models.AddImageParams) (*models.Image, error) {
	var albumOwner uuid.UUID
	err := s.db.QueryRow(ctx,
		`SELECT owner_id FROM albums WHERE id = $1`,
		params.AlbumID,
	).Scan(&albumOwner)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrAlbumNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getting album: %w", err)
	}
	if albumOwner != ownerID {
		return nil, ErrNotAlbumOwner
	}

	count, err := albumItemCount(ctx, s.db, params.AlbumID)
	if err != nil {
		return nil, err
	}
	if count >= models.AlbumCapacity {
		return nil, ErrAlbumFull
	}

	image := &models.Image{}
	err = s.db.QueryRow(ctx,
		`INSERT INTO images (album_id, title, description, file_path, is_public)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id, album_id, title, description, file_path, is_public, uploaded_at`,
		params.AlbumID, strings.TrimSpace(params.Title), params.Description, params.FilePath, params.IsPublic,
	).Scan(&image.ID, &image.AlbumID, &image.Title, &image.Description,
		&image.FilePath, &image.IsPublic, &image.UploadedAt)
	if err != nil {
		return nil, fmt.Errorf("adding image: %w", err)
	}

	return image, nil
}

// OwnerOf resolves the user who owns an image through its home album.
func (s *ImageService) OwnerOf(ctx context.Context, imageID uuid.UUID) (uuid.UUID, error) {
	var ownerID uuid.UUID
	err := s.db.QueryRow(ctx,
		`SELECT a.owner_id FROM images i
		 JOIN albums a ON a.id = i.album_id
		 WHERE i.id = $1`,
		imageID,
	).Scan(&ownerID)
	if errors.Is(err, pgx.ErrNoRows) {
		return uuid.Nil, ErrImageNotFound
	}
	if err != nil {
		return uuid.Nil, fmt.Errorf("resolving image owner: %w", err)
	}
	return ownerID, nil
}

// ListByAlbum returns the images visible inside one of the caller's albums:
// its uploads plus any images linked into it by shares.
func (s *ImageService) ListByAlbum(ctx context.Context, callerID, albumID uuid.UUID) ([]models.Image, error) {
	var albumOwner uuid.UUID
	err := s.db.QueryRow(ctx,
		`SELECT owner_id FROM albums WHERE id = $1`,
		albumID,
	).Scan(&albumOwner)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrAlbumNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getting album: %w", err)
	}
	if albumOwner != callerID {
		return nil, ErrNotAlbumOwner
	}

	rows, err := s.db.Query(ctx,
		`SELECT i.id, i.album_id, i.title, i.description, i.file_path, i.is_public, i.uploaded_at
		 FROM images i
		 WHERE i.album_id = $1
		 UNION
		 SELECT i.id, i.album_id, i.title, i.description, i.file_path, i.is_public, i.uploaded_at
		 FROM share_links sl
		 JOIN images i ON i.id = sl.image_id
		 WHERE sl.album_id = $1
		 ORDER BY uploaded_at DESC`,
		albumID,
	)
	if err != nil {
		return nil, fmt.Errorf("listing album images: %w", err)
	}
	defer rows.Close()

	var results []models.Image
	for rows.Next() {
		var img models.Image
		if err := rows.Scan(&img.ID, &img.AlbumID, &img.Title, &img.Description,
			&img.FilePath, &img.IsPublic, &img.UploadedAt); err != nil {
			return nil, fmt.Errorf("scanning image: %w", err)
		}
		results = append(results, img)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading album images: %w", err)
	}

	if results == nil {
		results = []models.Image{}
	}
	return results, nil
}

// Delete removes the caller's own image. Share links pointing at it go with
// it, so it disappears from every album it was shared into.
func (s *ImageService) Delete(ctx context.Context, callerID, imageID uuid.UUID) error {
	ownerID, err := s.OwnerOf(ctx, imageID)
	if err != nil {
		return err
	}
	if ownerID != callerID {
		return ErrNotImageOwner
	}

	result, err := s.db.Exec(ctx, `DELETE FROM images WHERE id = $1`, imageID)
	if err != nil {
		return fmt.Errorf("deleting image: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrImageNotFound
	}
	return nil
}
