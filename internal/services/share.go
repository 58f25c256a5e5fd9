package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/TallerAbierto/craftshare/internal/models"
)

var (
	ErrAlreadyShared = errors.New("already shared with this user")
	ErrEmptyAlbum    = errors.New("album has no images to share")
)

// ShareService materializes share links. A share never copies the image; it
// files a link into a shared-kind album owned by the recipient and keyed by
// the sharing user, created on first use and reused afterwards.
type ShareService struct {
	db            DB
	albums        DerivedAlbumEnsurer
	friends       FriendChecker
	notifications NotificationCreator
	realtime      Publisher
	async         func(fn func())
}

func NewShareService(db DB, albums DerivedAlbumEnsurer, friends FriendChecker, notifications NotificationCreator, realtime Publisher) *ShareService {
	return &ShareService{
		db:            db,
		albums:        albums,
		friends:       friends,
		notifications: notifications,
		realtime:      realtime,
		async:         func(fn func()) { go fn() },
	}
}

func (s *ShareService) ShareImage(ctx context.Context, actorID, imageID, targetID uuid.UUID) (*models.ShareLink, error) {
	var imageOwner uuid.UUID
	err := s.db.QueryRow(ctx,
		`SELECT a.owner_id FROM images i
		 JOIN albums a ON a.id = i.album_id
		 WHERE i.id = $1`,
		imageID,
	).Scan(&imageOwner)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrImageNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getting image: %w", err)
	}
	if imageOwner != actorID {
		return nil, ErrNotImageOwner
	}

	actorName, err := s.checkShareTarget(ctx, actorID, targetID)
	if err != nil {
		return nil, err
	}

	// Duplicate shares are rejected before the capacity check so re-sharing
	// into a full album reports the duplicate, not the full album.
	var alreadyShared bool
	err = s.db.QueryRow(ctx,
		`SELECT EXISTS(
			SELECT 1 FROM share_links WHERE image_id = $1 AND recipient_id = $2
		)`,
		imageID, targetID,
	).Scan(&alreadyShared)
	if err != nil {
		return nil, fmt.Errorf("checking existing share: %w", err)
	}
	if alreadyShared {
		return nil, ErrAlreadyShared
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin share transaction: %w", err)
	}

	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback(ctx)
		}
	}()

	albumID, err := s.albums.EnsureDerivedAlbum(ctx, tx, targetID, actorID,
		models.AlbumKindShared, sharedAlbumTitle(actorName))
	if err != nil {
		return nil, err
	}

	count, err := albumItemCount(ctx, tx, albumID)
	if err != nil {
		return nil, err
	}
	if count >= models.AlbumCapacity {
		return nil, ErrAlbumFull
	}

	link := &models.ShareLink{}
	err = tx.QueryRow(ctx,
		`INSERT INTO share_links (image_id, recipient_id, album_id)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (image_id, recipient_id) DO NOTHING
		 RETURNING id, image_id, recipient_id, album_id, shared_at`,
		imageID, targetID, albumID,
	).Scan(&link.ID, &link.ImageID, &link.RecipientID, &link.AlbumID, &link.SharedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		// Lost a race with an identical share.
		return nil, ErrAlreadyShared
	}
	if err != nil {
		return nil, fmt.Errorf("inserting share link: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("committing share: %w", err)
	}
	committed = true

	s.dispatchEvent(targetID, EventImageShared, CreateNotificationParams{
		UserID:      targetID,
		Type:        models.NotificationImageShared,
		ActorUserID: &actorID,
		ImageID:     &imageID,
		AlbumID:     &albumID,
	}, link)

	return link, nil
}

// ShareAlbum links every image of one of the actor's albums to the target.
// Images the target already has are skipped; if nothing new gets linked the
// whole call reports a duplicate share.
func (s *ShareService) ShareAlbum(ctx context.Context, actorID, albumID, targetID uuid.UUID) (int64, error) {
	var albumOwner uuid.UUID
	err := s.db.QueryRow(ctx,
		`SELECT owner_id FROM albums WHERE id = $1`,
		albumID,
	).Scan(&albumOwner)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, ErrAlbumNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("getting album: %w", err)
	}
	if albumOwner != actorID {
		return 0, ErrNotAlbumOwner
	}

	var imageCount int
	err = s.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM images WHERE album_id = $1`,
		albumID,
	).Scan(&imageCount)
	if err != nil {
		return 0, fmt.Errorf("counting album images: %w", err)
	}
	if imageCount == 0 {
		return 0, ErrEmptyAlbum
	}

	actorName, err := s.checkShareTarget(ctx, actorID, targetID)
	if err != nil {
		return 0, err
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("begin share album transaction: %w", err)
	}

	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback(ctx)
		}
	}()

	destAlbumID, err := s.albums.EnsureDerivedAlbum(ctx, tx, targetID, actorID,
		models.AlbumKindShared, sharedAlbumTitle(actorName))
	if err != nil {
		return 0, err
	}

	count, err := albumItemCount(ctx, tx, destAlbumID)
	if err != nil {
		return 0, err
	}
	remaining := models.AlbumCapacity - count
	if remaining <= 0 {
		return 0, ErrAlbumFull
	}

	result, err := tx.Exec(ctx,
		`INSERT INTO share_links (image_id, recipient_id, album_id)
		 SELECT i.id, $2, $3
		 FROM images i
		 WHERE i.album_id = $1
		   AND NOT EXISTS (
			SELECT 1 FROM share_links sl
			WHERE sl.image_id = i.id AND sl.recipient_id = $2
		   )
		 ORDER BY i.uploaded_at
		 LIMIT $4
		 ON CONFLICT (image_id, recipient_id) DO NOTHING`,
		albumID, targetID, destAlbumID, remaining,
	)
	if err != nil {
		return 0, fmt.Errorf("inserting share links: %w", err)
	}

	linked := result.RowsAffected()
	if linked == 0 {
		return 0, ErrAlreadyShared
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("committing album share: %w", err)
	}
	committed = true

	s.dispatchEvent(targetID, EventAlbumShared, CreateNotificationParams{
		UserID:      targetID,
		Type:        models.NotificationAlbumShared,
		ActorUserID: &actorID,
		AlbumID:     &destAlbumID,
	}, map[string]any{"album_id": destAlbumID, "linked": linked})

	return linked, nil
}

// BulkSharePublicImages links all of the source user's public images to the
// recipient, filed into the given album. It runs against the caller's
// Querier so the friendship engine can call it inside its accept
// transaction. Existing links are left alone.
func (s *ShareService) BulkSharePublicImages(ctx context.Context, q Querier, sourceUserID, recipientID, albumID uuid.UUID) (int64, error) {
	count, err := albumItemCount(ctx, q, albumID)
	if err != nil {
		return 0, err
	}
	remaining := models.AlbumCapacity - count
	if remaining <= 0 {
		return 0, nil
	}

	result, err := q.Exec(ctx,
		`INSERT INTO share_links (image_id, recipient_id, album_id)
		 SELECT i.id, $2, $3
		 FROM images i
		 JOIN albums a ON a.id = i.album_id
		 WHERE a.owner_id = $1 AND i.is_public = true
		   AND NOT EXISTS (
			SELECT 1 FROM share_links sl
			WHERE sl.image_id = i.id AND sl.recipient_id = $2
		   )
		 ORDER BY i.uploaded_at DESC
		 LIMIT $4
		 ON CONFLICT (image_id, recipient_id) DO NOTHING`,
		sourceUserID, recipientID, albumID, remaining,
	)
	if err != nil {
		return 0, fmt.Errorf("bulk sharing public images: %w", err)
	}
	return result.RowsAffected(), nil
}

func (s *ShareService) ListSharedWithUser(ctx context.Context, userID uuid.UUID) ([]models.SharedImage, error) {
	rows, err := s.db.Query(ctx,
		`SELECT i.id, i.album_id, i.title, i.description, i.file_path, i.is_public, i.uploaded_at,
		        a.owner_id, u.name, sl.shared_at
		 FROM share_links sl
		 JOIN images i ON i.id = sl.image_id
		 JOIN albums a ON a.id = i.album_id
		 JOIN users u ON u.id = a.owner_id
		 WHERE sl.recipient_id = $1
		 ORDER BY sl.shared_at DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("listing shared images: %w", err)
	}
	defer rows.Close()

	var results []models.SharedImage
	for rows.Next() {
		var img models.SharedImage
		if err := rows.Scan(&img.ID, &img.AlbumID, &img.Title, &img.Description,
			&img.FilePath, &img.IsPublic, &img.UploadedAt,
			&img.SharedByID, &img.SharedByName, &img.SharedAt); err != nil {
			return nil, fmt.Errorf("scanning shared image: %w", err)
		}
		results = append(results, img)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading shared images: %w", err)
	}

	if results == nil {
		results = []models.SharedImage{}
	}
	return results, nil
}

// checkShareTarget validates the recipient and returns the actor's display
// name for the destination album title.
func (s *ShareService) checkShareTarget(ctx context.Context, actorID, targetID uuid.UUID) (string, error) {
	if actorID == targetID {
		return "", ErrNotFriends
	}

	var status models.UserStatus
	err := s.db.QueryRow(ctx,
		`SELECT status FROM users WHERE id = $1`,
		targetID,
	).Scan(&status)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", ErrUserNotFound
	}
	if err != nil {
		return "", fmt.Errorf("checking target: %w", err)
	}
	if status != models.UserStatusActive {
		return "", ErrUserNotFound
	}

	isFriend, err := s.friends.IsFriend(ctx, actorID, targetID)
	if err != nil {
		return "", err
	}
	if !isFriend {
		return "", ErrNotFriends
	}

	var actorName string
	err = s.db.QueryRow(ctx,
		`SELECT name FROM users WHERE id = $1`,
		actorID,
	).Scan(&actorName)
	if err != nil {
		return "", fmt.Errorf("loading actor name: %w", err)
	}

	return actorName, nil
}

func (s *ShareService) dispatchEvent(userID uuid.UUID, event string, params CreateNotificationParams, payload any) {
	s.async(func() {
		ctx := context.Background()
		_, _ = s.notifications.Create(ctx, params)
		_ = s.realtime.PublishToUser(ctx, userID, event, payload)
	})
}

func sharedAlbumTitle(name string) string {
	return "Shared by " + name
}
