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
	ErrCannotFriendSelf    = errors.New("cannot send a friend request to yourself")
	ErrDuplicateRequest    = errors.New("a request already exists between these users")
	ErrCooldownActive      = errors.New("a rejected request is still in its waiting period")
	ErrRequestNotFound     = errors.New("friend request not found")
	ErrNotRequestRecipient = errors.New("only the recipient can respond to a request")
	ErrRequestNotPending   = errors.New("friend request is not pending")
	ErrNotFriends          = errors.New("users are not friends")
)

// FriendService drives the friendship request lifecycle. Accepting a request
// also materializes the friendship albums on both sides and links each
// party's public images into the other's album, all in one transaction.
type FriendService struct {
	db            DB
	albums        DerivedAlbumEnsurer
	sharer        BulkSharer
	notifications NotificationCreator
	realtime      Publisher
	async         func(fn func())
}

func NewFriendService(db DB, albums DerivedAlbumEnsurer, sharer BulkSharer, notifications NotificationCreator, realtime Publisher) *FriendService {
	return &FriendService{
		db:            db,
		albums:        albums,
		sharer:        sharer,
		notifications: notifications,
		realtime:      realtime,
		async:         func(fn func()) { go fn() },
	}
}

// SetSharer wires in the bulk-share primitive. The share service checks
// friendship through this service, so the two are constructed before wiring.
func (s *FriendService) SetSharer(sharer BulkSharer) {
	s.sharer = sharer
}

func (s *FriendService) SendRequest(ctx context.Context, requesterID, recipientID uuid.UUID) (*models.FriendshipRequest, error) {
	if requesterID == recipientID {
		return nil, ErrCannotFriendSelf
	}

	var status models.UserStatus
	err := s.db.QueryRow(ctx,
		`SELECT status FROM users WHERE id = $1`,
		recipientID,
	).Scan(&status)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("checking recipient: %w", err)
	}
	if status != models.UserStatusActive {
		return nil, ErrUserNotFound
	}

	// A live request in either direction, pending or already accepted,
	// blocks a new one.
	var exists bool
	err = s.db.QueryRow(ctx,
		`SELECT EXISTS(
			SELECT 1 FROM friendship_requests
			WHERE status IN ('pending', 'accepted')
			  AND ((requester_id = $1 AND recipient_id = $2)
			    OR (requester_id = $2 AND recipient_id = $1))
		)`,
		requesterID, recipientID,
	).Scan(&exists)
	if err != nil {
		return nil, fmt.Errorf("checking existing request: %w", err)
	}
	if exists {
		return nil, ErrDuplicateRequest
	}

	var inCooldown bool
	err = s.db.QueryRow(ctx,
		`SELECT EXISTS(
			SELECT 1 FROM friendship_requests
			WHERE status = 'rejected'
			  AND responded_at > NOW() - INTERVAL '30 days'
			  AND ((requester_id = $1 AND recipient_id = $2)
			    OR (requester_id = $2 AND recipient_id = $1))
		)`,
		requesterID, recipientID,
	).Scan(&inCooldown)
	if err != nil {
		return nil, fmt.Errorf("checking cooldown: %w", err)
	}
	if inCooldown {
		return nil, ErrCooldownActive
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin send request transaction: %w", err)
	}

	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback(ctx)
		}
	}()

	// Expired rejections are purged rather than kept as history, so the
	// pair returns to a clean slate.
	_, err = tx.Exec(ctx,
		`DELETE FROM friendship_requests
		 WHERE status = 'rejected'
		   AND ((requester_id = $1 AND recipient_id = $2)
		     OR (requester_id = $2 AND recipient_id = $1))`,
		requesterID, recipientID,
	)
	if err != nil {
		return nil, fmt.Errorf("purging expired rejections: %w", err)
	}

	// The insert re-checks the pending invariant so a concurrent request
	// between the precondition checks and here cannot slip through. The
	// partial unique index on the pair backs this up.
	request := &models.FriendshipRequest{}
	err = tx.QueryRow(ctx,
		`INSERT INTO friendship_requests (requester_id, recipient_id, status)
		 SELECT $1, $2, 'pending'
		 WHERE NOT EXISTS (
			SELECT 1 FROM friendship_requests
			WHERE status = 'pending'
			  AND ((requester_id = $1 AND recipient_id = $2)
			    OR (requester_id = $2 AND recipient_id = $1))
		 )
		 RETURNING id, requester_id, recipient_id, status, requested_at, responded_at`,
		requesterID, recipientID,
	).Scan(&request.ID, &request.RequesterID, &request.RecipientID,
		&request.Status, &request.RequestedAt, &request.RespondedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrDuplicateRequest
	}
	if err != nil {
		return nil, fmt.Errorf("inserting request: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("committing send request: %w", err)
	}
	committed = true

	s.dispatchEvent(recipientID, EventFriendRequestReceived, CreateNotificationParams{
		UserID:      recipientID,
		Type:        models.NotificationFriendRequestReceived,
		ActorUserID: &requesterID,
		RequestID:   &request.ID,
	}, request)

	return request, nil
}

func (s *FriendService) AcceptRequest(ctx context.Context, responderID, requestID uuid.UUID) (*models.FriendshipRequest, error) {
	request, err := s.getRequest(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if request.RecipientID != responderID {
		return nil, ErrNotRequestRecipient
	}
	if request.Status != models.FriendshipStatusPending {
		return nil, ErrRequestNotPending
	}

	var requesterName, recipientName string
	err = s.db.QueryRow(ctx,
		`SELECT req.name, rec.name
		 FROM users req, users rec
		 WHERE req.id = $1 AND rec.id = $2`,
		request.RequesterID, request.RecipientID,
	).Scan(&requesterName, &recipientName)
	if err != nil {
		return nil, fmt.Errorf("loading participant names: %w", err)
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin accept transaction: %w", err)
	}

	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback(ctx)
		}
	}()

	// First responder wins. A concurrent accept or reject flips the status
	// before this runs and the guarded update matches nothing.
	updated := &models.FriendshipRequest{}
	err = tx.QueryRow(ctx,
		`UPDATE friendship_requests
		 SET status = 'accepted', responded_at = NOW()
		 WHERE id = $1 AND status = 'pending'
		 RETURNING id, requester_id, recipient_id, status, requested_at, responded_at`,
		requestID,
	).Scan(&updated.ID, &updated.RequesterID, &updated.RecipientID,
		&updated.Status, &updated.RequestedAt, &updated.RespondedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrRequestNotPending
	}
	if err != nil {
		return nil, fmt.Errorf("accepting request: %w", err)
	}

	// Each side gets a friendship album seeded with the other party's
	// public images. The albums are keyed by (owner, source, kind) so a
	// re-friending after an unfriend reuses them.
	recipientAlbum, err := s.albums.EnsureDerivedAlbum(ctx, tx,
		request.RecipientID, request.RequesterID,
		models.AlbumKindFriendship, friendshipAlbumTitle(requesterName))
	if err != nil {
		return nil, err
	}
	if _, err := s.sharer.BulkSharePublicImages(ctx, tx, request.RequesterID, request.RecipientID, recipientAlbum); err != nil {
		return nil, err
	}

	requesterAlbum, err := s.albums.EnsureDerivedAlbum(ctx, tx,
		request.RequesterID, request.RecipientID,
		models.AlbumKindFriendship, friendshipAlbumTitle(recipientName))
	if err != nil {
		return nil, err
	}
	if _, err := s.sharer.BulkSharePublicImages(ctx, tx, request.RecipientID, request.RequesterID, requesterAlbum); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("committing accept: %w", err)
	}
	committed = true

	s.dispatchEvent(request.RequesterID, EventFriendRequestAccepted, CreateNotificationParams{
		UserID:      request.RequesterID,
		Type:        models.NotificationFriendRequestAccepted,
		ActorUserID: &responderID,
		RequestID:   &requestID,
	}, updated)

	return updated, nil
}

func (s *FriendService) RejectRequest(ctx context.Context, responderID, requestID uuid.UUID) error {
	request, err := s.getRequest(ctx, requestID)
	if err != nil {
		return err
	}
	if request.RecipientID != responderID {
		return ErrNotRequestRecipient
	}
	if request.Status != models.FriendshipStatusPending {
		return ErrRequestNotPending
	}

	result, err := s.db.Exec(ctx,
		`UPDATE friendship_requests
		 SET status = 'rejected', responded_at = NOW()
		 WHERE id = $1 AND status = 'pending'`,
		requestID,
	)
	if err != nil {
		return fmt.Errorf("rejecting request: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrRequestNotPending
	}

	return nil
}

func (s *FriendService) ListPendingRequests(ctx context.Context, userID uuid.UUID) ([]models.PendingRequest, error) {
	rows, err := s.db.Query(ctx,
		`SELECT fr.id, fr.requester_id, u.name, u.craft, fr.requested_at
		 FROM friendship_requests fr
		 JOIN users u ON u.id = fr.requester_id
		 WHERE fr.recipient_id = $1 AND fr.status = 'pending'
		 ORDER BY fr.requested_at DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("listing pending requests: %w", err)
	}
	defer rows.Close()

	var results []models.PendingRequest
	for rows.Next() {
		var req models.PendingRequest
		if err := rows.Scan(&req.ID, &req.RequesterID, &req.Name, &req.Craft, &req.RequestedAt); err != nil {
			return nil, fmt.Errorf("scanning pending request: %w", err)
		}
		results = append(results, req)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading pending requests: %w", err)
	}

	if results == nil {
		results = []models.PendingRequest{}
	}
	return results, nil
}

func (s *FriendService) ListFriends(ctx context.Context, userID uuid.UUID) ([]models.Friend, error) {
	rows, err := s.db.Query(ctx,
		`SELECT u.id, u.name, u.craft, fr.responded_at
		 FROM friendship_requests fr
		 JOIN users u ON u.id = CASE
			WHEN fr.requester_id = $1 THEN fr.recipient_id
			ELSE fr.requester_id
		 END
		 WHERE fr.status = 'accepted'
		   AND (fr.requester_id = $1 OR fr.recipient_id = $1)
		 ORDER BY fr.responded_at DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("listing friends: %w", err)
	}
	defer rows.Close()

	var results []models.Friend
	for rows.Next() {
		var f models.Friend
		if err := rows.Scan(&f.UserID, &f.Name, &f.Craft, &f.Since); err != nil {
			return nil, fmt.Errorf("scanning friend: %w", err)
		}
		results = append(results, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading friends: %w", err)
	}

	if results == nil {
		results = []models.Friend{}
	}
	return results, nil
}

func (s *FriendService) SearchUsers(ctx context.Context, callerID uuid.UUID, query string) ([]models.UserSearchResult, error) {
	query = strings.TrimSpace(query)
	if len(query) < 2 {
		return []models.UserSearchResult{}, nil
	}

	pattern := "%" + strings.ToLower(query) + "%"

	rows, err := s.db.Query(ctx,
		`SELECT u.id, u.name, u.craft,
		        COALESCE((
			SELECT fr.status FROM friendship_requests fr
			WHERE (fr.requester_id = $1 AND fr.recipient_id = u.id)
			   OR (fr.requester_id = u.id AND fr.recipient_id = $1)
			ORDER BY fr.requested_at DESC
			LIMIT 1
		        ), 'none')
		 FROM users u
		 WHERE u.id != $1
		   AND u.status = 'active'
		   AND u.searchable = true
		   AND LOWER(u.name) LIKE $2
		 ORDER BY u.name
		 LIMIT 20`,
		callerID, pattern,
	)
	if err != nil {
		return nil, fmt.Errorf("searching users: %w", err)
	}
	defer rows.Close()

	var results []models.UserSearchResult
	for rows.Next() {
		var user models.UserSearchResult
		if err := rows.Scan(&user.ID, &user.Name, &user.Craft, &user.FriendshipStatus); err != nil {
			return nil, fmt.Errorf("scanning user: %w", err)
		}
		results = append(results, user)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading users: %w", err)
	}

	if results == nil {
		results = []models.UserSearchResult{}
	}
	return results, nil
}

func (s *FriendService) IsFriend(ctx context.Context, userID, otherUserID uuid.UUID) (bool, error) {
	var isFriend bool
	err := s.db.QueryRow(ctx,
		`SELECT EXISTS(
			SELECT 1 FROM friendship_requests
			WHERE status = 'accepted'
			  AND ((requester_id = $1 AND recipient_id = $2)
			    OR (requester_id = $2 AND recipient_id = $1))
		)`,
		userID, otherUserID,
	).Scan(&isFriend)
	if err != nil {
		return false, fmt.Errorf("checking friendship: %w", err)
	}
	return isFriend, nil
}

func (s *FriendService) getRequest(ctx context.Context, requestID uuid.UUID) (*models.FriendshipRequest, error) {
	request := &models.FriendshipRequest{}
	err := s.db.QueryRow(ctx,
		`SELECT id, requester_id, recipient_id, status, requested_at, responded_at
		 FROM friendship_requests WHERE id = $1`,
		requestID,
	).Scan(&request.ID, &request.RequesterID, &request.RecipientID,
		&request.Status, &request.RequestedAt, &request.RespondedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrRequestNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getting request: %w", err)
	}
	return request, nil
}

// dispatchEvent records a notification and pushes a realtime event after the
// triggering transaction committed. Failures are logged by the services
// involved and never surface to the caller.
func (s *FriendService) dispatchEvent(userID uuid.UUID, event string, params CreateNotificationParams, payload any) {
	s.async(func() {
		ctx := context.Background()
		_, _ = s.notifications.Create(ctx, params)
		_ = s.realtime.PublishToUser(ctx, userID, event, payload)
	})
}

func friendshipAlbumTitle(name string) string {
	return "Friendship with " + name
}
