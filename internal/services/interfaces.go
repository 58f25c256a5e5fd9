package services

import (
	"context"

	"github.com/google/uuid"

	"github.com/TallerAbierto/craftshare/internal/models"
)

// UserServiceInterface defines the contract for user operations.
type UserServiceInterface interface {
	Create(ctx context.Context, params models.CreateUserParams) (*models.User, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	UpdateSearchable(ctx context.Context, userID uuid.UUID, searchable bool) error
	Deactivate(ctx context.Context, userID uuid.UUID) error
}

// AuthServiceInterface defines the contract for authentication operations.
type AuthServiceInterface interface {
	HashPassword(password string) (string, error)
	VerifyPassword(hash, password string) bool
	CreateSession(ctx context.Context, userID uuid.UUID) (token string, err error)
	ValidateSession(ctx context.Context, token string) (*models.User, error)
	DeleteSession(ctx context.Context, token string) error
	DeleteAllUserSessions(ctx context.Context, userID uuid.UUID) error
}

// FriendServiceInterface defines the contract for friendship lifecycle operations.
type FriendServiceInterface interface {
	SendRequest(ctx context.Context, requesterID, recipientID uuid.UUID) (*models.FriendshipRequest, error)
	AcceptRequest(ctx context.Context, responderID, requestID uuid.UUID) (*models.FriendshipRequest, error)
	RejectRequest(ctx context.Context, responderID, requestID uuid.UUID) error
	ListPendingRequests(ctx context.Context, userID uuid.UUID) ([]models.PendingRequest, error)
	ListFriends(ctx context.Context, userID uuid.UUID) ([]models.Friend, error)
	SearchUsers(ctx context.Context, callerID uuid.UUID, query string) ([]models.UserSearchResult, error)
	IsFriend(ctx context.Context, userID, otherUserID uuid.UUID) (bool, error)
}

// ShareServiceInterface defines the contract for share operations used by handlers.
type ShareServiceInterface interface {
	ShareImage(ctx context.Context, actorID, imageID, targetID uuid.UUID) (*models.ShareLink, error)
	ShareAlbum(ctx context.Context, actorID, albumID, targetID uuid.UUID) (int64, error)
	ListSharedWithUser(ctx context.Context, userID uuid.UUID) ([]models.SharedImage, error)
}

// FeedServiceInterface defines the contract for viewer-scoped reads.
type FeedServiceInterface interface {
	ResolveFeed(ctx context.Context, viewerID uuid.UUID) ([]models.FeedItem, error)
	GetImage(ctx context.Context, viewerID, imageID uuid.UUID) (*models.FeedItem, error)
}

// AlbumServiceInterface defines the contract for album operations used by handlers.
type AlbumServiceInterface interface {
	Create(ctx context.Context, ownerID uuid.UUID, title string) (*models.Album, error)
	ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]models.AlbumWithCount, error)
	Delete(ctx context.Context, ownerID, albumID uuid.UUID) error
}

// ImageServiceInterface defines the contract for image operations used by handlers.
type ImageServiceInterface interface {
	Add(ctx context.Context, ownerID uuid.UUID, params models.AddImageParams) (*models.Image, error)
	ListByAlbum(ctx context.Context, callerID, albumID uuid.UUID) ([]models.Image, error)
	Delete(ctx context.Context, callerID, imageID uuid.UUID) error
}

// CommentServiceInterface defines the contract for comment operations.
type CommentServiceInterface interface {
	Add(ctx context.Context, authorID, imageID uuid.UUID, body string) (*models.Comment, error)
	ListByImage(ctx context.Context, viewerID, imageID uuid.UUID) ([]models.CommentWithAuthor, error)
	Delete(ctx context.Context, callerID, commentID uuid.UUID) error
}

// NotificationServiceInterface defines the contract for notification operations.
type NotificationServiceInterface interface {
	List(ctx context.Context, userID uuid.UUID, limit int) ([]models.NotificationWithActor, error)
	UnreadCount(ctx context.Context, userID uuid.UUID) (int, error)
	MarkRead(ctx context.Context, userID, notificationID uuid.UUID) error
	MarkAllRead(ctx context.Context, userID uuid.UUID) (int64, error)
}

// FriendChecker is the lightweight friendship check the share service needs.
type FriendChecker interface {
	IsFriend(ctx context.Context, userID, otherUserID uuid.UUID) (bool, error)
}

// ImageAccessChecker gates actions on images the caller may or may not see.
type ImageAccessChecker interface {
	CanAccessImage(ctx context.Context, viewerID, imageID uuid.UUID) (bool, error)
}

// DerivedAlbumEnsurer resolves or creates system-materialized albums.
type DerivedAlbumEnsurer interface {
	EnsureDerivedAlbum(ctx context.Context, q Querier, ownerID, sourceUserID uuid.UUID, kind models.AlbumKind, title string) (uuid.UUID, error)
}

// BulkSharer is the set-based share primitive the friendship engine runs
// inside its accept transaction.
type BulkSharer interface {
	BulkSharePublicImages(ctx context.Context, q Querier, sourceUserID, recipientID, albumID uuid.UUID) (int64, error)
}

// NotificationCreator records an event row for a user.
type NotificationCreator interface {
	Create(ctx context.Context, params CreateNotificationParams) (*models.Notification, error)
}

// Publisher pushes a realtime event to one user's channel.
type Publisher interface {
	PublishToUser(ctx context.Context, userID uuid.UUID, event string, payload any) error
}
