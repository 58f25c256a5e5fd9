package handlers

import (
	"context"
	"net/http"
	"testing"

	"github.com/google/uuid"

	"github.com/TallerAbierto/craftshare/internal/models"
	"github.com/TallerAbierto/craftshare/internal/services"
)

// Mock services with overridable function fields. Handlers only see the
// interfaces, so each test sets just the calls it expects.

type mockUserService struct {
	CreateFunc           func(ctx context.Context, params models.CreateUserParams) (*models.User, error)
	GetByIDFunc          func(ctx context.Context, id uuid.UUID) (*models.User, error)
	GetByEmailFunc       func(ctx context.Context, email string) (*models.User, error)
	UpdateSearchableFunc func(ctx context.Context, userID uuid.UUID, searchable bool) error
	DeactivateFunc       func(ctx context.Context, userID uuid.UUID) error
}

func (m *mockUserService) Create(ctx context.Context, params models.CreateUserParams) (*models.User, error) {
	return m.CreateFunc(ctx, params)
}

func (m *mockUserService) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	return m.GetByIDFunc(ctx, id)
}

func (m *mockUserService) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return m.GetByEmailFunc(ctx, email)
}

func (m *mockUserService) UpdateSearchable(ctx context.Context, userID uuid.UUID, searchable bool) error {
	return m.UpdateSearchableFunc(ctx, userID, searchable)
}

func (m *mockUserService) Deactivate(ctx context.Context, userID uuid.UUID) error {
	return m.DeactivateFunc(ctx, userID)
}

type mockAuthService struct {
	HashPasswordFunc          func(password string) (string, error)
	VerifyPasswordFunc        func(hash, password string) bool
	CreateSessionFunc         func(ctx context.Context, userID uuid.UUID) (string, error)
	ValidateSessionFunc       func(ctx context.Context, token string) (*models.User, error)
	DeleteSessionFunc         func(ctx context.Context, token string) error
	DeleteAllUserSessionsFunc func(ctx context.Context, userID uuid.UUID) error
}

func (m *mockAuthService) HashPassword(password string) (string, error) {
	return m.HashPasswordFunc(password)
}

func (m *mockAuthService) VerifyPassword(hash, password string) bool {
	return m.VerifyPasswordFunc(hash, password)
}

func (m *mockAuthService) CreateSession(ctx context.Context, userID uuid.UUID) (string, error) {
	return m.CreateSessionFunc(ctx, userID)
}

func (m *mockAuthService) ValidateSession(ctx context.Context, token string) (*models.User, error) {
	return m.ValidateSessionFunc(ctx, token)
}

func (m *mockAuthService) DeleteSession(ctx context.Context, token string) error {
	return m.DeleteSessionFunc(ctx, token)
}

func (m *mockAuthService) DeleteAllUserSessions(ctx context.Context, userID uuid.UUID) error {
	return m.DeleteAllUserSessionsFunc(ctx, userID)
}

type mockFriendService struct {
	SendRequestFunc         func(ctx context.Context, requesterID, recipientID uuid.UUID) (*models.FriendshipRequest, error)
	AcceptRequestFunc       func(ctx context.Context, responderID, requestID uuid.UUID) (*models.FriendshipRequest, error)
	RejectRequestFunc       func(ctx context.Context, responderID, requestID uuid.UUID) error
	ListPendingRequestsFunc func(ctx context.Context, userID uuid.UUID) ([]models.PendingRequest, error)
	ListFriendsFunc         func(ctx context.Context, userID uuid.UUID) ([]models.Friend, error)
	SearchUsersFunc         func(ctx context.Context, callerID uuid.UUID, query string) ([]models.UserSearchResult, error)
	IsFriendFunc            func(ctx context.Context, userID, otherUserID uuid.UUID) (bool, error)
}

func (m *mockFriendService) SendRequest(ctx context.Context, requesterID, recipientID uuid.UUID) (*models.FriendshipRequest, error) {
	return m.SendRequestFunc(ctx, requesterID, recipientID)
}

func (m *mockFriendService) AcceptRequest(ctx context.Context, responderID, requestID uuid.UUID) (*models.FriendshipRequest, error) {
	return m.AcceptRequestFunc(ctx, responderID, requestID)
}

func (m *mockFriendService) RejectRequest(ctx context.Context, responderID, requestID uuid.UUID) error {
	return m.RejectRequestFunc(ctx, responderID, requestID)
}

func (m *mockFriendService) ListPendingRequests(ctx context.Context, userID uuid.UUID) ([]models.PendingRequest, error) {
	return m.ListPendingRequestsFunc(ctx, userID)
}

func (m *mockFriendService) ListFriends(ctx context.Context, userID uuid.UUID) ([]models.Friend, error) {
	return m.ListFriendsFunc(ctx, userID)
}

func (m *mockFriendService) SearchUsers(ctx context.Context, callerID uuid.UUID, query string) ([]models.UserSearchResult, error) {
	return m.SearchUsersFunc(ctx, callerID, query)
}

func (m *mockFriendService) IsFriend(ctx context.Context, userID, otherUserID uuid.UUID) (bool, error) {
	return m.IsFriendFunc(ctx, userID, otherUserID)
}

type mockShareService struct {
	ShareImageFunc         func(ctx context.Context, actorID, imageID, targetID uuid.UUID) (*models.ShareLink, error)
	ShareAlbumFunc         func(ctx context.Context, actorID, albumID, targetID uuid.UUID) (int64, error)
	ListSharedWithUserFunc func(ctx context.Context, userID uuid.UUID) ([]models.SharedImage, error)
}

func (m *mockShareService) ShareImage(ctx context.Context, actorID, imageID, targetID uuid.UUID) (*models.ShareLink, error) {
	return m.ShareImageFunc(ctx, actorID, imageID, targetID)
}

func (m *mockShareService) ShareAlbum(ctx context.Context, actorID, albumID, targetID uuid.UUID) (int64, error) {
	return m.ShareAlbumFunc(ctx, actorID, albumID, targetID)
}

func (m *mockShareService) ListSharedWithUser(ctx context.Context, userID uuid.UUID) ([]models.SharedImage, error) {
	return m.ListSharedWithUserFunc(ctx, userID)
}

type mockFeedService struct {
	ResolveFeedFunc func(ctx context.Context, viewerID uuid.UUID) ([]models.FeedItem, error)
	GetImageFunc    func(ctx context.Context, viewerID, imageID uuid.UUID) (*models.FeedItem, error)
}

func (m *mockFeedService) ResolveFeed(ctx context.Context, viewerID uuid.UUID) ([]models.FeedItem, error) {
	return m.ResolveFeedFunc(ctx, viewerID)
}

func (m *mockFeedService) GetImage(ctx context.Context, viewerID, imageID uuid.UUID) (*models.FeedItem, error) {
	return m.GetImageFunc(ctx, viewerID, imageID)
}

type mockAlbumService struct {
	CreateFunc      func(ctx context.Context, ownerID uuid.UUID, title string) (*models.Album, error)
	ListByOwnerFunc func(ctx context.Context, ownerID uuid.UUID) ([]models.AlbumWithCount, error)
	DeleteFunc      func(ctx context.Context, ownerID, albumID uuid.UUID) error
}

func (m *mockAlbumService) Create(ctx context.Context, ownerID uuid.UUID, title string) (*models.Album, error) {
	return m.CreateFunc(ctx, ownerID, title)
}

func (m *mockAlbumService) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]models.AlbumWithCount, error) {
	return m.ListByOwnerFunc(ctx, ownerID)
}

func (m *mockAlbumService) Delete(ctx context.Context, ownerID, albumID uuid.UUID) error {
	return m.DeleteFunc(ctx, ownerID, albumID)
}

type mockImageService struct {
	AddFunc         func(ctx context.Context, ownerID uuid.UUID, params models.AddImageParams) (*models.Image, error)
	ListByAlbumFunc func(ctx context.Context, callerID, albumID uuid.UUID) ([]models.Image, error)
	DeleteFunc      func(ctx context.Context, callerID, imageID uuid.UUID) error
}

func (m *mockImageService) Add(ctx context.Context, ownerID uuid.UUID, params models.AddImageParams) (*models.Image, error) {
	return m.AddFunc(ctx, ownerID, params)
}

func (m *mockImageService) ListByAlbum(ctx context.Context, callerID, albumID uuid.UUID) ([]models.Image, error) {
	return m.ListByAlbumFunc(ctx, callerID, albumID)
}

func (m *mockImageService) Delete(ctx context.Context, callerID, imageID uuid.UUID) error {
	return m.DeleteFunc(ctx, callerID, imageID)
}

type mockCommentService struct {
	AddFunc         func(ctx context.Context, authorID, imageID uuid.UUID, body string) (*models.Comment, error)
	ListByImageFunc func(ctx context.Context, viewerID, imageID uuid.UUID) ([]models.CommentWithAuthor, error)
	DeleteFunc      func(ctx context.Context, callerID, commentID uuid.UUID) error
}

func (m *mockCommentService) Add(ctx context.Context, authorID, imageID uuid.UUID, body string) (*models.Comment, error) {
	return m.AddFunc(ctx, authorID, imageID, body)
}

func (m *mockCommentService) ListByImage(ctx context.Context, viewerID, imageID uuid.UUID) ([]models.CommentWithAuthor, error) {
	return m.ListByImageFunc(ctx, viewerID, imageID)
}

func (m *mockCommentService) Delete(ctx context.Context, callerID, commentID uuid.UUID) error {
	return m.DeleteFunc(ctx, callerID, commentID)
}

type mockNotificationService struct {
	ListFunc        func(ctx context.Context, userID uuid.UUID, limit int) ([]models.NotificationWithActor, error)
	UnreadCountFunc func(ctx context.Context, userID uuid.UUID) (int, error)
	MarkReadFunc    func(ctx context.Context, userID, notificationID uuid.UUID) error
	MarkAllReadFunc func(ctx context.Context, userID uuid.UUID) (int64, error)
}

func (m *mockNotificationService) List(ctx context.Context, userID uuid.UUID, limit int) ([]models.NotificationWithActor, error) {
	return m.ListFunc(ctx, userID, limit)
}

func (m *mockNotificationService) UnreadCount(ctx context.Context, userID uuid.UUID) (int, error) {
	return m.UnreadCountFunc(ctx, userID)
}

func (m *mockNotificationService) MarkRead(ctx context.Context, userID, notificationID uuid.UUID) error {
	return m.MarkReadFunc(ctx, userID, notificationID)
}

func (m *mockNotificationService) MarkAllRead(ctx context.Context, userID uuid.UUID) (int64, error) {
	return m.MarkAllReadFunc(ctx, userID)
}

// Compile-time interface checks.
var (
	_ services.UserServiceInterface         = (*mockUserService)(nil)
	_ services.AuthServiceInterface         = (*mockAuthService)(nil)
	_ services.FriendServiceInterface       = (*mockFriendService)(nil)
	_ services.ShareServiceInterface        = (*mockShareService)(nil)
	_ services.FeedServiceInterface         = (*mockFeedService)(nil)
	_ services.AlbumServiceInterface        = (*mockAlbumService)(nil)
	_ services.ImageServiceInterface        = (*mockImageService)(nil)
	_ services.CommentServiceInterface      = (*mockCommentService)(nil)
	_ services.NotificationServiceInterface = (*mockNotificationService)(nil)
)

func testUser() *models.User {
	return &models.User{
		ID:     uuid.New(),
		Name:   "Ana Torres",
		Craft:  "ceramics",
		Email:  "ana@example.com",
		Status: models.UserStatusActive,
	}
}

func authenticatedRequest(t *testing.T, user *models.User, req *http.Request) *http.Request {
	t.Helper()
	return req.WithContext(SetUserInContext(req.Context(), user))
}
