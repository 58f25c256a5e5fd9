package services

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/bcrypt"

	"github.com/TallerAbierto/craftshare/internal/models"
)

const (
	bcryptCost         = 12
	sessionDuration    = 30 * 24 * time.Hour
	sessionKeyPrefix   = "session:"
	userSessionsPrefix = "user_sessions:"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrSessionNotFound    = errors.New("session not found")
)

// AuthService owns password hashing and opaque session tokens. Sessions live
// in Redis only: the plaintext token goes to the client, its SHA-256 hash is
// the Redis key, and a per-user set tracks hashes for bulk revocation.
type AuthService struct {
	db    DB
	redis *redis.Client
}

func NewAuthService(db DB, redis *redis.Client) *AuthService {
	return &AuthService{db: db, redis: redis}
}

func (s *AuthService) HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return "", fmt.Errorf("hashing password: %w", err)
	}
	return string(hash), nil
}

func (s *AuthService) VerifyPassword(hash, password string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}

func (s *AuthService) GenerateSessionToken() (token string, hash string, err error) {
	bytes := make([]byte, 32)
	if _, err := rand.Read(bytes); err != nil {
		return "", "", fmt.Errorf("generating random bytes: %w", err)
	}

	token = hex.EncodeToString(bytes)
	hashBytes := sha256.Sum256([]byte(token))
	hash = hex.EncodeToString(hashBytes[:])

	return token, hash, nil
}

func (s *AuthService) hashToken(token string) string {
	hashBytes := sha256.Sum256([]byte(token))
	return hex.EncodeToString(hashBytes[:])
}

func (s *AuthService) CreateSession(ctx context.Context, userID uuid.UUID) (token string, err error) {
	token, tokenHash, err := s.GenerateSessionToken()
	if err != nil {
		return "", err
	}

	err = s.redis.Set(ctx, sessionKeyPrefix+tokenHash, userID.String(), sessionDuration).Err()
	if err != nil {
		return "", fmt.Errorf("storing session: %w", err)
	}

	userKey := userSessionsPrefix + userID.String()
	if err := s.redis.SAdd(ctx, userKey, tokenHash).Err(); err != nil {
		return "", fmt.Errorf("tracking session: %w", err)
	}
	s.redis.Expire(ctx, userKey, sessionDuration)

	return token, nil
}

func (s *AuthService) ValidateSession(ctx context.Context, token string) (*models.User, error) {
	tokenHash := s.hashToken(token)

	userIDStr, err := s.redis.Get(ctx, sessionKeyPrefix+tokenHash).Result()
	if errors.Is(err, redis.Nil) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("looking up session: %w", err)
	}

	// Sliding expiry: each authenticated request extends the session.
	s.redis.Expire(ctx, sessionKeyPrefix+tokenHash, sessionDuration)

	userID, err := uuid.Parse(userIDStr)
	if err != nil {
		return nil, fmt.Errorf("parsing user id: %w", err)
	}

	return s.getUserByID(ctx, userID)
}

func (s *AuthService) DeleteSession(ctx context.Context, token string) error {
	tokenHash := s.hashToken(token)

	userIDStr, err := s.redis.Get(ctx, sessionKeyPrefix+tokenHash).Result()
	if err == nil {
		s.redis.SRem(ctx, userSessionsPrefix+userIDStr, tokenHash)
	}

	if err := s.redis.Del(ctx, sessionKeyPrefix+tokenHash).Err(); err != nil {
		return fmt.Errorf("deleting session: %w", err)
	}
	return nil
}

func (s *AuthService) DeleteAllUserSessions(ctx context.Context, userID uuid.UUID) error {
	userKey := userSessionsPrefix + userID.String()

	hashes, err := s.redis.SMembers(ctx, userKey).Result()
	if err != nil {
		return fmt.Errorf("listing user sessions: %w", err)
	}

	for _, hash := range hashes {
		s.redis.Del(ctx, sessionKeyPrefix+hash)
	}
	if err := s.redis.Del(ctx, userKey).Err(); err != nil {
		return fmt.Errorf("clearing session index: %w", err)
	}
	return nil
}

func (s *AuthService) getUserByID(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	user := &models.User{}
	err := s.db.QueryRow(ctx,
		`SELECT id, name, craft, email, password_hash, status, searchable, created_at
		 FROM users WHERE id = $1 AND status = 'active'`,
		userID,
	).Scan(&user.ID, &user.Name, &user.Craft, &user.Email, &user.PasswordHash,
		&user.Status, &user.Searchable, &user.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("loading session user: %w", err)
	}
	return user, nil
}
