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
	ErrUserNotFound = errors.New("user not found")
	ErrEmailTaken   = errors.New("email is already registered")
)

type UserService struct {
	db DB
}

func NewUserService(db DB) *UserService {
	return &UserService{db: db}
}

func (s *UserService) Create(ctx context.Context, params models.CreateUserParams) (*models.User, error) {
	email := strings.ToLower(strings.TrimSpace(params.Email))

	var exists bool
	err := s.db.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM users WHERE email = $1)`,
		email,
	).Scan(&exists)
	if err != nil {
		return nil, fmt.Errorf("checking email: %w", err)
	}
	if exists {
		return nil, ErrEmailTaken
	}

	user := &models.User{}
	err = s.db.QueryRow(ctx,
		`INSERT INTO users (name, craft, email, password_hash)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id, name, craft, email, password_hash, status, searchable, created_at`,
		strings.TrimSpace(params.Name), strings.TrimSpace(params.Craft), email, params.PasswordHash,
	).Scan(&user.ID, &user.Name, &user.Craft, &user.Email, &user.PasswordHash,
		&user.Status, &user.Searchable, &user.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("creating user: %w", err)
	}

	return user, nil
}

func (s *UserService) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	user := &models.User{}
	err := s.db.QueryRow(ctx,
		`SELECT id, name, craft, email, password_hash, status, searchable, created_at
		 FROM users WHERE id = $1`,
		id,
	).Scan(&user.ID, &user.Name, &user.Craft, &user.Email, &user.PasswordHash,
		&user.Status, &user.Searchable, &user.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getting user: %w", err)
	}
	return user, nil
}

func (s *UserService) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	user := &models.User{}
	err := s.db.QueryRow(ctx,
		`SELECT id, name, craft, email, password_hash, status, searchable, created_at
		 FROM users WHERE email = $1`,
		strings.ToLower(strings.TrimSpace(email)),
	).Scan(&user.ID, &user.Name, &user.Craft, &user.Email, &user.PasswordHash,
		&user.Status, &user.Searchable, &user.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getting user by email: %w", err)
	}
	return user, nil
}

func (s *UserService) UpdateSearchable(ctx context.Context, userID uuid.UUID, searchable bool) error {
	result, err := s.db.Exec(ctx,
		`UPDATE users SET searchable = $2 WHERE id = $1`,
		userID, searchable,
	)
	if err != nil {
		return fmt.Errorf("updating searchable: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrUserNotFound
	}
	return nil
}

// Deactivate retires an account. Inactive users stop resolving as friendship
// targets but their content and existing links stay in place.
func (s *UserService) Deactivate(ctx context.Context, userID uuid.UUID) error {
	result, err := s.db.Exec(ctx,
		`UPDATE users SET status = 'inactive' WHERE id = $1 AND status = 'active'`,
		userID,
	)
	if err != nil {
		return fmt.Errorf("deactivating user: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrUserNotFound
	}
	return nil
}
