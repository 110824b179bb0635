package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"self-analysis/internal/repository/models"

	"github.com/jmoiron/sqlx"
)

const userColumns = `
	id "id",
	google_id "google_id",
	email "email",
	name "name",
	profile_picture_url "profile_picture_url",
	encrypted_access_token "encrypted_access_token",
	encrypted_refresh_token "encrypted_refresh_token",
	token_expires_at "token_expires_at",
	created_at "created_at",
	updated_at "updated_at",
	deleted_at "deleted_at"`

// UserRepository defines the interface for user data operations.
type UserRepository interface {
	CreateUser(ctx context.Context, user *models.User) error
	GetUserByGoogleID(ctx context.Context, googleID string) (*models.User, error)
	GetUserByID(ctx context.Context, userID string) (*models.User, error)
	UpdateUser(ctx context.Context, user *models.User) error
}

// sqlxUserRepository implements UserRepository using sqlx.
type sqlxUserRepository struct {
	db *sqlx.DB
}

// NewSQLXUserRepository creates a new instance of sqlxUserRepository.
func NewSQLXUserRepository(db *sqlx.DB) UserRepository {
	return &sqlxUserRepository{db: db}
}

// CreateUser inserts a new user into the database.
func (r *sqlxUserRepository) CreateUser(ctx context.Context, user *models.User) error {
	exec := GetExecutor(ctx, r.db)

	user.CreatedAt = time.Now()
	user.UpdatedAt = time.Now()

	query := `INSERT INTO users (
		id, google_id, email, name, profile_picture_url,
		encrypted_access_token, encrypted_refresh_token, token_expires_at,
		created_at, updated_at
	) VALUES (
		:1, :2, :3, :4, :5, :6, :7, :8, :9, :10
	)`

	_, err := exec.ExecContext(ctx, query,
		user.ID,
		user.GoogleID,
		user.Email,
		user.Name,
		user.ProfilePictureURL,
		user.EncryptedAccessToken,
		user.EncryptedRefreshToken,
		user.TokenExpiresAt,
		user.CreatedAt,
		user.UpdatedAt,
	)
	if err != nil {
		// Oracle reports duplicate google_id or email as ORA-00001.
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

// GetUserByGoogleID retrieves a user by their Google ID.
func (r *sqlxUserRepository) GetUserByGoogleID(ctx context.Context, googleID string) (*models.User, error) {
	exec := GetExecutor(ctx, r.db)

	var user models.User
	query := `SELECT ` + userColumns + `
	FROM users
	WHERE google_id = :1
	AND deleted_at IS NULL`

	err := exec.GetContext(ctx, &user, query, googleID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil // Return nil, nil for not found, services can handle this
		}
		return nil, fmt.Errorf("failed to get user by google_id: %w", err)
	}
	return &user, nil
}

// GetUserByID retrieves a user by their internal ID.
func (r *sqlxUserRepository) GetUserByID(ctx context.Context, userID string) (*models.User, error) {
	exec := GetExecutor(ctx, r.db)

	var user models.User
	query := `SELECT ` + userColumns + `
	FROM users
	WHERE id = :1
	AND deleted_at IS NULL`

	err := exec.GetContext(ctx, &user, query, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil // Return nil, nil for not found
		}
		return nil, fmt.Errorf("failed to get user by id: %w", err)
	}
	return &user, nil
}

// UpdateUser updates an existing user's information. The service layer is
// expected to hand in the full user row with the fields it wants persisted.
func (r *sqlxUserRepository) UpdateUser(ctx context.Context, user *models.User) error {
	exec := GetExecutor(ctx, r.db)

	user.UpdatedAt = time.Now()

	query := `UPDATE users SET
		email = :1,
		name = :2,
		profile_picture_url = :3,
		encrypted_access_token = :4,
		encrypted_refresh_token = :5,
		token_expires_at = :6,
		updated_at = :7
	WHERE id = :8
	AND deleted_at IS NULL`

	result, err := exec.ExecContext(ctx, query,
		user.Email,
		user.Name,
		user.ProfilePictureURL,
		user.EncryptedAccessToken,
		user.EncryptedRefreshToken,
		user.TokenExpiresAt,
		user.UpdatedAt,
		user.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update user: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return sql.ErrNoRows
	}
	return nil
}
