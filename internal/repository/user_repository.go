package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/ndewijer/finpilot-backend/internal/apperrors"
	"github.com/ndewijer/finpilot-backend/internal/model"
)

// UserRepository provides data access methods for the users table.
type UserRepository struct {
	db *sql.DB
}

// NewUserRepository creates a new UserRepository with the provided database connection.
func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{db: db}
}

// InsertUser stores a new account. Returns apperrors.ErrDuplicateEmail when the email is taken.
func (r *UserRepository) InsertUser(ctx context.Context, u model.User) error {
	query := `
        INSERT INTO users (id, email, password_hash, display_name, created_at)
        VALUES (?, ?, ?, ?, ?)
    `

	_, err := r.db.ExecContext(ctx, query,
		u.ID,
		u.Email,
		u.PasswordHash,
		u.DisplayName,
		FormatTime(u.CreatedAt),
	)
	if isUniqueViolation(err) {
		return apperrors.ErrDuplicateEmail
	}
	if err != nil {
		return fmt.Errorf("failed to insert user: %w", err)
	}

	return nil
}

// GetUserByEmail looks up an account by its (already normalized) email.
func (r *UserRepository) GetUserByEmail(ctx context.Context, email string) (model.User, error) {
	query := `
        SELECT id, email, password_hash, display_name, created_at
        FROM users
        WHERE email = ?
    `
	return r.scanUser(r.db.QueryRowContext(ctx, query, email))
}

// GetUserByID looks up an account by id.
func (r *UserRepository) GetUserByID(ctx context.Context, id string) (model.User, error) {
	query := `
        SELECT id, email, password_hash, display_name, created_at
        FROM users
        WHERE id = ?
    `
	return r.scanUser(r.db.QueryRowContext(ctx, query, id))
}

func (r *UserRepository) scanUser(row *sql.Row) (model.User, error) {
	var u model.User
	var createdStr string

	err := row.Scan(
		&u.ID,
		&u.Email,
		&u.PasswordHash,
		&u.DisplayName,
		&createdStr,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return model.User{}, apperrors.ErrUserNotFound
	}
	if err != nil {
		return model.User{}, fmt.Errorf("failed to query user: %w", err)
	}

	u.CreatedAt, err = ParseTime(createdStr)
	if err != nil {
		return model.User{}, err
	}

	return u, nil
}
