package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/markhavenapp/markhaven-server/internal/domain"
	"github.com/markhavenapp/markhaven-server/internal/store"
)

const userColumns = `id, email, password_hash, display_name,
	reset_token_hash, reset_token_expires_at, created_at, updated_at`

// scanUser scans a user row from either *sql.Row or *sql.Rows.
func scanUser(scanner interface{ Scan(...any) error }) (*domain.User, error) {
	var u domain.User
	var resetHash, resetExpires sql.NullString
	var createdAt, updatedAt string

	err := scanner.Scan(
		&u.ID, &u.Email, &u.PasswordHash, &u.DisplayName,
		&resetHash, &resetExpires, &createdAt, &updatedAt,
	)
	if err != nil {
		return nil, err
	}

	if u.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, fmt.Errorf("parse created_at: %w", err)
	}
	if u.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, fmt.Errorf("parse updated_at: %w", err)
	}
	if resetHash.Valid {
		u.ResetTokenHash = &resetHash.String
	}
	if u.ResetTokenExpiresAt, err = parseNullableTime(resetExpires); err != nil {
		return nil, fmt.Errorf("parse reset_token_expires_at: %w", err)
	}

	return &u, nil
}

// CreateUser inserts the user and seeds the system collection and default
// tags in one transaction, so an account can never exist half-seeded.
func (s *Store) CreateUser(ctx context.Context, user *domain.User, system *domain.Collection, defaults []*domain.Tag) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO users (id, email, password_hash, display_name, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		user.ID, user.Email, user.PasswordHash, user.DisplayName,
		formatTime(user.CreatedAt), formatTime(user.UpdatedAt),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return store.ErrAlreadyExists.WithMessage("email already registered")
		}
		return fmt.Errorf("insert user: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO collections (id, owner_id, name, is_system, created_at, updated_at)
		VALUES (?, ?, ?, 1, ?, ?)`,
		system.ID, user.ID, system.Name,
		formatTime(system.CreatedAt), formatTime(system.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("seed system collection: %w", err)
	}

	for _, tag := range defaults {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO tags (id, owner_id, name, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?)`,
			tag.ID, user.ID, tag.Name,
			formatTime(tag.CreatedAt), formatTime(tag.UpdatedAt),
		)
		if err != nil {
			return fmt.Errorf("seed tag %q: %w", tag.Name, err)
		}
	}

	return tx.Commit()
}

// GetUser returns the user with the given ID.
func (s *Store) GetUser(ctx context.Context, userID string) (*domain.User, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = ?`, userID)

	user, err := scanUser(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound.WithMessage("user not found")
	}
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	return user, nil
}

// GetUserByEmail returns the user with the given email.
func (s *Store) GetUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE email = ?`, email)

	user, err := scanUser(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound.WithMessage("user not found")
	}
	if err != nil {
		return nil, fmt.Errorf("get user by email: %w", err)
	}
	return user, nil
}

// SetResetToken stores a pending password-reset token hash with expiry.
func (s *Store) SetResetToken(ctx context.Context, userID, tokenHash string, expiresAt time.Time) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE users
		SET reset_token_hash = ?, reset_token_expires_at = ?, updated_at = ?
		WHERE id = ?`,
		tokenHash, formatTime(expiresAt), formatTime(time.Now().UTC()), userID,
	)
	if err != nil {
		return fmt.Errorf("set reset token: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return store.ErrNotFound.WithMessage("user not found")
	}
	return nil
}

// GetUserByResetTokenHash looks up a user by a pending reset token hash.
func (s *Store) GetUserByResetTokenHash(ctx context.Context, tokenHash string) (*domain.User, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE reset_token_hash = ?`, tokenHash)

	user, err := scanUser(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound.WithMessage("reset token not found")
	}
	if err != nil {
		return nil, fmt.Errorf("get user by reset token: %w", err)
	}
	return user, nil
}

// UpdatePassword replaces the password hash and clears any pending reset.
func (s *Store) UpdatePassword(ctx context.Context, userID, passwordHash string) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE users
		SET password_hash = ?, reset_token_hash = NULL,
		    reset_token_expires_at = NULL, updated_at = ?
		WHERE id = ?`,
		passwordHash, formatTime(time.Now().UTC()), userID,
	)
	if err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return store.ErrNotFound.WithMessage("user not found")
	}
	return nil
}
