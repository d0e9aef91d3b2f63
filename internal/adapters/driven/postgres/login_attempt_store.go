package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/auction-man/vasa-auth/internal/core/domain"
	"github.com/auction-man/vasa-auth/internal/core/ports/driven"
)

// Ensure LoginAttemptStore implements the interface.
var _ driven.LoginAttemptStore = (*LoginAttemptStore)(nil)

// LoginAttemptStore implements driven.LoginAttemptStore using PostgreSQL.
type LoginAttemptStore struct {
	db *DB
}

// NewLoginAttemptStore creates a new PostgreSQL-backed login attempt store.
func NewLoginAttemptStore(db *DB) *LoginAttemptStore {
	return &LoginAttemptStore{db: db}
}

// Save stores a new login attempt.
func (s *LoginAttemptStore) Save(ctx context.Context, attempt *domain.LoginAttempt) error {
	query := `
		INSERT INTO login_attempts (state, return_url, issued_at, expires_at)
		VALUES ($1, $2, $3, $4)
	`

	_, err := s.db.ExecContext(ctx, query,
		attempt.State,
		attempt.ReturnURL,
		attempt.IssuedAt,
		attempt.ExpiresAt,
	)
	if err != nil {
		return fmt.Errorf("save login attempt: %w", err)
	}

	return nil
}

// GetAndDelete atomically retrieves and deletes the attempt.
// Uses DELETE ... RETURNING for atomic single-use semantics.
func (s *LoginAttemptStore) GetAndDelete(ctx context.Context, state string) (*domain.LoginAttempt, error) {
	query := `
		DELETE FROM login_attempts
		WHERE state = $1 AND expires_at > NOW()
		RETURNING state, return_url, issued_at, expires_at
	`

	var attempt domain.LoginAttempt
	err := s.db.QueryRowContext(ctx, query, state).Scan(
		&attempt.State,
		&attempt.ReturnURL,
		&attempt.IssuedAt,
		&attempt.ExpiresAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil // State not found or expired
	}
	if err != nil {
		return nil, fmt.Errorf("get and delete login attempt: %w", err)
	}

	return &attempt, nil
}

// Cleanup removes expired attempts.
func (s *LoginAttemptStore) Cleanup(ctx context.Context) error {
	query := `DELETE FROM login_attempts WHERE expires_at < NOW()`

	if _, err := s.db.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("cleanup login attempts: %w", err)
	}

	return nil
}
