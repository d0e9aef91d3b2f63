package driven

import (
	"context"

	"github.com/auction-man/vasa-auth/internal/core/domain"
)

// LoginAttemptStore persists state-to-return-URL bindings for the redirect
// round trip. Attempts are single-use and expire after a short period.
type LoginAttemptStore interface {
	// Save stores a new login attempt.
	Save(ctx context.Context, attempt *domain.LoginAttempt) error

	// GetAndDelete atomically retrieves and deletes the attempt bound to
	// the state token. Atomicity is what makes a callback URL single-use:
	// a replayed state finds nothing. Returns nil, nil if the state is
	// unknown or expired.
	GetAndDelete(ctx context.Context, state string) (*domain.LoginAttempt, error)

	// Cleanup removes expired attempts. Called periodically to clear
	// bindings for logins that never came back.
	Cleanup(ctx context.Context) error
}
