// Package statecodec provides the two state-binding strategies for the
// login redirect round trip. Exactly one is selected at startup.
package statecodec

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"time"

	"github.com/auction-man/vasa-auth/internal/core/domain"
	"github.com/auction-man/vasa-auth/internal/core/ports/driven"
)

// Ensure Stored implements the interface.
var _ driven.StateCodec = (*Stored)(nil)

// DefaultStateTTL is the default time-to-live for state bindings.
const DefaultStateTTL = 5 * time.Minute

// Stored binds return URLs by persisting them in a LoginAttemptStore under
// a random opaque state token. Unbind is an atomic get-and-delete, so every
// state is single-use: a replayed callback URL finds nothing.
type Stored struct {
	attempts driven.LoginAttemptStore
	ttl      time.Duration
}

// NewStored creates a store-backed state codec.
func NewStored(attempts driven.LoginAttemptStore, ttl time.Duration) *Stored {
	if ttl <= 0 {
		ttl = DefaultStateTTL
	}
	return &Stored{attempts: attempts, ttl: ttl}
}

// Bind mints a random state token and persists the binding.
func (c *Stored) Bind(ctx context.Context, returnURL string) (string, error) {
	state, err := randomToken()
	if err != nil {
		return "", fmt.Errorf("generate state: %w", err)
	}

	now := time.Now()
	attempt := &domain.LoginAttempt{
		State:     state,
		ReturnURL: returnURL,
		IssuedAt:  now,
		ExpiresAt: now.Add(c.ttl),
	}
	if err := c.attempts.Save(ctx, attempt); err != nil {
		return "", fmt.Errorf("save login attempt: %w", err)
	}

	return state, nil
}

// Unbind consumes the binding and returns the bound return URL.
func (c *Stored) Unbind(ctx context.Context, state string) (string, error) {
	if state == "" {
		return "", domain.ErrInvalidState
	}

	attempt, err := c.attempts.GetAndDelete(ctx, state)
	if err != nil {
		return "", fmt.Errorf("get login attempt: %w", err)
	}
	if attempt == nil || attempt.IsExpired() {
		return "", domain.ErrInvalidState
	}

	return attempt.ReturnURL, nil
}

// randomToken generates a 256-bit random state token.
func randomToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
