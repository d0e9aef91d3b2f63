package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/auction-man/vasa-auth/internal/core/domain"
	"github.com/auction-man/vasa-auth/internal/core/ports/driven"
	"github.com/redis/go-redis/v9"
)

// Verify interface compliance
var _ driven.LoginAttemptStore = (*LoginAttemptStore)(nil)

// Key prefix for login attempt bindings
const attemptPrefix = "login_attempt:"

// LoginAttemptStore implements driven.LoginAttemptStore using Redis.
// Attempts expire via Redis TTL; GETDEL gives the atomic single-use read.
type LoginAttemptStore struct {
	client *redis.Client
}

// NewLoginAttemptStore creates a new Redis-backed LoginAttemptStore
func NewLoginAttemptStore(client *redis.Client) *LoginAttemptStore {
	return &LoginAttemptStore{client: client}
}

// Save stores an attempt with TTL based on ExpiresAt
func (s *LoginAttemptStore) Save(ctx context.Context, attempt *domain.LoginAttempt) error {
	ttl := time.Until(attempt.ExpiresAt)
	if ttl <= 0 {
		// Attempt already expired, don't save
		return nil
	}

	data, err := json.Marshal(attempt)
	if err != nil {
		return fmt.Errorf("failed to marshal login attempt: %w", err)
	}

	if err := s.client.Set(ctx, attemptPrefix+attempt.State, data, ttl).Err(); err != nil {
		return fmt.Errorf("failed to save login attempt: %w", err)
	}

	return nil
}

// GetAndDelete atomically retrieves and deletes the attempt
func (s *LoginAttemptStore) GetAndDelete(ctx context.Context, state string) (*domain.LoginAttempt, error) {
	data, err := s.client.GetDel(ctx, attemptPrefix+state).Bytes()
	if err == redis.Nil {
		return nil, nil // State not found or expired
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get login attempt: %w", err)
	}

	var attempt domain.LoginAttempt
	if err := json.Unmarshal(data, &attempt); err != nil {
		return nil, fmt.Errorf("failed to unmarshal login attempt: %w", err)
	}

	return &attempt, nil
}

// Cleanup is a no-op: Redis expires keys on its own.
func (s *LoginAttemptStore) Cleanup(ctx context.Context) error {
	return nil
}
