package ratelimiter

import (
	"context"
	"fmt"
	"time"

	"anoa.com/alumnihub/pkg/apperror"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Store is the subset of the redis client the limiter needs.
type Store interface {
	SetNX(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.BoolCmd
	TTL(ctx context.Context, key string) *redis.DurationCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

// RateLimitError is returned when a user acts again inside the window.
type RateLimitError struct {
	Message    string
	RetryAfter time.Duration
}

func (e *RateLimitError) Error() string {
	return e.Message
}

func (e *RateLimitError) Unwrap() error {
	return apperror.ErrRateLimitExceeded
}

// Limiter allows one action per user per window. A nil store disables it.
type Limiter struct {
	store  Store
	window time.Duration
}

func New(store Store, window time.Duration) *Limiter {
	return &Limiter{store: store, window: window}
}

func key(userID uuid.UUID, action string) string {
	return fmt.Sprintf("rate_limit:user:%s:%s", userID.String(), action)
}

// Check claims the window for userID and action. It returns a *RateLimitError
// when the window is already held.
func (l *Limiter) Check(ctx context.Context, userID uuid.UUID, action string) error {
	if l == nil || l.store == nil || l.window <= 0 {
		return nil
	}

	wasSet, err := l.store.SetNX(ctx, key(userID, action), "locked", l.window).Result()
	if err != nil {
		return fmt.Errorf("failed to check rate limit in redis: %w", err)
	}
	if wasSet {
		return nil
	}

	ttl, err := l.store.TTL(ctx, key(userID, action)).Result()
	if err != nil || ttl < 0 {
		ttl = l.window
	}
	return &RateLimitError{
		Message:    fmt.Sprintf("You're sending messages too fast. Please wait %.0f second(s)", ttl.Seconds()+0.5),
		RetryAfter: ttl,
	}
}

// Clear releases the window early, used when the guarded action failed.
func (l *Limiter) Clear(ctx context.Context, userID uuid.UUID, action string) error {
	if l == nil || l.store == nil {
		return nil
	}
	return l.store.Del(ctx, key(userID, action)).Err()
}
