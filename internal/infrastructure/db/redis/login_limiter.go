package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"

	"github.com/storefront/ecommerce-api/internal/core/domain"
)

const (
	defaultMaxAttempts = 5
	defaultLockout     = 15 * time.Minute
)

// LoginLimiter counts failed logins per email in Redis.
// Key format: login_failures:<kind>:<email>
//
// The window starts at the first failure and is not extended by later ones, so
// a locked email becomes usable again at most lockout after its first failure.
//
// Allow and RecordFailure are separate round trips, so concurrent failed logins
// for one email can overshoot maxAttempts by the number of requests in flight
// before the lockout takes effect.
type LoginLimiter struct {
	client      *redis.Client
	maxAttempts int64
	lockout     time.Duration
}

// NewLoginLimiter creates a LoginLimiter wrapping the given Redis client.
func NewLoginLimiter(client *redis.Client, maxAttempts int, lockout time.Duration) *LoginLimiter {
	if maxAttempts <= 0 {
		maxAttempts = defaultMaxAttempts
	}
	if lockout <= 0 {
		lockout = defaultLockout
	}
	return &LoginLimiter{client: client, maxAttempts: int64(maxAttempts), lockout: lockout}
}

// Allow reports whether another login attempt may be made for email.
func (l *LoginLimiter) Allow(ctx context.Context, kind domain.Kind, email string) (bool, error) {
	n, err := l.client.Get(ctx, l.key(kind, email)).Int64()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return true, nil
		}
		return false, errors.Wrap(err, "login limiter get")
	}
	return n < l.maxAttempts, nil
}

// RecordFailure increments the failure counter, starting the window on the
// first failure.
func (l *LoginLimiter) RecordFailure(ctx context.Context, kind domain.Kind, email string) error {
	key := l.key(kind, email)

	n, err := l.client.Incr(ctx, key).Result()
	if err != nil {
		return errors.Wrap(err, "login limiter record")
	}
	if n == 1 {
		return errors.Wrap(l.client.Expire(ctx, key, l.lockout).Err(), "login limiter expire")
	}
	return nil
}

// Reset clears the counter after a successful login.
func (l *LoginLimiter) Reset(ctx context.Context, kind domain.Kind, email string) error {
	return errors.Wrap(l.client.Del(ctx, l.key(kind, email)).Err(), "login limiter reset")
}

func (l *LoginLimiter) key(kind domain.Kind, email string) string {
	return fmt.Sprintf("login_failures:%s:%s", kind, email)
}
