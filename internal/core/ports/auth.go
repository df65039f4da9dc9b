package ports

import (
	"context"

	"github.com/storefront/ecommerce-api/internal/core/domain"
)

// TokenIssuer mints signed identity tokens.
type TokenIssuer interface {
	Issue(accountID string, isAdmin bool) (string, error)
}

// TokenVerifier checks a token and returns the identity it carries. Any
// failure is reported as domain.ErrInvalidToken.
type TokenVerifier interface {
	Verify(token string) (*domain.Identity, error)
}

// PasswordHasher computes and checks one-way password digests.
type PasswordHasher interface {
	Hash(plaintext string) (string, error)
	Verify(plaintext, digest string) bool
}

// LoginLimiter throttles repeated failed logins for one email.
type LoginLimiter interface {
	Allow(ctx context.Context, kind domain.Kind, email string) (bool, error)
	RecordFailure(ctx context.Context, kind domain.Kind, email string) error
	Reset(ctx context.Context, kind domain.Kind, email string) error
}

// EventRecorder accepts audit events without blocking the caller.
type EventRecorder interface {
	Record(event domain.AccountEvent)
}
