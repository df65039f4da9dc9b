package ports

import (
	"context"

	"github.com/storefront/ecommerce-api/internal/core/domain"
)

// AccountRepository persists one kind of account. Email uniqueness is enforced
// by the store itself: Insert and UpdateFields report a clash as
// domain.ErrAccountExists.
type AccountRepository interface {
	FindByEmail(ctx context.Context, email string) (*domain.Account, error)
	FindByID(ctx context.Context, id string) (*domain.Account, error)
	// List returns every account ordered by firstname ascending, without
	// password hashes.
	List(ctx context.Context) ([]*domain.Account, error)
	Insert(ctx context.Context, account *domain.Account) (*domain.Account, error)
	UpdateFields(ctx context.Context, id string, fields domain.ProfileUpdate) (*domain.Account, error)
	DeleteByID(ctx context.Context, id string) (*domain.Account, error)
}

// EventRepository stores the account audit trail.
type EventRepository interface {
	InsertEvent(ctx context.Context, event *domain.AccountEvent) error
}
