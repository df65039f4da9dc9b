package ports

import (
	"context"

	"github.com/storefront/ecommerce-api/internal/core/domain"
)

// RegisterInput is the validated registration payload.
type RegisterInput struct {
	Firstname string
	Lastname  string
	Email     string
	Password  string
	RequestID string
}

// LoginInput is the validated login payload.
type LoginInput struct {
	Email     string
	Password  string
	RequestID string
}

// UpdateInput carries a validated update payload. Password is accepted so the
// full registration schema can be checked, but it is never applied.
type UpdateInput struct {
	Firstname string
	Lastname  string
	Email     string
	Password  string
	RequestID string
}

// AuthResult is returned by Register.
type AuthResult struct {
	Account *domain.Account
	Token   string
}

// AccountService defines the use cases of one account kind.
type AccountService interface {
	Kind() domain.Kind
	Register(ctx context.Context, input RegisterInput) (*AuthResult, error)
	Login(ctx context.Context, input LoginInput) (string, error)
	List(ctx context.Context) ([]*domain.Account, error)
	Get(ctx context.Context, id string) (*domain.Account, error)
	Update(ctx context.Context, id string, input UpdateInput) (*domain.Account, error)
	Delete(ctx context.Context, id string, requestID string) (*domain.Account, error)
}
