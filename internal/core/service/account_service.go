package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/storefront/ecommerce-api/internal/core/domain"
	"github.com/storefront/ecommerce-api/internal/core/ports"
)

// AccountService implements ports.AccountService for one account kind.
type AccountService struct {
	kind     domain.Kind
	repo     ports.AccountRepository
	hasher   ports.PasswordHasher
	tokens   ports.TokenIssuer
	limiter  ports.LoginLimiter
	recorder ports.EventRecorder
	logger   zerolog.Logger
	now      func() time.Time
}

// Option customises an AccountService.
type Option func(*AccountService)

// WithLoginLimiter enables failed-login throttling.
func WithLoginLimiter(l ports.LoginLimiter) Option {
	return func(s *AccountService) { s.limiter = l }
}

// WithEventRecorder sends lifecycle events to the audit trail.
func WithEventRecorder(r ports.EventRecorder) Option {
	return func(s *AccountService) { s.recorder = r }
}

func NewAccountService(
	kind domain.Kind,
	repo ports.AccountRepository,
	hasher ports.PasswordHasher,
	tokens ports.TokenIssuer,
	logger zerolog.Logger,
	opts ...Option,
) *AccountService {
	s := &AccountService{
		kind:   kind,
		repo:   repo,
		hasher: hasher,
		tokens: tokens,
		logger: logger.With().Str("kind", string(kind)).Logger(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *AccountService) Kind() domain.Kind { return s.kind }

// Register creates an account and returns it with a freshly issued token.
func (s *AccountService) Register(ctx context.Context, in ports.RegisterInput) (*ports.AuthResult, error) {
	email := normalizeEmail(in.Email)

	existing, err := s.repo.FindByEmail(ctx, email)
	switch {
	case err == nil && existing != nil:
		return nil, domain.ErrAccountExists
	case err != nil && !errors.Is(err, domain.ErrAccountNotFound):
		return nil, err
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	created, err := s.repo.Insert(ctx, &domain.Account{
		Firstname:    in.Firstname,
		Lastname:     in.Lastname,
		Email:        email,
		PasswordHash: hash,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		// A concurrent registration may win the unique index; the repository
		// reports that as ErrAccountExists.
		return nil, err
	}

	token, err := s.tokens.Issue(created.ID, created.IsAdmin)
	if err != nil {
		return nil, err
	}

	s.record(created.ID, domain.EventRegistered, in.RequestID)
	s.logger.Info().Str("account_id", created.ID).Msg("account registered")

	return &ports.AuthResult{Account: created, Token: token}, nil
}

// Login checks credentials and returns a token. A missing account and a wrong
// password produce the same error.
func (s *AccountService) Login(ctx context.Context, in ports.LoginInput) (string, error) {
	email := normalizeEmail(in.Email)

	if s.limiter != nil {
		allowed, err := s.limiter.Allow(ctx, s.kind, email)
		if err != nil {
			s.logger.Warn().Err(err).Msg("login limiter unavailable, allowing attempt")
		} else if !allowed {
			return "", domain.ErrTooManyAttempts
		}
	}

	account, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrAccountNotFound) {
			s.loginFailed(ctx, email)
			return "", domain.ErrInvalidCredentials
		}
		return "", err
	}

	if !s.hasher.Verify(in.Password, account.PasswordHash) {
		s.loginFailed(ctx, email)
		return "", domain.ErrInvalidCredentials
	}

	if s.limiter != nil {
		if err := s.limiter.Reset(ctx, s.kind, email); err != nil {
			s.logger.Warn().Err(err).Msg("failed to reset login attempts")
		}
	}

	token, err := s.tokens.Issue(account.ID, account.IsAdmin)
	if err != nil {
		return "", err
	}

	s.record(account.ID, domain.EventLoggedIn, in.RequestID)
	return token, nil
}

func (s *AccountService) List(ctx context.Context) ([]*domain.Account, error) {
	accounts, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	for _, a := range accounts {
		a.PasswordHash = ""
	}
	return accounts, nil
}

func (s *AccountService) Get(ctx context.Context, id string) (*domain.Account, error) {
	return s.repo.FindByID(ctx, id)
}

// Update applies firstname, lastname and email. in.Password is ignored.
func (s *AccountService) Update(ctx context.Context, id string, in ports.UpdateInput) (*domain.Account, error) {
	updated, err := s.repo.UpdateFields(ctx, id, domain.ProfileUpdate{
		Firstname: in.Firstname,
		Lastname:  in.Lastname,
		Email:     normalizeEmail(in.Email),
	})
	if err != nil {
		return nil, err
	}

	s.record(updated.ID, domain.EventUpdated, in.RequestID)
	return updated, nil
}

func (s *AccountService) Delete(ctx context.Context, id string, requestID string) (*domain.Account, error) {
	removed, err := s.repo.DeleteByID(ctx, id)
	if err != nil {
		return nil, err
	}

	s.record(removed.ID, domain.EventDeleted, requestID)
	s.logger.Info().Str("account_id", removed.ID).Msg("account deleted")
	return removed, nil
}

func (s *AccountService) loginFailed(ctx context.Context, email string) {
	s.logger.Debug().Str("email", email).Msg("login failed")
	if s.limiter == nil {
		return
	}
	if err := s.limiter.RecordFailure(ctx, s.kind, email); err != nil {
		s.logger.Warn().Err(err).Msg("failed to record login failure")
	}
}

func (s *AccountService) record(accountID string, typ domain.AccountEventType, requestID string) {
	if s.recorder == nil {
		return
	}
	s.recorder.Record(domain.AccountEvent{
		ID:         uuid.NewString(),
		AccountID:  accountID,
		Kind:       s.kind,
		Type:       typ,
		RequestID:  requestID,
		OccurredAt: s.now().UTC(),
	})
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
