package service

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/storefront/ecommerce-api/internal/core/domain"
)

// stubAccountRepo mirrors the Mongo repository: unique emails, store-assigned
// ids, firstname ordering.
type stubAccountRepo struct {
	mu        sync.Mutex
	byID      map[string]*domain.Account
	nextID    int
	insertErr error
	findErr   error
}

func newStubAccountRepo() *stubAccountRepo {
	return &stubAccountRepo{byID: make(map[string]*domain.Account)}
}

func cloneAccount(a *domain.Account) *domain.Account {
	if a == nil {
		return nil
	}
	clone := *a
	return &clone
}

func (r *stubAccountRepo) FindByEmail(_ context.Context, email string) (*domain.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.findErr != nil {
		return nil, r.findErr
	}
	for _, a := range r.byID {
		if a.Email == email {
			return cloneAccount(a), nil
		}
	}
	return nil, domain.ErrAccountNotFound
}

func (r *stubAccountRepo) FindByID(_ context.Context, id string) (*domain.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrAccountNotFound
	}
	return cloneAccount(a), nil
}

func (r *stubAccountRepo) List(_ context.Context) ([]*domain.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*domain.Account, 0, len(r.byID))
	for _, a := range r.byID {
		out = append(out, cloneAccount(a))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Firstname < out[j].Firstname })
	return out, nil
}

func (r *stubAccountRepo) Insert(_ context.Context, a *domain.Account) (*domain.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.insertErr != nil {
		return nil, r.insertErr
	}
	for _, existing := range r.byID {
		if existing.Email == a.Email {
			return nil, domain.ErrAccountExists
		}
	}
	r.nextID++
	stored := cloneAccount(a)
	stored.ID = fmt.Sprintf("id-%d", r.nextID)
	r.byID[stored.ID] = stored
	return cloneAccount(stored), nil
}

func (r *stubAccountRepo) UpdateFields(_ context.Context, id string, f domain.ProfileUpdate) (*domain.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrAccountNotFound
	}
	for otherID, other := range r.byID {
		if otherID != id && other.Email == f.Email {
			return nil, domain.ErrAccountExists
		}
	}
	a.Firstname, a.Lastname, a.Email = f.Firstname, f.Lastname, f.Email
	return cloneAccount(a), nil
}

func (r *stubAccountRepo) DeleteByID(_ context.Context, id string) (*domain.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrAccountNotFound
	}
	delete(r.byID, id)
	return a, nil
}

type stubLimiter struct {
	blocked  bool
	failures map[string]int
	resets   int
}

func newStubLimiter() *stubLimiter {
	return &stubLimiter{failures: make(map[string]int)}
}

func (l *stubLimiter) Allow(_ context.Context, _ domain.Kind, _ string) (bool, error) {
	return !l.blocked, nil
}

func (l *stubLimiter) RecordFailure(_ context.Context, _ domain.Kind, email string) error {
	l.failures[email]++
	return nil
}

func (l *stubLimiter) Reset(_ context.Context, _ domain.Kind, email string) error {
	delete(l.failures, email)
	l.resets++
	return nil
}

type stubRecorder struct {
	events []domain.AccountEvent
}

func (r *stubRecorder) Record(e domain.AccountEvent) {
	r.events = append(r.events, e)
}
