// Package service contains the storefront core: credential store, session manager,
// inventory and cart engine, plus the Storefront facade used by adapters.
package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/and161185/storefront/internal/errs"
	"github.com/and161185/storefront/internal/model"
	"github.com/and161185/storefront/internal/repository"
	"github.com/gofrs/uuid/v5"
	"go.uber.org/zap"
)

// DefaultAccount returns the account seeded on first run.
func DefaultAccount(now time.Time) model.Account {
	return model.Account{
		ID:        "1",
		Name:      "João Silva",
		Email:     "joao@email.com",
		Password:  "123456",
		CreatedAt: now,
	}
}

// NormalizeEmail trims surrounding whitespace and lowercases.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// CredentialStore owns the durable set of registered accounts.
type CredentialStore struct {
	mu       sync.RWMutex
	store    repository.Store
	log      *zap.Logger
	now      func() time.Time
	accounts []model.Account
}

// NewCredentialStore loads accounts from store. Missing state seeds the default
// account; unreadable state is discarded, logged and reseeded.
func NewCredentialStore(ctx context.Context, store repository.Store, log *zap.Logger) *CredentialStore {
	if log == nil {
		log = zap.NewNop()
	}
	s := &CredentialStore{store: store, log: log, now: time.Now}
	s.load(ctx)
	return s
}

func (s *CredentialStore) load(ctx context.Context) {
	raw, err := s.store.Get(ctx, repository.KeyUsers)
	if err == nil {
		var accounts []model.Account
		if err = json.Unmarshal(raw, &accounts); err == nil {
			s.accounts = accounts
			return
		}
		err = fmt.Errorf("%w: %v", errs.ErrCorruptState, err)
	}
	if !errors.Is(err, errs.ErrNotFound) {
		s.log.Warn("discarding unreadable accounts, reseeding",
			zap.String("key", repository.KeyUsers), zap.Error(err))
	}
	s.accounts = []model.Account{DefaultAccount(s.now())}
	if err := s.persist(ctx, s.accounts); err != nil {
		s.log.Error("persist seeded accounts", zap.Error(err))
	}
}

func (s *CredentialStore) persist(ctx context.Context, accounts []model.Account) error {
	raw, err := json.Marshal(accounts)
	if err != nil {
		return err
	}
	return s.store.Set(ctx, repository.KeyUsers, raw)
}

func (s *CredentialStore) find(email string) (model.Account, bool) {
	norm := NormalizeEmail(email)
	for _, a := range s.accounts {
		if NormalizeEmail(a.Email) == norm {
			return a, true
		}
	}
	return model.Account{}, false
}

// IsEmailRegistered reports whether email is taken, ignoring case and surrounding whitespace.
func (s *CredentialStore) IsEmailRegistered(email string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.find(email)
	return ok
}

// Register appends a new account and rewrites the persisted set.
// Returns errs.ErrAlreadyRegistered without side effects when the email is taken.
func (s *CredentialStore) Register(ctx context.Context, name, email, secret string) (model.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, taken := s.find(email); taken {
		return model.Account{}, errs.ErrAlreadyRegistered
	}
	id, err := uuid.NewV4()
	if err != nil {
		return model.Account{}, err
	}
	acc := model.Account{
		ID:        id.String(),
		Name:      strings.TrimSpace(name),
		Email:     NormalizeEmail(email),
		Password:  secret,
		CreatedAt: s.now(),
	}

	next := make([]model.Account, 0, len(s.accounts)+1)
	next = append(next, s.accounts...)
	next = append(next, acc)
	if err := s.persist(ctx, next); err != nil {
		return model.Account{}, fmt.Errorf("persist accounts: %w", err)
	}
	s.accounts = next

	s.log.Info("account registered", zap.String("id", acc.ID))
	return acc, nil
}

// Authenticate returns the account with a matching email and exactly matching secret.
// Unknown email and wrong secret are indistinguishable to the caller.
func (s *CredentialStore) Authenticate(email, secret string) (model.Account, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.find(email)
	if !ok || a.Password != secret {
		return model.Account{}, false
	}
	return a, true
}

// Accounts returns a copy of all accounts in registration order.
func (s *CredentialStore) Accounts() []model.Account {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]model.Account(nil), s.accounts...)
}

// Count returns the number of registered accounts.
func (s *CredentialStore) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.accounts)
}
