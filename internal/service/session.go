package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/and161185/storefront/internal/errs"
	"github.com/and161185/storefront/internal/model"
	"github.com/and161185/storefront/internal/repository"
	"go.uber.org/zap"
)

// SessionManager owns the single current-session slot (last writer wins).
type SessionManager struct {
	mu      sync.RWMutex
	store   repository.Store
	log     *zap.Logger
	current *model.Session
}

// NewSessionManager restores the persisted session, if any. An unreadable
// entry is logged and removed.
func NewSessionManager(ctx context.Context, store repository.Store, log *zap.Logger) *SessionManager {
	if log == nil {
		log = zap.NewNop()
	}
	m := &SessionManager{store: store, log: log}

	raw, err := store.Get(ctx, repository.KeyCurrentUser)
	switch {
	case errors.Is(err, errs.ErrNotFound):
		return m
	case err != nil:
		log.Warn("discarding unreadable session", zap.String("key", repository.KeyCurrentUser), zap.Error(err))
		return m
	}

	var s model.Session
	if err := json.Unmarshal(raw, &s); err != nil || s.Email == "" {
		log.Warn("discarding unreadable session",
			zap.String("key", repository.KeyCurrentUser),
			zap.Error(fmt.Errorf("%w: %v", errs.ErrCorruptState, err)))
		if derr := store.Delete(ctx, repository.KeyCurrentUser); derr != nil {
			log.Error("remove unreadable session", zap.Error(derr))
		}
		return m
	}
	m.current = &s
	return m
}

// Login replaces any existing session.
func (m *SessionManager) Login(ctx context.Context, s model.Session) error {
	raw, err := json.Marshal(s)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.store.Set(ctx, repository.KeyCurrentUser, raw); err != nil {
		return fmt.Errorf("persist session: %w", err)
	}
	m.current = &s
	return nil
}

// Logout clears the session and removes the persisted entry.
func (m *SessionManager) Logout(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.store.Delete(ctx, repository.KeyCurrentUser); err != nil {
		return fmt.Errorf("remove session: %w", err)
	}
	m.current = nil
	return nil
}

// Current returns the session, if present.
func (m *SessionManager) Current() (model.Session, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.current == nil {
		return model.Session{}, false
	}
	return *m.current, true
}
