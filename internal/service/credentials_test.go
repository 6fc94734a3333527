package service

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/and161185/storefront/internal/errs"
	"github.com/and161185/storefront/internal/model"
	"github.com/and161185/storefront/internal/repository"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestCredentialStore_SeedsDefaultOnFirstLoad(t *testing.T) {
	t.Parallel()
	store := newFakeStore()
	s := NewCredentialStore(context.Background(), store, nil)

	if s.Count() != 1 {
		t.Fatalf("want 1 seeded account, got %d", s.Count())
	}
	acc, ok := s.Authenticate("joao@email.com", "123456")
	if !ok || acc.Name != "João Silva" || acc.ID != "1" {
		t.Fatalf("seed account not usable: %+v ok=%v", acc, ok)
	}

	raw, ok := store.data[repository.KeyUsers]
	if !ok {
		t.Fatalf("seed not persisted")
	}
	var rows []map[string]any
	if err := json.Unmarshal(raw, &rows); err != nil {
		t.Fatalf("persisted users: %v", err)
	}
	for _, k := range []string{"id", "name", "email", "password", "createdAt"} {
		if _, ok := rows[0][k]; !ok {
			t.Fatalf("persisted account misses field %q: %s", k, raw)
		}
	}
}

func TestCredentialStore_LoadsPersistedAccounts(t *testing.T) {
	t.Parallel()
	store := newFakeStore()
	store.data[repository.KeyUsers] = []byte(`[{"id":"7","name":"Ana","email":"ana@x.com","password":"secret1","createdAt":"2024-01-01T00:00:00Z"}]`)

	s := NewCredentialStore(context.Background(), store, nil)
	if s.Count() != 1 {
		t.Fatalf("want 1 account, got %d", s.Count())
	}
	if s.IsEmailRegistered("joao@email.com") {
		t.Fatalf("seed must not be added when state exists")
	}
	if store.setCalls != 0 {
		t.Fatalf("load must not rewrite state, setCalls=%d", store.setCalls)
	}
}

func TestCredentialStore_CorruptStateIsReseededAndLogged(t *testing.T) {
	t.Parallel()
	core, logs := observer.New(zap.WarnLevel)
	store := newFakeStore()
	store.data[repository.KeyUsers] = []byte(`{not json`)

	s := NewCredentialStore(context.Background(), store, zap.New(core))

	if s.Count() != 1 || !s.IsEmailRegistered("joao@email.com") {
		t.Fatalf("want reseeded default account, got %+v", s.Accounts())
	}
	if logs.FilterMessage("discarding unreadable accounts, reseeding").Len() != 1 {
		t.Fatalf("want warning logged, got %v", logs.All())
	}
	var accounts []model.Account
	if err := json.Unmarshal(store.data[repository.KeyUsers], &accounts); err != nil || len(accounts) != 1 {
		t.Fatalf("corrupt state not overwritten: %s", store.data[repository.KeyUsers])
	}
}

func TestCredentialStore_ReadErrorIsReseeded(t *testing.T) {
	t.Parallel()
	core, logs := observer.New(zap.WarnLevel)
	store := newFakeStore()
	store.getErr = errors.New("disk gone")

	s := NewCredentialStore(context.Background(), store, zap.New(core))
	if !s.IsEmailRegistered("joao@email.com") {
		t.Fatalf("want default account after read error")
	}
	if logs.Len() == 0 {
		t.Fatalf("want read error logged")
	}
}

func TestCredentialStore_Register_CaseInsensitiveUniqueness(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store := newFakeStore()
	s := NewCredentialStore(ctx, store, nil)

	acc, err := s.Register(ctx, "  Ana ", " Ana@X.com ", "secret1")
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if acc.Name != "Ana" || acc.Email != "ana@x.com" || acc.Password != "secret1" {
		t.Fatalf("not normalized: %+v", acc)
	}
	if acc.ID == "" || acc.CreatedAt.IsZero() {
		t.Fatalf("missing id/createdAt: %+v", acc)
	}
	if !s.IsEmailRegistered("ANA@x.COM") || !s.IsEmailRegistered("  ana@x.com\t") {
		t.Fatalf("case/whitespace variants must be registered")
	}

	setCalls := store.setCalls
	if _, err := s.Register(ctx, "Bob", "ANA@X.com", "secret2"); !errors.Is(err, errs.ErrAlreadyRegistered) {
		t.Fatalf("want ErrAlreadyRegistered, got %v", err)
	}
	if s.Count() != 2 || store.setCalls != setCalls {
		t.Fatalf("failed register must have no side effect: count=%d setCalls=%d", s.Count(), store.setCalls)
	}

	other, err := s.Register(ctx, "Bob", "bob@x.com", "secret2")
	if err != nil {
		t.Fatalf("Register bob: %v", err)
	}
	if other.ID == acc.ID {
		t.Fatalf("ids must be unique")
	}

	reloaded := NewCredentialStore(ctx, store, nil)
	if reloaded.Count() != 3 {
		t.Fatalf("want 3 persisted accounts, got %d", reloaded.Count())
	}
	got := reloaded.Accounts()
	if got[0].Email != "joao@email.com" || got[1].Email != "ana@x.com" || got[2].Email != "bob@x.com" {
		t.Fatalf("order not preserved: %+v", got)
	}
}

func TestCredentialStore_Register_PersistFailureHasNoSideEffect(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store := newFakeStore()
	s := NewCredentialStore(ctx, store, nil)

	store.setErr = errors.New("quota exceeded")
	if _, err := s.Register(ctx, "Ana", "ana@x.com", "secret1"); err == nil {
		t.Fatalf("want persist error")
	}
	if s.IsEmailRegistered("ana@x.com") || s.Count() != 1 {
		t.Fatalf("account must not be kept after failed persist")
	}
}

func TestCredentialStore_Authenticate(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := NewCredentialStore(ctx, newFakeStore(), nil)
	if _, err := s.Register(ctx, "Ana", "ana@x.com", "Secret1"); err != nil {
		t.Fatalf("Register: %v", err)
	}

	acc, ok := s.Authenticate(" ANA@x.com ", "Secret1")
	if !ok || acc.Email != "ana@x.com" {
		t.Fatalf("want match, got %+v ok=%v", acc, ok)
	}

	wrongSecret, ok1 := s.Authenticate("ana@x.com", "secret1")
	unknown, ok2 := s.Authenticate("nobody@x.com", "Secret1")
	if ok1 || ok2 {
		t.Fatalf("want no match for wrong secret (%v) and unknown email (%v)", ok1, ok2)
	}
	if wrongSecret != unknown {
		t.Fatalf("failures must be indistinguishable: %+v vs %+v", wrongSecret, unknown)
	}
}
