package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/and161185/storefront/internal/errs"
	"github.com/jackc/pgx/v5"
)

// KVStore implements repository.Store on the kv table.
type KVStore struct{ db *DB }

// NewKVStore constructs a key/value store.
func NewKVStore(db *DB) *KVStore { return &KVStore{db: db} }

// Get selects the value stored under key.
func (s *KVStore) Get(ctx context.Context, key string) ([]byte, error) {
	const q = `SELECT value FROM kv WHERE key=$1`
	var v []byte
	if err := s.db.Pool.QueryRow(ctx, q, key).Scan(&v); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errs.ErrNotFound
		}
		return nil, fmt.Errorf("kv get %q: %w", key, err)
	}
	return v, nil
}

// Set upserts the value under key.
func (s *KVStore) Set(ctx context.Context, key string, value []byte) error {
	const q = `INSERT INTO kv (key, value, updated_at) VALUES ($1, $2, now()) ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = now()`
	if _, err := s.db.Pool.Exec(ctx, q, key, value); err != nil {
		return fmt.Errorf("kv set %q: %w", key, err)
	}
	return nil
}

// Delete removes key.
func (s *KVStore) Delete(ctx context.Context, key string) error {
	const q = `DELETE FROM kv WHERE key=$1`
	if _, err := s.db.Pool.Exec(ctx, q, key); err != nil {
		return fmt.Errorf("kv delete %q: %w", key, err)
	}
	return nil
}
