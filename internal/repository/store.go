// Package repository defines the persistence port implemented by concrete backends.
package repository

import "context"

// Persisted keys. Each value is a full JSON snapshot rewritten on every change.
const (
	KeyUsers       = "users"
	KeyCurrentUser = "current_user"
	KeyStock       = "stock"
)

// Store is a key/value persistence medium holding JSON snapshots.
type Store interface {
	// Get returns the value stored under key or errs.ErrNotFound.
	Get(ctx context.Context, key string) ([]byte, error)
	// Set replaces the value stored under key.
	Set(ctx context.Context, key string, value []byte) error
	// Delete removes key. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error
}
