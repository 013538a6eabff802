// Package storage provides the key-value storage adapter: a raw blob
// contract with file-based and profile-level layers on top. All persisted
// state is key-value pairs, key "step-tracker:" + name, value a serialized
// UserProfile blob.
package storage

import (
	"context"
	"errors"
)

// ErrNotFound is returned when a key is absent from the store. Absence is
// a normal result, not a failure.
var ErrNotFound = errors.New("key not found")

// ErrCorrupt is returned when a stored blob does not decode into the
// expected record shape. Callers treat it like a storage failure rather
// than propagating loosely-typed data.
var ErrCorrupt = errors.New("corrupt record")

// KV is the raw blob store contract. Implementations: FileStore (local
// JSON files) and repository.PostgresKV (shared deployments).
type KV interface {
	// Get returns the blob stored under key, or ErrNotFound.
	Get(ctx context.Context, key string) ([]byte, error)
	// Put stores the blob under key, overwriting any previous value.
	Put(ctx context.Context, key string, value []byte) error
	// Delete removes key. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error
	// Keys lists all stored keys with the given prefix, sorted.
	Keys(ctx context.Context, prefix string) ([]string, error)
}
