// Package kvstore provides the flat string key-value store all
// application state persists in. Callers are responsible for
// serialization; the store performs no validation.
package kvstore

import (
	"context"
	"errors"
)

// ErrKeyNotFound indicates the key is absent from the store.
var ErrKeyNotFound = errors.New("key not found")

// Store is the persistence contract. All operations are synchronous
// and immediately durable. Writers race under last-write-wins; there
// is no locking or change notification at this layer.
type Store interface {
	// Get returns the raw value for key, or ErrKeyNotFound.
	Get(ctx context.Context, key string) (string, error)
	// Set writes value under key, overwriting any previous value.
	Set(ctx context.Context, key, value string) error
	// Remove deletes key. Removing an absent key is not an error.
	Remove(ctx context.Context, key string) error

	// Ping checks backend connectivity.
	Ping(ctx context.Context) error
	// Close releases backend resources.
	Close() error
}
