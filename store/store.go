// Package store provides the key-value backing used by the token
// repository: an in-process map for tests and single-node deployments,
// and a Redis implementation for shared state.
package store

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned by Get for absent keys. Absence is an ordinary
// result, not a failure of the store.
var ErrNotFound = errors.New("store: key not found")

// ErrUnavailable wraps backend transport failures.
var ErrUnavailable = errors.New("store: backend unavailable")

// KV is a string-keyed value store with optional per-key TTL. All
// operations honor context cancellation; implementations must be safe
// for concurrent use.
type KV interface {
	// Set stores value under key. A positive ttl expires the entry; zero
	// keeps it until removed.
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	// Get returns the value for key or ErrNotFound.
	Get(ctx context.Context, key string) (string, error)
	// Remove deletes key. Removing an absent key is not an error.
	Remove(ctx context.Context, key string) error
	// Clear removes every key owned by this store.
	Clear(ctx context.Context) error
}
