// Package coordination provides the shared state store used across
// concurrent scrape workers: the proxy rotation cursor, the proxy
// blacklist, and the rate-limiter counters. Two implementations exist, an
// in-process mutex-guarded map and a Redis-backed store; both guarantee
// atomic read-modify-write semantics for Increment.
package coordination

import (
	"context"
	"errors"
	"time"
)

// ErrKeyNotFound is returned by Get and TTL when the key is absent or its
// TTL has elapsed.
var ErrKeyNotFound = errors.New("key not found")

// Store is the narrow interface behind which all cross-worker state lives.
// A ttl of zero means the key never expires.
type Store interface {
	// Get returns the current value of key, or ErrKeyNotFound.
	Get(ctx context.Context, key string) (string, error)

	// SetWithTTL stores value under key with the given expiry.
	SetWithTTL(ctx context.Context, key, value string, ttl time.Duration) error

	// Increment atomically adds one to the integer counter at key and
	// returns the new value. A freshly created counter gets the given TTL;
	// an existing counter keeps its remaining TTL.
	Increment(ctx context.Context, key string, ttl time.Duration) (int64, error)

	// Delete removes key. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error

	// TTL returns the remaining lifetime of key, or ErrKeyNotFound.
	TTL(ctx context.Context, key string) (time.Duration, error)
}
