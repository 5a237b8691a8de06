// Package cache provides byte-level caches for directory lookups.
//
// Three implementations are available:
//   - [FileCache] stores entries as JSON files below a directory (CLI use)
//   - [RedisCache] stores entries in Redis (shared by server replicas)
//   - [NullCache] never stores anything (caching disabled)
//
// Keys are built with a [Keyer] so that every component derives the same
// key for the same lookup.
package cache

import (
	"context"
	"time"
)

// Cache stores opaque values under string keys with an optional TTL.
// Implementations must be safe for concurrent use.
type Cache interface {
	// Get returns the value stored under key. The boolean is false on a miss
	// or when the entry has expired.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A ttl of zero means the entry never expires.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes the value stored under key. Deleting a missing key is
	// not an error.
	Delete(ctx context.Context, key string) error

	// Close releases resources held by the cache.
	Close() error
}
