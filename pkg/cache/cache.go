// Package cache stores computed layouts and rendered artifacts.
//
// The cache is a memo, never the source of truth: a miss, an expired entry
// or a corrupt entry simply means the value is recomputed. Three backends
// are provided:
//
//   - [FileCache] for the CLI, one JSON file per entry under a directory
//   - [RedisCache] for sharing results between machines
//   - [NullCache] when caching is disabled
//
// Keys are built by a [Keyer] from content hashes, so identical inputs
// map to identical keys.
package cache

import (
	"context"
	"time"
)

// Default time-to-live values.
const (
	TTLLayout   = 7 * 24 * time.Hour
	TTLArtifact = 7 * 24 * time.Hour
)

// Cache is a byte-oriented key/value store with expiry.
type Cache interface {
	// Get returns the value and true on a hit. A miss is not an error.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A ttl <= 0 means no expiry.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}
