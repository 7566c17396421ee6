// Package cache provides the shared cache used by the ClawdSign services.
//
// The cache stores opaque byte payloads under string keys with an optional
// time-to-live. It backs short-lived aggregates such as the statistics
// endpoint, where several API instances should agree on one cached value.
//
// # Backends
//
//   - [NullCache]: never stores anything (caching disabled)
//   - [MemoryCache]: process-local map with expiry, for single instances and tests
//   - [RedisCache]: Redis-backed, shared across instances
//
// All implementations are safe for concurrent use.
//
// # Keys
//
// Keys are namespaced with [Key]:
//
//	cache.Key("stats", "v1") // "stats:v1"
//
// [Hash] derives content keys from payloads.
package cache

import (
	"context"
	"strings"
	"time"
)

// Cache is a key-value store for serialized payloads.
//
// Get reports a miss as (nil, false, nil); an error means the backend
// itself failed. A ttl of zero stores the entry without expiry.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// Key joins a namespace and its parts with ":".
func Key(namespace string, parts ...string) string {
	return strings.Join(append([]string{namespace}, parts...), ":")
}
