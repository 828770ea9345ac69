// Package cache stores rendered artifacts between requests.
//
// Only final documents (SVG, PNG, DOT, ...) are cached, never graphs or
// layouts, so a cache entry is exactly the bytes a response would carry.
// Because rendering is deterministic, a key built from the input hash and
// every option that influences the output identifies one artifact.
//
// Backends:
//
//   - [NullCache]: never stores anything (the default)
//   - [FileCache]: one JSON file per entry, for the CLI
//   - [RedisCache]: shared cache for several server instances
//
// Keys come from a [Keyer]; [ScopedKeyer] namespaces them.
package cache

import (
	"context"
	"time"
)

// Cache is a byte store with per-entry expiry.
// Get reports a miss with ok=false and a nil error.
type Cache interface {
	Get(ctx context.Context, key string) (data []byte, ok bool, err error)
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}
