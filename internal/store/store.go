// Package store persists pipeline results in a content-addressed,
// TTL-bounded key/value cache with SQLite and Postgres backends.
package store

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"
)

// DefaultTTL is how long a cache entry stays fresh. Entries older than
// the TTL are treated as absent; expiry is logical, not physical.
const DefaultTTL = 7 * 24 * time.Hour

// Store is the persistence interface for the enrichment cache.
// Get returns (nil, nil) when the key is absent or the entry has aged
// past the TTL. Set overwrites any existing entry with a fresh timestamp.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error

	// PurgeExpired physically deletes entries past the TTL and reports
	// how many were removed. Expiry works without it; this only reclaims
	// disk space.
	PurgeExpired(ctx context.Context) (int, error)

	Migrate(ctx context.Context) error
	Close() error
}

// Key derives the cache key for an operation and its parameters: a
// collision-resistant hash over the tagged tuple, so distinct operations
// with equal parameters never collide.
func Key(op string, params ...string) string {
	raw := op + "|" + strings.Join(params, "|")
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}
