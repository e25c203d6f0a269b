// Package cache stores built road networks and finished plans between runs.
//
// Building a network (reconcile, planarize, build) is the expensive part of a
// run and depends only on the roads and a few planner parameters, so it is
// cached under a content-derived key. Backends:
//
//   - [FileCache]: one JSON file per entry under a directory, for the CLI
//   - [RedisCache]: a shared Redis instance, for batch workers and the API
//   - [NullCache]: stores nothing, for --no-cache
//
// Keys come from a [Keyer]; [DefaultKeyer] hashes the inputs with SHA-256 and
// [ScopedKeyer] adds a namespace prefix.
package cache

import (
	"context"
	"time"
)

// Cache is a byte store with per-entry expiry. Implementations are safe
// for concurrent use.
type Cache interface {
	// Get returns the entry for key and whether it was found. Expired
	// entries are reported as misses.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A ttl of zero means no expiry.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	Close() error
}

// Default entry lifetimes.
const (
	// TTLNetwork applies to built networks. Road data for an area changes
	// rarely, and the key already covers the road content.
	TTLNetwork = 7 * 24 * time.Hour

	// TTLPlan applies to finished plans.
	TTLPlan = 24 * time.Hour
)

// NullCache never stores anything.
type NullCache struct{}

// NewNullCache creates a null cache.
func NewNullCache() Cache { return NullCache{} }

func (NullCache) Get(context.Context, string) ([]byte, bool, error) { return nil, false, nil }
func (NullCache) Set(context.Context, string, []byte, time.Duration) error { return nil }
func (NullCache) Delete(context.Context, string) error { return nil }
func (NullCache) Close() error { return nil }

var _ Cache = NullCache{}
