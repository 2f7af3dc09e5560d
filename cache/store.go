package cache

import (
	"context"
	"time"
)

// DefaultTTL is applied when a caller passes a non-positive TTL to Put.
const DefaultTTL = time.Hour

// NormalizeTTL maps non-positive TTLs to DefaultTTL. Adapters with
// per-entry expiry run every Put TTL through this.
func NormalizeTTL(ttl time.Duration) time.Duration {
	if ttl <= 0 {
		return DefaultTTL
	}
	return ttl
}

// Store exposes the operations the catalog layer needs from a cache engine.
// Implementations wrap a single engine (Redis, in-process) and keep eviction
// policy inside that engine; no method here evicts anything itself.
//
// Values are opaque byte slices. A (nil, false, nil) Get result is a plain
// miss; errors signal engine or transport failure and are expected to be
// downgraded to a miss by the caller.
type Store interface {
	// Get returns the value stored under key, or ok=false if absent or
	// expired.
	Get(ctx context.Context, key string) (value []byte, ok bool, err error)

	// Put stores value under key with the given TTL. A non-positive ttl
	// falls back to DefaultTTL.
	Put(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Delete removes the entry for key. Deleting an absent key is not an
	// error.
	Delete(ctx context.Context, key string) error

	// Invalidate is Delete plus an audit log entry. Used on the write path
	// so stale-entry removal is traceable.
	Invalidate(ctx context.Context, key string) error

	// Exists reports whether a live entry is stored under key.
	Exists(ctx context.Context, key string) (bool, error)

	// Size returns the number of live keys in the engine.
	Size(ctx context.Context) (int64, error)

	// Clear drops all entries unconditionally. Maintenance and test use
	// only; never called on the request path.
	Clear(ctx context.Context) error

	// Close releases engine connections.
	Close() error
}
