// Package cache is a shallow key/value wrapper over a Cacheable adapter: a
// collaborator of the coordination primitives, not one of them, specified
// only by the driver contract it needs (spec.md §1's "out of scope" list).
package cache

import (
	"context"
	"time"
)

// Adapter is the storage-independent cache driver contract. Set/Delete/
// Increment/Decrement must be atomic per key; the adapter owns TTL
// enforcement and reports whether a key previously existed.
type Adapter interface {
	Get(ctx context.Context, key string) (value []byte, found bool, err error)
	Set(ctx context.Context, key string, value []byte, ttl *time.Duration) error
	// Add sets value only if key is absent or expired, reporting whether the
	// write happened.
	Add(ctx context.Context, key string, value []byte, ttl *time.Duration) (bool, error)
	Delete(ctx context.Context, key string) (bool, error)
	// Increment/Decrement apply delta to the integer stored at key,
	// initializing it at 0 if absent, and return the post-update value.
	Increment(ctx context.Context, key string, delta int64) (int64, error)
	Decrement(ctx context.Context, key string, delta int64) (int64, error)
	// Clear removes every key in the adapter's namespace.
	Clear(ctx context.Context) error
}
