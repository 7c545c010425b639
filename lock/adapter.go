// Package lock implements the distributed Lock primitive: a Provider that
// creates per-key Handles backed by a pluggable Adapter, with ownership
// fencing, TTL expiration and fire-and-forget event notification.
//
// Modeled on the teacher's dsync/lock.Locker (functional-options config,
// *slog.Logger field, MetricsCollector pairing, keyed backoff-driven
// acquireBlocking loop) generalized from a Redis-only implementation to an
// Adapter-agnostic one.
package lock

import (
	"context"
	"time"
)

// State is the adapter-independent snapshot of a lock record, returned by
// Adapter.GetState.
type State struct {
	LockID    string
	ExpiresAt time.Time // zero means unexpireable
}

// Expireable reports whether the lock carries a TTL.
func (s State) Expireable() bool {
	return !s.ExpiresAt.IsZero()
}

// Adapter is the storage-independent lock driver contract. ttl == nil means
// an unexpireable lock. Implementations must make each method linearizable
// per key.
type Adapter interface {
	// Acquire returns true iff key was free, or already held by lockID
	// (idempotent re-acquisition).
	Acquire(ctx context.Context, key, lockID string, ttl *time.Duration) (bool, error)
	// Release returns true iff lockID is the current owner.
	Release(ctx context.Context, key, lockID string) (bool, error)
	// Refresh returns true iff lockID is the current owner and the lock
	// carries a TTL (refreshing an unexpireable lock is a no-op failure).
	Refresh(ctx context.Context, key, lockID string, ttl time.Duration) (bool, error)
	// ForceRelease returns true iff a record existed for key.
	ForceRelease(ctx context.Context, key string) (bool, error)
	// GetState returns the current record for key, or nil if none exists
	// or it has expired.
	GetState(ctx context.Context, key string) (*State, error)
}
