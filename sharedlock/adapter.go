// Package sharedlock implements the SharedLock primitive: a writer slot
// plus a reader semaphore sharing one logical key, with mutual exclusion
// between the two sides enforced atomically by the Adapter.
//
// Modeled on lock and semaphore's Provider/Handle/Adapter shape, composed
// per spec §4.7 instead of reimplemented from scratch.
package sharedlock

import (
	"context"
	"time"

	"github.com/lattice-sync/lattice/lock"
	"github.com/lattice-sync/lattice/semaphore"
)

// State is the disjoint snapshot of a shared-lock key: exactly one of
// Writer or Reader is non-nil, or both are nil if the key is unheld.
type State struct {
	Writer *lock.State
	Reader *semaphore.Record
}

// Adapter is the storage-independent shared-lock driver contract. Every
// method must be linearizable per key, and the writer/reader mutual
// exclusion invariants of spec §4.7 must hold atomically.
type Adapter interface {
	// AcquireWriter succeeds iff no readers are present and (no writer or
	// the same writer lockID already holds it).
	AcquireWriter(ctx context.Context, key, lockID string, ttl *time.Duration) (bool, error)
	ReleaseWriter(ctx context.Context, key, lockID string) (bool, error)
	RefreshWriter(ctx context.Context, key, lockID string, ttl time.Duration) (bool, error)

	// AcquireReader succeeds iff no writer is present and the reader
	// semaphore's own rules (§4.6) hold.
	AcquireReader(ctx context.Context, key, slotID string, limit int, ttl *time.Duration) (bool, error)
	// ReleaseReader fails if a writer is currently present.
	ReleaseReader(ctx context.Context, key, slotID string) (bool, error)
	RefreshReader(ctx context.Context, key, slotID string, ttl time.Duration) (bool, error)
	// ForceReleaseAllReaders is a no-op (returns false) while a writer is
	// held.
	ForceReleaseAllReaders(ctx context.Context, key string) (bool, error)

	// ForceRelease clears both the writer and every reader for key.
	ForceRelease(ctx context.Context, key string) (bool, error)
	// GetState returns the disjoint writer/reader snapshot for key.
	GetState(ctx context.Context, key string) (*State, error)
}
