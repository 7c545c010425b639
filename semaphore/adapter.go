// Package semaphore implements the distributed Semaphore primitive: a
// bounded number of concurrently-held slots per key, with the limit fixed
// by the first acquire and garbage-collected expired slots.
//
// Modeled on lock's Provider/Handle/Adapter shape, generalized from a
// single owner per key to a map of slotId -> expiration per key, following
// the teacher's sync/lock.Values map-of-owners idiom.
package semaphore

import (
	"context"
	"time"
)

// Slot is one live acquisition inside a Record.
type Slot struct {
	SlotID    string
	ExpiresAt time.Time // zero means unexpireable
}

func (s Slot) expired(now time.Time) bool {
	return !s.ExpiresAt.IsZero() && !s.ExpiresAt.After(now)
}

// Record is the adapter-independent snapshot of a semaphore key: the limit
// fixed by the first acquire, plus every live slot.
type Record struct {
	Limit int
	Slots []Slot
}

// Adapter is the storage-independent semaphore driver contract.
// Implementations must make each method linearizable per key and garbage
// collect expired slots on every mutating call.
type Adapter interface {
	// Acquire takes slotID's slot in key's record, fixing Limit on the
	// record's first creation; returns true if the slot is now held
	// (including idempotently, if slotID already held one).
	Acquire(ctx context.Context, key, slotID string, limit int, ttl *time.Duration) (bool, error)
	// Release frees slotID's slot, returning true iff it was held.
	Release(ctx context.Context, key, slotID string) (bool, error)
	// Refresh extends slotID's slot TTL, failing for a non-owner, a
	// missing key, an expired slot or an unexpireable slot.
	Refresh(ctx context.Context, key, slotID string, ttl time.Duration) (bool, error)
	// ForceReleaseAll clears every slot for key, returning true iff the
	// record existed.
	ForceReleaseAll(ctx context.Context, key string) (bool, error)
	// GetState returns the current record for key, or nil if no live
	// slots remain.
	GetState(ctx context.Context, key string) (*Record, error)
	// PeekOwnSlot returns slotID's raw slot for key without pruning it,
	// even if its TTL has already elapsed, or nil if slotID never held a
	// slot. It exists so GetStateTagged can distinguish "never acquired"
	// from "acquired, now expired" after GetState's own garbage collection
	// has removed the live record.
	PeekOwnSlot(ctx context.Context, key, slotID string) (*Slot, error)
}
