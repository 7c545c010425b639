package memory

import (
	"context"
	"sync"
	"time"

	"github.com/lattice-sync/lattice/semaphore"
)

type semaphoreRecord struct {
	limit int
	slots map[string]time.Time // zero value means unexpireable
}

// SemaphoreAdapter is an in-process semaphore.Adapter backed by a map
// guarded by a mutex, garbage-collecting expired slots on every mutating
// call per spec §4.6.
type SemaphoreAdapter struct {
	mu    sync.Mutex
	now   func() time.Time
	state map[string]*semaphoreRecord
}

func NewSemaphoreAdapter() *SemaphoreAdapter {
	return &SemaphoreAdapter{now: time.Now, state: make(map[string]*semaphoreRecord)}
}

func (a *SemaphoreAdapter) gc(r *semaphoreRecord, now time.Time) {
	for slotID, exp := range r.slots {
		if !exp.IsZero() && !exp.After(now) {
			delete(r.slots, slotID)
		}
	}
}

func (a *SemaphoreAdapter) Acquire(ctx context.Context, key, slotID string, limit int, ttl *time.Duration) (bool, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	now := a.now()
	r, exists := a.state[key]
	if !exists {
		r = &semaphoreRecord{limit: limit, slots: make(map[string]time.Time)}
		a.state[key] = r
	}
	a.gc(r, now)

	if _, held := r.slots[slotID]; held {
		if ttl != nil {
			r.slots[slotID] = now.Add(*ttl)
		} else {
			r.slots[slotID] = time.Time{}
		}
		return true, nil
	}

	if len(r.slots) >= r.limit {
		return false, nil
	}

	if ttl != nil {
		r.slots[slotID] = now.Add(*ttl)
	} else {
		r.slots[slotID] = time.Time{}
	}
	return true, nil
}

func (a *SemaphoreAdapter) Release(ctx context.Context, key, slotID string) (bool, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	r, exists := a.state[key]
	if !exists {
		return false, nil
	}
	a.gc(r, a.now())

	if _, held := r.slots[slotID]; !held {
		return false, nil
	}
	delete(r.slots, slotID)
	if len(r.slots) == 0 {
		delete(a.state, key)
	}
	return true, nil
}

func (a *SemaphoreAdapter) Refresh(ctx context.Context, key, slotID string, ttl time.Duration) (bool, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	r, exists := a.state[key]
	if !exists {
		return false, nil
	}
	now := a.now()
	a.gc(r, now)

	exp, held := r.slots[slotID]
	if !held || exp.IsZero() {
		return false, nil
	}
	r.slots[slotID] = now.Add(ttl)
	return true, nil
}

func (a *SemaphoreAdapter) ForceReleaseAll(ctx context.Context, key string) (bool, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	_, exists := a.state[key]
	delete(a.state, key)
	return exists, nil
}

func (a *SemaphoreAdapter) GetState(ctx context.Context, key string) (*semaphore.Record, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	r, exists := a.state[key]
	if !exists {
		return nil, nil
	}
	a.gc(r, a.now())
	if len(r.slots) == 0 {
		delete(a.state, key)
		return nil, nil
	}

	rec := &semaphore.Record{Limit: r.limit}
	for slotID, exp := range r.slots {
		rec.Slots = append(rec.Slots, semaphore.Slot{SlotID: slotID, ExpiresAt: exp})
	}
	return rec, nil
}

// PeekOwnSlot returns slotID's raw entry without garbage-collecting it, so
// a caller can tell an expired-but-still-recorded slot from one that was
// never acquired, even though GetState would have already pruned it.
func (a *SemaphoreAdapter) PeekOwnSlot(ctx context.Context, key, slotID string) (*semaphore.Slot, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	r, exists := a.state[key]
	if !exists {
		return nil, nil
	}
	exp, held := r.slots[slotID]
	if !held {
		return nil, nil
	}
	return &semaphore.Slot{SlotID: slotID, ExpiresAt: exp}, nil
}

var _ semaphore.Adapter = (*SemaphoreAdapter)(nil)
