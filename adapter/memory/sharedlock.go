package memory

import (
	"context"
	"sync"
	"time"

	"github.com/lattice-sync/lattice/lock"
	"github.com/lattice-sync/lattice/semaphore"
	"github.com/lattice-sync/lattice/sharedlock"
)

type sharedLockRecord struct {
	writer *lockRecord
	reader *semaphoreRecord
}

func (r *sharedLockRecord) gcReader(now time.Time) {
	if r.reader == nil {
		return
	}
	for slotID, exp := range r.reader.slots {
		if !exp.IsZero() && !exp.After(now) {
			delete(r.reader.slots, slotID)
		}
	}
	if len(r.reader.slots) == 0 {
		r.reader = nil
	}
}

// SharedLockAdapter is an in-process sharedlock.Adapter backed by one
// mutex-guarded map, giving the writer/reader mutual-exclusion invariants of
// spec §4.7 trivial atomicity within a process (the single mutex stands in
// for the Lua script / transaction / document-update the real drivers use).
type SharedLockAdapter struct {
	mu    sync.Mutex
	now   func() time.Time
	state map[string]*sharedLockRecord
}

func NewSharedLockAdapter() *SharedLockAdapter {
	return &SharedLockAdapter{now: time.Now, state: make(map[string]*sharedLockRecord)}
}

func (a *SharedLockAdapter) record(key string) *sharedLockRecord {
	r, ok := a.state[key]
	if !ok {
		r = &sharedLockRecord{}
		a.state[key] = r
	}
	return r
}

func (a *SharedLockAdapter) prune(key string, r *sharedLockRecord, now time.Time) {
	if r.writer != nil && r.writer.expired(now) {
		r.writer = nil
	}
	r.gcReader(now)
	if r.writer == nil && r.reader == nil {
		delete(a.state, key)
	}
}

func (a *SharedLockAdapter) AcquireWriter(ctx context.Context, key, lockID string, ttl *time.Duration) (bool, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	now := a.now()
	r := a.record(key)
	a.prune(key, r, now)

	if r.reader != nil {
		return false, nil
	}
	if r.writer != nil && r.writer.lockID != lockID {
		return false, nil
	}

	rec := &lockRecord{lockID: lockID}
	if ttl != nil {
		rec.expiresAt = now.Add(*ttl)
	}
	r.writer = rec
	return true, nil
}

func (a *SharedLockAdapter) ReleaseWriter(ctx context.Context, key, lockID string) (bool, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	r, exists := a.state[key]
	if !exists {
		return false, nil
	}
	now := a.now()
	a.prune(key, r, now)

	if r.writer == nil || r.writer.lockID != lockID {
		return false, nil
	}
	r.writer = nil
	a.prune(key, r, now)
	return true, nil
}

func (a *SharedLockAdapter) RefreshWriter(ctx context.Context, key, lockID string, ttl time.Duration) (bool, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	r, exists := a.state[key]
	if !exists {
		return false, nil
	}
	now := a.now()
	a.prune(key, r, now)

	if r.writer == nil || r.writer.lockID != lockID || r.writer.expiresAt.IsZero() {
		return false, nil
	}
	r.writer.expiresAt = now.Add(ttl)
	return true, nil
}

func (a *SharedLockAdapter) AcquireReader(ctx context.Context, key, slotID string, limit int, ttl *time.Duration) (bool, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	now := a.now()
	r := a.record(key)
	a.prune(key, r, now)

	if r.writer != nil {
		return false, nil
	}

	if r.reader == nil {
		r.reader = &semaphoreRecord{limit: limit, slots: make(map[string]time.Time)}
	}

	if _, held := r.reader.slots[slotID]; held {
		if ttl != nil {
			r.reader.slots[slotID] = now.Add(*ttl)
		} else {
			r.reader.slots[slotID] = time.Time{}
		}
		return true, nil
	}

	if len(r.reader.slots) >= r.reader.limit {
		return false, nil
	}

	if ttl != nil {
		r.reader.slots[slotID] = now.Add(*ttl)
	} else {
		r.reader.slots[slotID] = time.Time{}
	}
	return true, nil
}

func (a *SharedLockAdapter) ReleaseReader(ctx context.Context, key, slotID string) (bool, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	r, exists := a.state[key]
	if !exists {
		return false, nil
	}
	now := a.now()
	a.prune(key, r, now)

	if r.writer != nil {
		return false, nil
	}
	if r.reader == nil {
		return false, nil
	}
	if _, held := r.reader.slots[slotID]; !held {
		return false, nil
	}
	delete(r.reader.slots, slotID)
	a.prune(key, r, now)
	return true, nil
}

func (a *SharedLockAdapter) RefreshReader(ctx context.Context, key, slotID string, ttl time.Duration) (bool, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	r, exists := a.state[key]
	if !exists {
		return false, nil
	}
	now := a.now()
	a.prune(key, r, now)

	if r.reader == nil {
		return false, nil
	}
	exp, held := r.reader.slots[slotID]
	if !held || exp.IsZero() {
		return false, nil
	}
	r.reader.slots[slotID] = now.Add(ttl)
	return true, nil
}

func (a *SharedLockAdapter) ForceReleaseAllReaders(ctx context.Context, key string) (bool, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	r, exists := a.state[key]
	if !exists {
		return false, nil
	}
	now := a.now()
	a.prune(key, r, now)

	if r.writer != nil {
		return false, nil
	}
	if r.reader == nil {
		return false, nil
	}
	r.reader = nil
	a.prune(key, r, now)
	return true, nil
}

func (a *SharedLockAdapter) ForceRelease(ctx context.Context, key string) (bool, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	_, exists := a.state[key]
	delete(a.state, key)
	return exists, nil
}

func (a *SharedLockAdapter) GetState(ctx context.Context, key string) (*sharedlock.State, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	r, exists := a.state[key]
	if !exists {
		return nil, nil
	}
	now := a.now()
	a.prune(key, r, now)

	if _, exists = a.state[key]; !exists {
		return nil, nil
	}

	st := &sharedlock.State{}
	if r.writer != nil {
		st.Writer = &lock.State{LockID: r.writer.lockID, ExpiresAt: r.writer.expiresAt}
	}
	if r.reader != nil {
		rec := &semaphore.Record{Limit: r.reader.limit}
		for slotID, exp := range r.reader.slots {
			rec.Slots = append(rec.Slots, semaphore.Slot{SlotID: slotID, ExpiresAt: exp})
		}
		st.Reader = rec
	}
	return st, nil
}

var _ sharedlock.Adapter = (*SharedLockAdapter)(nil)
