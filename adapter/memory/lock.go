package memory

import (
	"context"
	"sync"
	"time"

	"github.com/lattice-sync/lattice/lock"
)

type lockRecord struct {
	lockID    string
	expiresAt time.Time // zero means unexpireable
}

func (r lockRecord) expired(now time.Time) bool {
	return !r.expiresAt.IsZero() && !r.expiresAt.After(now)
}

// LockAdapter is an in-process lock.Adapter backed by a map guarded by a
// mutex, giving each key linearizable semantics within one process.
type LockAdapter struct {
	mu    sync.Mutex
	now   func() time.Time
	state map[string]lockRecord
}

func NewLockAdapter() *LockAdapter {
	return &LockAdapter{now: time.Now, state: make(map[string]lockRecord)}
}

func (a *LockAdapter) Acquire(ctx context.Context, key, lockID string, ttl *time.Duration) (bool, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	now := a.now()
	r, exists := a.state[key]
	if exists && !r.expired(now) {
		return r.lockID == lockID, nil
	}

	rec := lockRecord{lockID: lockID}
	if ttl != nil {
		rec.expiresAt = now.Add(*ttl)
	}
	a.state[key] = rec
	return true, nil
}

func (a *LockAdapter) Release(ctx context.Context, key, lockID string) (bool, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	r, exists := a.state[key]
	if !exists || r.expired(a.now()) || r.lockID != lockID {
		return false, nil
	}
	delete(a.state, key)
	return true, nil
}

func (a *LockAdapter) Refresh(ctx context.Context, key, lockID string, ttl time.Duration) (bool, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	now := a.now()
	r, exists := a.state[key]
	if !exists || r.expired(now) || r.lockID != lockID || r.expiresAt.IsZero() {
		return false, nil
	}
	r.expiresAt = now.Add(ttl)
	a.state[key] = r
	return true, nil
}

func (a *LockAdapter) ForceRelease(ctx context.Context, key string) (bool, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	_, exists := a.state[key]
	delete(a.state, key)
	return exists, nil
}

func (a *LockAdapter) GetState(ctx context.Context, key string) (*lock.State, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	r, exists := a.state[key]
	if !exists || r.expired(a.now()) {
		return nil, nil
	}
	return &lock.State{LockID: r.lockID, ExpiresAt: r.expiresAt}, nil
}

var _ lock.Adapter = (*LockAdapter)(nil)
