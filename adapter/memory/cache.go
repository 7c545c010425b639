package memory

import (
	"context"
	"encoding/binary"
	"sync"
	"time"

	"github.com/lattice-sync/lattice/cache"
)

type cacheEntry struct {
	value     []byte
	expiresAt time.Time // zero means unexpireable
}

func (e cacheEntry) expired(now time.Time) bool {
	return !e.expiresAt.IsZero() && !e.expiresAt.After(now)
}

// CacheAdapter is an in-process cache.Adapter backed by a map guarded by a
// mutex.
type CacheAdapter struct {
	mu    sync.Mutex
	now   func() time.Time
	state map[string]cacheEntry
}

func NewCacheAdapter() *CacheAdapter {
	return &CacheAdapter{now: time.Now, state: make(map[string]cacheEntry)}
}

func (a *CacheAdapter) Get(ctx context.Context, key string) ([]byte, bool, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	e, exists := a.state[key]
	if !exists || e.expired(a.now()) {
		return nil, false, nil
	}
	return e.value, true, nil
}

func (a *CacheAdapter) Set(ctx context.Context, key string, value []byte, ttl *time.Duration) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	e := cacheEntry{value: value}
	if ttl != nil {
		e.expiresAt = a.now().Add(*ttl)
	}
	a.state[key] = e
	return nil
}

func (a *CacheAdapter) Add(ctx context.Context, key string, value []byte, ttl *time.Duration) (bool, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	now := a.now()
	if e, exists := a.state[key]; exists && !e.expired(now) {
		return false, nil
	}

	e := cacheEntry{value: value}
	if ttl != nil {
		e.expiresAt = now.Add(*ttl)
	}
	a.state[key] = e
	return true, nil
}

func (a *CacheAdapter) Delete(ctx context.Context, key string) (bool, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	e, exists := a.state[key]
	delete(a.state, key)
	return exists && !e.expired(a.now()), nil
}

func (a *CacheAdapter) addDelta(key string, delta int64) int64 {
	now := a.now()
	e, exists := a.state[key]
	var cur int64
	if exists && !e.expired(now) && len(e.value) == 8 {
		cur = int64(binary.BigEndian.Uint64(e.value))
	}
	cur += delta

	buf := make([]byte, 8)
	binary.BigEndian.PutUint64(buf, uint64(cur))

	ttl := time.Duration(0)
	if exists && !e.expiresAt.IsZero() {
		ttl = e.expiresAt.Sub(now)
	}
	ne := cacheEntry{value: buf}
	if exists && !e.expiresAt.IsZero() && ttl > 0 {
		ne.expiresAt = now.Add(ttl)
	}
	a.state[key] = ne
	return cur
}

func (a *CacheAdapter) Increment(ctx context.Context, key string, delta int64) (int64, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.addDelta(key, delta), nil
}

func (a *CacheAdapter) Decrement(ctx context.Context, key string, delta int64) (int64, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.addDelta(key, -delta), nil
}

func (a *CacheAdapter) Clear(ctx context.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.state = make(map[string]cacheEntry)
	return nil
}

var _ cache.Adapter = (*CacheAdapter)(nil)
