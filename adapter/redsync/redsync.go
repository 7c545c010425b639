// Package redsync is an alternate lock.Adapter wrapping go-redsync/v4's
// single-instance Redlock algorithm, grounded on kalbasit-ncps's
// pkg/lock/redis.Locker: a map of in-flight *redsync.Mutex keyed by lock
// identity, guarded by a mutex, because redsync.Mutex carries the acquired
// value/expiry state Unlock/Extend need and there is no way to reconstruct
// it from (key, lockID) alone.
package redsync

import (
	"context"
	"errors"
	"sync"
	"time"

	goredislib "github.com/go-redsync/redsync/v4/redis/goredis/v9"
	"github.com/redis/go-redis/v9"

	"github.com/go-redsync/redsync/v4"

	"github.com/lattice-sync/lattice/lock"
)

// LockAdapter implements lock.Adapter over a single Redis node using
// redsync's single-instance Redlock.
type LockAdapter struct {
	client *redis.Client
	rs     *redsync.Redsync

	mu      sync.Mutex
	mutexes map[string]*redsync.Mutex // "<key>|<lockID>" -> acquired mutex
}

func NewLockAdapter(client *redis.Client) *LockAdapter {
	pool := goredislib.NewPool(client)
	return &LockAdapter{
		client:  client,
		rs:      redsync.New(pool),
		mutexes: make(map[string]*redsync.Mutex),
	}
}

func mutexName(key, lockID string) string { return key + "|" + lockID }

func (a *LockAdapter) Acquire(ctx context.Context, key, lockID string, ttl *time.Duration) (bool, error) {
	a.mu.Lock()
	if _, held := a.mutexes[mutexName(key, lockID)]; held {
		a.mu.Unlock()
		return true, nil
	}
	a.mu.Unlock()

	opts := []redsync.Option{
		redsync.WithTries(1),
		redsync.WithGenValueFunc(func() (string, error) { return lockID, nil }),
	}
	if ttl != nil {
		opts = append(opts, redsync.WithExpiry(*ttl))
	}

	m := a.rs.NewMutex(key, opts...)
	if err := m.LockContext(ctx); err != nil {
		if errors.Is(err, redsync.ErrFailed) || errors.As(err, new(*redsync.ErrTaken)) {
			return false, nil
		}
		return false, err
	}

	a.mu.Lock()
	a.mutexes[mutexName(key, lockID)] = m
	a.mu.Unlock()
	return true, nil
}

func (a *LockAdapter) Release(ctx context.Context, key, lockID string) (bool, error) {
	a.mu.Lock()
	m, held := a.mutexes[mutexName(key, lockID)]
	if held {
		delete(a.mutexes, mutexName(key, lockID))
	}
	a.mu.Unlock()

	if !held {
		return false, nil
	}

	ok, err := m.UnlockContext(ctx)
	if err != nil && !errors.Is(err, redsync.ErrFailed) {
		return false, err
	}
	return ok, nil
}

func (a *LockAdapter) Refresh(ctx context.Context, key, lockID string, ttl time.Duration) (bool, error) {
	a.mu.Lock()
	m, held := a.mutexes[mutexName(key, lockID)]
	a.mu.Unlock()
	if !held {
		return false, nil
	}

	ok, err := m.ExtendContext(ctx)
	if err != nil && !errors.Is(err, redsync.ErrFailed) {
		return false, err
	}
	return ok, nil
}

// ForceRelease removes the underlying key directly, since redsync.Mutex
// exposes no "force unlock regardless of owner" operation.
func (a *LockAdapter) ForceRelease(ctx context.Context, key string) (bool, error) {
	n, err := a.client.Del(ctx, key).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// GetState reads the raw key/TTL directly, bypassing redsync's Mutex API
// (which has no read-only accessor), the same way the lock's own value was
// written via WithGenValueFunc above.
func (a *LockAdapter) GetState(ctx context.Context, key string) (*lock.State, error) {
	lockID, err := a.client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	pttl, err := a.client.PTTL(ctx, key).Result()
	if err != nil {
		return nil, err
	}

	st := &lock.State{LockID: lockID}
	if pttl > 0 {
		st.ExpiresAt = time.Now().Add(pttl)
	}
	return st, nil
}

var _ lock.Adapter = (*LockAdapter)(nil)
