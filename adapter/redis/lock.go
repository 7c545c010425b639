package redis

import (
	"context"
	"errors"
	"time"

	redis "github.com/redis/go-redis/v9"

	"github.com/lattice-sync/lattice/lock"
)

var lockAcquireScript = redis.NewScript(`
	local key = KEYS[1]
	local val = ARGV[1]
	local ttl_ms = tonumber(ARGV[2])

	local cur = redis.call('GET', key)
	if cur == val then
		if ttl_ms > 0 then
			redis.call('PEXPIRE', key, ttl_ms)
		end
		return 1
	end
	if cur then
		return 0
	end

	if ttl_ms > 0 then
		redis.call('SET', key, val, 'PX', ttl_ms)
	else
		redis.call('SET', key, val)
	end
	return 1
`)

var lockReleaseScript = redis.NewScript(`
	local key = KEYS[1]
	local val = ARGV[1]

	if redis.call('GET', key) == val then
		return redis.call('DEL', key)
	end
	return 0
`)

var lockRefreshScript = redis.NewScript(`
	local key = KEYS[1]
	local val = ARGV[1]
	local ttl_ms = tonumber(ARGV[2])

	local ttl = redis.call('PTTL', key)
	if redis.call('GET', key) ~= val then
		return 0
	end
	if ttl < 0 then
		-- key has no expiry (unexpireable), or is gone: do not grant an expiry
		return 0
	end
	return redis.call('PEXPIRE', key, ttl_ms)
`)

// LockAdapter implements lock.Adapter over a single Redis node.
type LockAdapter struct {
	client Client
}

func NewLockAdapter(client Client) *LockAdapter {
	return &LockAdapter{client: client}
}

func (a *LockAdapter) Acquire(ctx context.Context, key, lockID string, ttl *time.Duration) (bool, error) {
	ms := int64(0)
	if ttl != nil {
		ms = ttl.Milliseconds()
	}
	res, err := lockAcquireScript.Run(ctx, a.client, []string{key}, lockID, ms).Int()
	if err != nil {
		return false, err
	}
	return res == 1, nil
}

func (a *LockAdapter) Release(ctx context.Context, key, lockID string) (bool, error) {
	res, err := lockReleaseScript.Run(ctx, a.client, []string{key}, lockID).Int()
	if err != nil {
		return false, err
	}
	return res == 1, nil
}

func (a *LockAdapter) Refresh(ctx context.Context, key, lockID string, ttl time.Duration) (bool, error) {
	res, err := lockRefreshScript.Run(ctx, a.client, []string{key}, lockID, ttl.Milliseconds()).Int()
	if err != nil {
		return false, err
	}
	return res == 1, nil
}

func (a *LockAdapter) ForceRelease(ctx context.Context, key string) (bool, error) {
	n, err := a.client.Del(ctx, key).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (a *LockAdapter) GetState(ctx context.Context, key string) (*lock.State, error) {
	lockID, err := a.client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	ttl, err := a.client.PTTL(ctx, key).Result()
	if err != nil {
		return nil, err
	}

	st := &lock.State{LockID: lockID}
	if ttl > 0 {
		st.ExpiresAt = time.Now().Add(ttl)
	}
	return st, nil
}

var _ lock.Adapter = (*LockAdapter)(nil)
