package redis

import (
	"context"
	"strconv"
	"time"

	redis "github.com/redis/go-redis/v9"

	"github.com/lattice-sync/lattice/lock"
	"github.com/lattice-sync/lattice/semaphore"
	"github.com/lattice-sync/lattice/sharedlock"
)

// Shared-lock keys are stored as two Redis keys per logical key: "<key>:w"
// (a string, same shape as LockAdapter) and "<key>:r" (a hash, same shape as
// SemaphoreAdapter). Every operation that must observe or mutate both sides
// atomically is a single Lua script, the Redis analogue of the in-memory
// adapter's single mutex.

var sharedLockAcquireWriterScript = redis.NewScript(`
	local wkey, rkey = KEYS[1], KEYS[2]
	local val = ARGV[1]
	local ttl_ms = tonumber(ARGV[2])
	local now_ms = tonumber(ARGV[3])

	local fields = redis.call('HGETALL', rkey)
	for i = 1, #fields, 2 do
		local v = tonumber(fields[i + 1])
		if fields[i] ~= '__limit__' and (v == 0 or v > now_ms) then
			return 0
		end
	end

	local cur = redis.call('GET', wkey)
	if cur == val then
		if ttl_ms > 0 then redis.call('PEXPIRE', wkey, ttl_ms) end
		return 1
	end
	if cur then
		return 0
	end

	if ttl_ms > 0 then
		redis.call('SET', wkey, val, 'PX', ttl_ms)
	else
		redis.call('SET', wkey, val)
	end
	return 1
`)

var sharedLockAcquireReaderScript = redis.NewScript(`
	local wkey, rkey = KEYS[1], KEYS[2]
	local slot = ARGV[1]
	local limit = tonumber(ARGV[2])
	local ttl_ms = tonumber(ARGV[3])
	local now_ms = tonumber(ARGV[4])

	if redis.call('EXISTS', wkey) == 1 then
		return 0
	end

	if redis.call('HEXISTS', rkey, '__limit__') == 0 then
		redis.call('HSET', rkey, '__limit__', limit)
	end
	local fixedLimit = tonumber(redis.call('HGET', rkey, '__limit__'))

	local fields = redis.call('HGETALL', rkey)
	local held = 0
	for i = 1, #fields, 2 do
		local f = fields[i]
		local v = tonumber(fields[i + 1])
		if f ~= '__limit__' then
			if v ~= 0 and v <= now_ms then
				redis.call('HDEL', rkey, f)
			else
				held = held + 1
			end
		end
	end

	if redis.call('HEXISTS', rkey, slot) == 1 then
		redis.call('HSET', rkey, slot, ttl_ms > 0 and (now_ms + ttl_ms) or 0)
		return 1
	end
	if held >= fixedLimit then
		return 0
	end

	redis.call('HSET', rkey, slot, ttl_ms > 0 and (now_ms + ttl_ms) or 0)
	return 1
`)

var sharedLockReleaseWriterScript = redis.NewScript(`
	local wkey = KEYS[1]
	local val = ARGV[1]
	if redis.call('GET', wkey) == val then
		return redis.call('DEL', wkey)
	end
	return 0
`)

var sharedLockReleaseReaderScript = redis.NewScript(`
	local wkey, rkey = KEYS[1], KEYS[2]
	local slot = ARGV[1]

	if redis.call('EXISTS', wkey) == 1 then
		return 0
	end
	if redis.call('HEXISTS', rkey, slot) == 0 then
		return 0
	end
	redis.call('HDEL', rkey, slot)

	local fields = redis.call('HKEYS', rkey)
	if #fields == 1 and fields[1] == '__limit__' then
		redis.call('DEL', rkey)
	end
	return 1
`)

var sharedLockForceReleaseAllReadersScript = redis.NewScript(`
	local wkey, rkey = KEYS[1], KEYS[2]
	if redis.call('EXISTS', wkey) == 1 then
		return 0
	end
	return redis.call('DEL', rkey)
`)

func wKey(key string) string { return key + ":w" }
func rKey(key string) string { return key + ":r" }

// SharedLockAdapter implements sharedlock.Adapter over a single Redis node.
type SharedLockAdapter struct {
	client Client
	now    func() time.Time
}

func NewSharedLockAdapter(client Client) *SharedLockAdapter {
	return &SharedLockAdapter{client: client, now: time.Now}
}

func (a *SharedLockAdapter) AcquireWriter(ctx context.Context, key, lockID string, ttl *time.Duration) (bool, error) {
	ms := int64(0)
	if ttl != nil {
		ms = ttl.Milliseconds()
	}
	res, err := sharedLockAcquireWriterScript.Run(ctx, a.client, []string{wKey(key), rKey(key)}, lockID, ms, a.now().UnixMilli()).Int()
	if err != nil {
		return false, err
	}
	return res == 1, nil
}

func (a *SharedLockAdapter) ReleaseWriter(ctx context.Context, key, lockID string) (bool, error) {
	res, err := sharedLockReleaseWriterScript.Run(ctx, a.client, []string{wKey(key)}, lockID).Int()
	if err != nil {
		return false, err
	}
	return res == 1, nil
}

func (a *SharedLockAdapter) RefreshWriter(ctx context.Context, key, lockID string, ttl time.Duration) (bool, error) {
	res, err := lockRefreshScript.Run(ctx, a.client, []string{wKey(key)}, lockID, ttl.Milliseconds()).Int()
	if err != nil {
		return false, err
	}
	return res == 1, nil
}

func (a *SharedLockAdapter) AcquireReader(ctx context.Context, key, slotID string, limit int, ttl *time.Duration) (bool, error) {
	ms := int64(0)
	if ttl != nil {
		ms = ttl.Milliseconds()
	}
	res, err := sharedLockAcquireReaderScript.Run(ctx, a.client, []string{wKey(key), rKey(key)}, slotID, limit, ms, a.now().UnixMilli()).Int()
	if err != nil {
		return false, err
	}
	return res == 1, nil
}

func (a *SharedLockAdapter) ReleaseReader(ctx context.Context, key, slotID string) (bool, error) {
	res, err := sharedLockReleaseReaderScript.Run(ctx, a.client, []string{wKey(key), rKey(key)}, slotID).Int()
	if err != nil {
		return false, err
	}
	return res == 1, nil
}

func (a *SharedLockAdapter) RefreshReader(ctx context.Context, key, slotID string, ttl time.Duration) (bool, error) {
	res, err := semaphoreRefreshScript.Run(ctx, a.client, []string{rKey(key)}, slotID, ttl.Milliseconds(), a.now().UnixMilli()).Int()
	if err != nil {
		return false, err
	}
	return res == 1, nil
}

func (a *SharedLockAdapter) ForceReleaseAllReaders(ctx context.Context, key string) (bool, error) {
	res, err := sharedLockForceReleaseAllReadersScript.Run(ctx, a.client, []string{wKey(key), rKey(key)}).Int()
	if err != nil {
		return false, err
	}
	return res == 1, nil
}

func (a *SharedLockAdapter) ForceRelease(ctx context.Context, key string) (bool, error) {
	n, err := a.client.Del(ctx, wKey(key), rKey(key)).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (a *SharedLockAdapter) GetState(ctx context.Context, key string) (*sharedlock.State, error) {
	writerAdapter := &LockAdapter{client: a.client}
	writer, err := writerAdapter.GetState(ctx, wKey(key))
	if err != nil {
		return nil, err
	}
	if writer != nil {
		return &sharedlock.State{Writer: &lock.State{LockID: writer.LockID, ExpiresAt: writer.ExpiresAt}}, nil
	}

	fields, err := a.client.HGetAll(ctx, rKey(key)).Result()
	if err != nil {
		return nil, err
	}
	if len(fields) == 0 {
		return nil, nil
	}

	now := a.now()
	rec := &semaphore.Record{}
	for f, v := range fields {
		if f == "__limit__" {
			limit, _ := strconv.Atoi(v)
			rec.Limit = limit
			continue
		}
		ms, _ := strconv.ParseInt(v, 10, 64)
		var exp time.Time
		if ms != 0 {
			exp = time.UnixMilli(ms)
			if !exp.After(now) {
				continue
			}
		}
		rec.Slots = append(rec.Slots, semaphore.Slot{SlotID: f, ExpiresAt: exp})
	}
	if len(rec.Slots) == 0 {
		return nil, nil
	}
	return &sharedlock.State{Reader: rec}, nil
}

var _ sharedlock.Adapter = (*SharedLockAdapter)(nil)
