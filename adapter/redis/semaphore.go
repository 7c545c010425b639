package redis

import (
	"context"
	"strconv"
	"time"

	redis "github.com/redis/go-redis/v9"

	"github.com/lattice-sync/lattice/semaphore"
)

// semaphoreAcquireScript stores a Redis hash per key: field "__limit__"
// holds the limit (fixed by the first acquirer), every other field is a
// slotID mapped to its expiry in unix milliseconds (0 means unexpireable).
// Expired slots are pruned on every acquire, same as the in-memory adapter's
// gc; the release and refresh scripts do not prune, and refresh rejects an
// expired slot.
var semaphoreAcquireScript = redis.NewScript(`
	local key = KEYS[1]
	local slot = ARGV[1]
	local limit = tonumber(ARGV[2])
	local ttl_ms = tonumber(ARGV[3])
	local now_ms = tonumber(ARGV[4])

	if redis.call('HEXISTS', key, '__limit__') == 0 then
		redis.call('HSET', key, '__limit__', limit)
	end
	local fixedLimit = tonumber(redis.call('HGET', key, '__limit__'))

	local fields = redis.call('HGETALL', key)
	local held = 0
	for i = 1, #fields, 2 do
		local f = fields[i]
		local v = tonumber(fields[i + 1])
		if f ~= '__limit__' then
			if v ~= 0 and v <= now_ms then
				redis.call('HDEL', key, f)
			else
				held = held + 1
			end
		end
	end

	if redis.call('HEXISTS', key, slot) == 1 then
		if ttl_ms > 0 then
			redis.call('HSET', key, slot, now_ms + ttl_ms)
		else
			redis.call('HSET', key, slot, 0)
		end
		return 1
	end

	if held >= fixedLimit then
		return 0
	end

	if ttl_ms > 0 then
		redis.call('HSET', key, slot, now_ms + ttl_ms)
	else
		redis.call('HSET', key, slot, 0)
	end
	return 1
`)

var semaphoreReleaseScript = redis.NewScript(`
	local key = KEYS[1]
	local slot = ARGV[1]

	if redis.call('HEXISTS', key, slot) == 0 then
		return 0
	end
	redis.call('HDEL', key, slot)

	local fields = redis.call('HKEYS', key)
	if #fields == 1 and fields[1] == '__limit__' then
		redis.call('DEL', key)
	end
	return 1
`)

var semaphoreRefreshScript = redis.NewScript(`
	local key = KEYS[1]
	local slot = ARGV[1]
	local ttl_ms = tonumber(ARGV[2])
	local now_ms = tonumber(ARGV[3])

	local v = redis.call('HGET', key, slot)
	if not v or tonumber(v) == 0 or tonumber(v) <= now_ms then
		return 0
	end
	redis.call('HSET', key, slot, now_ms + ttl_ms)
	return 1
`)

// SemaphoreAdapter implements semaphore.Adapter over a single Redis node.
type SemaphoreAdapter struct {
	client Client
	now    func() time.Time
}

func NewSemaphoreAdapter(client Client) *SemaphoreAdapter {
	return &SemaphoreAdapter{client: client, now: time.Now}
}

func (a *SemaphoreAdapter) Acquire(ctx context.Context, key, slotID string, limit int, ttl *time.Duration) (bool, error) {
	ms := int64(0)
	if ttl != nil {
		ms = ttl.Milliseconds()
	}
	res, err := semaphoreAcquireScript.Run(ctx, a.client, []string{key}, slotID, limit, ms, a.now().UnixMilli()).Int()
	if err != nil {
		return false, err
	}
	return res == 1, nil
}

func (a *SemaphoreAdapter) Release(ctx context.Context, key, slotID string) (bool, error) {
	res, err := semaphoreReleaseScript.Run(ctx, a.client, []string{key}, slotID).Int()
	if err != nil {
		return false, err
	}
	return res == 1, nil
}

func (a *SemaphoreAdapter) Refresh(ctx context.Context, key, slotID string, ttl time.Duration) (bool, error) {
	res, err := semaphoreRefreshScript.Run(ctx, a.client, []string{key}, slotID, ttl.Milliseconds(), a.now().UnixMilli()).Int()
	if err != nil {
		return false, err
	}
	return res == 1, nil
}

func (a *SemaphoreAdapter) ForceReleaseAll(ctx context.Context, key string) (bool, error) {
	n, err := a.client.Del(ctx, key).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (a *SemaphoreAdapter) GetState(ctx context.Context, key string) (*semaphore.Record, error) {
	fields, err := a.client.HGetAll(ctx, key).Result()
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
	return rec, nil
}

// PeekOwnSlot reads slotID's hash field directly, without the prune pass
// GetState runs, so an expired slot is still visible here.
func (a *SemaphoreAdapter) PeekOwnSlot(ctx context.Context, key, slotID string) (*semaphore.Slot, error) {
	v, err := a.client.HGet(ctx, key, slotID).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	ms, _ := strconv.ParseInt(v, 10, 64)
	var exp time.Time
	if ms != 0 {
		exp = time.UnixMilli(ms)
	}
	return &semaphore.Slot{SlotID: slotID, ExpiresAt: exp}, nil
}

var _ semaphore.Adapter = (*SemaphoreAdapter)(nil)
