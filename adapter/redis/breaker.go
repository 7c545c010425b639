package redis

import (
	"context"
	"strconv"
	"time"

	redis "github.com/redis/go-redis/v9"

	"github.com/lattice-sync/lattice/breaker"
)

// Breaker records are stored as a Redis hash: state, failureCount,
// successCount, openedAtMs, attempt, ver. ver is an optimistic-concurrency
// counter bumped on every write (Reset deletes the hash, which reads back
// as ver 0), guarding UpdateState's fetch-compute-store
// cycle (the policy's Next is a pure Go function, so it cannot run inside
// the Lua script the way the lock/semaphore scripts do).

var breakerTrackFailureScript = redis.NewScript(`
	redis.call('HSETNX', KEYS[1], 'state', '0')
	redis.call('HINCRBY', KEYS[1], 'failureCount', 1)
	redis.call('HINCRBY', KEYS[1], 'ver', 1)
	return 1
`)

var breakerTrackSuccessScript = redis.NewScript(`
	local key = KEYS[1]
	redis.call('HSETNX', key, 'state', '0')
	local state = tonumber(redis.call('HGET', key, 'state'))
	if state == 0 then
		redis.call('HSET', key, 'failureCount', 0)
	elseif state == 2 then
		redis.call('HINCRBY', key, 'successCount', 1)
	end
	redis.call('HINCRBY', key, 'ver', 1)
	return 1
`)

var breakerCASScript = redis.NewScript(`
	local key = KEYS[1]
	local expectVer = ARGV[1]
	local state, failureCount, successCount, openedAtMs, attempt, newVer = ARGV[2], ARGV[3], ARGV[4], ARGV[5], ARGV[6], ARGV[7]

	local curVer = redis.call('HGET', key, 'ver') or '0'
	if curVer ~= expectVer then
		return 0
	end

	redis.call('HSET', key, 'state', state, 'failureCount', failureCount, 'successCount', successCount,
		'openedAtMs', openedAtMs, 'attempt', attempt, 'ver', newVer)
	return 1
`)

var breakerIsolateScript = redis.NewScript(`
	redis.call('HSET', KEYS[1], 'state', ARGV[1], 'failureCount', 0, 'successCount', 0)
	redis.call('HINCRBY', KEYS[1], 'ver', 1)
	return 1
`)

// BreakerAdapter implements breaker.Adapter over a single Redis node, with a
// shared breaker.Policy applied to every key.
type BreakerAdapter struct {
	client Client
	now    func() time.Time
	policy breaker.Policy
}

// NewBreakerAdapter returns a BreakerAdapter applying policy to every key. A
// nil policy defaults to breaker.NewConsecutivePolicy().
func NewBreakerAdapter(client Client, policy breaker.Policy) *BreakerAdapter {
	if policy == nil {
		policy = breaker.NewConsecutivePolicy()
	}
	return &BreakerAdapter{client: client, now: time.Now, policy: policy}
}

func parseBreakerRecord(fields map[string]string) (breaker.Record, int64) {
	var r breaker.Record
	if v, ok := fields["state"]; ok {
		n, _ := strconv.Atoi(v)
		r.State = breaker.State(n)
	}
	if v, ok := fields["failureCount"]; ok {
		r.FailureCount, _ = strconv.Atoi(v)
	}
	if v, ok := fields["successCount"]; ok {
		r.SuccessCount, _ = strconv.Atoi(v)
	}
	if v, ok := fields["attempt"]; ok {
		r.Attempt, _ = strconv.Atoi(v)
	}
	var ver int64
	if v, ok := fields["openedAtMs"]; ok {
		ms, _ := strconv.ParseInt(v, 10, 64)
		if ms != 0 {
			r.OpenedAt = time.UnixMilli(ms)
		}
	}
	if v, ok := fields["ver"]; ok {
		ver, _ = strconv.ParseInt(v, 10, 64)
	}
	return r, ver
}

func (a *BreakerAdapter) GetState(ctx context.Context, key string) (breaker.Record, error) {
	fields, err := a.client.HGetAll(ctx, key).Result()
	if err != nil {
		return breaker.Record{}, err
	}
	r, _ := parseBreakerRecord(fields)
	return r, nil
}

func (a *BreakerAdapter) TrackFailure(ctx context.Context, key string) error {
	return breakerTrackFailureScript.Run(ctx, a.client, []string{key}).Err()
}

func (a *BreakerAdapter) TrackSuccess(ctx context.Context, key string) error {
	return breakerTrackSuccessScript.Run(ctx, a.client, []string{key}).Err()
}

func (a *BreakerAdapter) UpdateState(ctx context.Context, key string) (from, to breaker.State, err error) {
	for {
		fields, err := a.client.HGetAll(ctx, key).Result()
		if err != nil {
			return breaker.Closed, breaker.Closed, err
		}
		cur, ver := parseBreakerRecord(fields)
		from = cur.State

		next := a.policy.Next(a.now(), cur)

		openedAtMs := int64(0)
		if !next.OpenedAt.IsZero() {
			openedAtMs = next.OpenedAt.UnixMilli()
		}

		res, err := breakerCASScript.Run(ctx, a.client, []string{key},
			strconv.FormatInt(ver, 10),
			strconv.Itoa(int(next.State)),
			strconv.Itoa(next.FailureCount),
			strconv.Itoa(next.SuccessCount),
			strconv.FormatInt(openedAtMs, 10),
			strconv.Itoa(next.Attempt),
			strconv.FormatInt(ver+1, 10),
		).Int()
		if err != nil {
			return from, from, err
		}
		if res == 1 {
			return from, next.State, nil
		}
		// Lost the race to a concurrent writer; retry with the fresh record.
	}
}

func (a *BreakerAdapter) Isolate(ctx context.Context, key string) error {
	return breakerIsolateScript.Run(ctx, a.client, []string{key}, int(breaker.Isolated)).Err()
}

func (a *BreakerAdapter) Reset(ctx context.Context, key string) error {
	return a.client.Del(ctx, key).Err()
}

var _ breaker.Adapter = (*BreakerAdapter)(nil)
