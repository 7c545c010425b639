package redis

import (
	"context"
	"errors"
	"time"

	redis "github.com/redis/go-redis/v9"

	"github.com/lattice-sync/lattice/cache"
)

// CacheAdapter implements cache.Adapter over a single Redis node. Get/Set/
// Add map directly onto GET/SET/SETNX, the same commands the teacher's
// dsync/cache.Cache.Load/Store/StoreOnce use; Increment/Decrement use
// INCRBY/DECRBY; Clear uses FLUSHDB, scoped by the caller running this
// adapter against a dedicated Redis DB or key prefix.
type CacheAdapter struct {
	client Client
}

func NewCacheAdapter(client Client) *CacheAdapter {
	return &CacheAdapter{client: client}
}

func (a *CacheAdapter) Get(ctx context.Context, key string) ([]byte, bool, error) {
	v, err := a.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return v, true, nil
}

func (a *CacheAdapter) Set(ctx context.Context, key string, value []byte, ttl *time.Duration) error {
	d := time.Duration(0)
	if ttl != nil {
		d = *ttl
	}
	return a.client.Set(ctx, key, value, d).Err()
}

func (a *CacheAdapter) Add(ctx context.Context, key string, value []byte, ttl *time.Duration) (bool, error) {
	d := time.Duration(0)
	if ttl != nil {
		d = *ttl
	}
	return a.client.SetNX(ctx, key, value, d).Result()
}

func (a *CacheAdapter) Delete(ctx context.Context, key string) (bool, error) {
	n, err := a.client.Del(ctx, key).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (a *CacheAdapter) Increment(ctx context.Context, key string, delta int64) (int64, error) {
	return a.client.IncrBy(ctx, key, delta).Result()
}

func (a *CacheAdapter) Decrement(ctx context.Context, key string, delta int64) (int64, error) {
	return a.client.DecrBy(ctx, key, delta).Result()
}

func (a *CacheAdapter) Clear(ctx context.Context) error {
	return a.client.FlushDB(ctx).Err()
}

var _ cache.Adapter = (*CacheAdapter)(nil)
