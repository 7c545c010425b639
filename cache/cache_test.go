package cache_test

import (
	"context"
	"testing"
	"time"

	"github.com/lattice-sync/lattice/adapter/memory"
	"github.com/lattice-sync/lattice/cache"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCache() *cache.Cache {
	return cache.New(&cache.Option{Adapter: memory.NewCacheAdapter()})
}

func TestCacheGetMissThenSetThenHit(t *testing.T) {
	c := newTestCache()
	ctx := context.Background()

	_, found, err := c.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, found)

	err = c.Set(ctx, "k", []byte("v1"), time.Minute)
	require.NoError(t, err)

	v, found, err := c.Get(ctx, "k")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, []byte("v1"), v)
}

func TestCacheGetOrFail(t *testing.T) {
	c := newTestCache()
	ctx := context.Background()

	_, err := c.GetOrFail(ctx, "missing")
	assert.ErrorIs(t, err, cache.ErrKeyNotFound)
}

func TestCacheAddOrFail(t *testing.T) {
	c := newTestCache()
	ctx := context.Background()

	require.NoError(t, c.AddOrFail(ctx, "k", []byte("v1"), time.Minute))
	err := c.AddOrFail(ctx, "k", []byte("v2"), time.Minute)
	assert.ErrorIs(t, err, cache.ErrKeyExists)
}

func TestCacheIncrementDecrement(t *testing.T) {
	c := newTestCache()
	ctx := context.Background()

	v, err := c.Increment(ctx, "n", 5)
	require.NoError(t, err)
	assert.Equal(t, int64(5), v)

	v, err = c.Decrement(ctx, "n", 2)
	require.NoError(t, err)
	assert.Equal(t, int64(3), v)
}

func TestCacheDeleteAndClear(t *testing.T) {
	c := newTestCache()
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "k1", []byte("v1"), time.Minute))
	require.NoError(t, c.Set(ctx, "k2", []byte("v2"), time.Minute))

	ok, err := c.Delete(ctx, "k1")
	require.NoError(t, err)
	assert.True(t, ok)

	require.NoError(t, c.Clear(ctx))

	_, found, err := c.Get(ctx, "k2")
	require.NoError(t, err)
	assert.False(t, found)
}
