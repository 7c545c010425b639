// Package cachetest is the adapter conformance suite every cache.Adapter
// implementation must pass.
package cachetest

import (
	"context"
	"testing"
	"time"

	"github.com/lattice-sync/lattice/cache"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Factory builds a fresh, empty Adapter for each subtest.
type Factory func(t *testing.T) cache.Adapter

func Run(t *testing.T, factory Factory) {
	ctx := context.Background()
	ttl := time.Minute

	t.Run("get on a missing key reports not found", func(t *testing.T) {
		a := factory(t)
		v, found, err := a.Get(ctx, "k")
		require.NoError(t, err)
		assert.False(t, found)
		assert.Nil(t, v)
	})

	t.Run("set then get round-trips the value", func(t *testing.T) {
		a := factory(t)
		err := a.Set(ctx, "k", []byte("v1"), &ttl)
		require.NoError(t, err)

		v, found, err := a.Get(ctx, "k")
		require.NoError(t, err)
		assert.True(t, found)
		assert.Equal(t, []byte("v1"), v)
	})

	t.Run("set overwrites an existing value", func(t *testing.T) {
		a := factory(t)
		_, err := a.Add(ctx, "k", []byte("v1"), &ttl)
		require.NoError(t, err)
		err = a.Set(ctx, "k", []byte("v2"), &ttl)
		require.NoError(t, err)

		v, _, err := a.Get(ctx, "k")
		require.NoError(t, err)
		assert.Equal(t, []byte("v2"), v)
	})

	t.Run("add fails if the key already holds a live value", func(t *testing.T) {
		a := factory(t)
		ok, err := a.Add(ctx, "k", []byte("v1"), &ttl)
		require.NoError(t, err)
		assert.True(t, ok)

		ok, err = a.Add(ctx, "k", []byte("v2"), &ttl)
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("delete reports whether a live key existed", func(t *testing.T) {
		a := factory(t)
		ok, err := a.Delete(ctx, "missing")
		require.NoError(t, err)
		assert.False(t, ok)

		_, err = a.Add(ctx, "k", []byte("v1"), &ttl)
		require.NoError(t, err)

		ok, err = a.Delete(ctx, "k")
		require.NoError(t, err)
		assert.True(t, ok)

		_, found, err := a.Get(ctx, "k")
		require.NoError(t, err)
		assert.False(t, found)
	})

	t.Run("increment initializes at 0 and accumulates", func(t *testing.T) {
		a := factory(t)
		v, err := a.Increment(ctx, "n", 3)
		require.NoError(t, err)
		assert.Equal(t, int64(3), v)

		v, err = a.Increment(ctx, "n", 4)
		require.NoError(t, err)
		assert.Equal(t, int64(7), v)
	})

	t.Run("decrement subtracts", func(t *testing.T) {
		a := factory(t)
		_, err := a.Increment(ctx, "n", 10)
		require.NoError(t, err)

		v, err := a.Decrement(ctx, "n", 3)
		require.NoError(t, err)
		assert.Equal(t, int64(7), v)
	})

	t.Run("expired entries are invisible to get", func(t *testing.T) {
		a := factory(t)
		shortTTL := 10 * time.Millisecond
		err := a.Set(ctx, "k", []byte("v1"), &shortTTL)
		require.NoError(t, err)

		time.Sleep(30 * time.Millisecond)

		_, found, err := a.Get(ctx, "k")
		require.NoError(t, err)
		assert.False(t, found, "expired entry must not be visible")
	})

	t.Run("clear removes every key", func(t *testing.T) {
		a := factory(t)
		_, err := a.Add(ctx, "k1", []byte("v1"), &ttl)
		require.NoError(t, err)
		_, err = a.Add(ctx, "k2", []byte("v2"), &ttl)
		require.NoError(t, err)

		err = a.Clear(ctx)
		require.NoError(t, err)

		_, found, err := a.Get(ctx, "k1")
		require.NoError(t, err)
		assert.False(t, found)
	})
}
