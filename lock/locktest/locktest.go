// Package locktest is the adapter conformance suite every lock.Adapter
// implementation must pass, covering the testable properties of ownership
// fencing, TTL expiration and idempotent re-acquisition (spec §8, 1-3).
package locktest

import (
	"context"
	"testing"
	"time"

	"github.com/lattice-sync/lattice/lock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Factory builds a fresh, empty Adapter for each subtest.
type Factory func(t *testing.T) lock.Adapter

func Run(t *testing.T, factory Factory) {
	ctx := context.Background()

	t.Run("acquire on a free key succeeds", func(t *testing.T) {
		a := factory(t)
		ttl := time.Minute
		ok, err := a.Acquire(ctx, "k", "owner-1", &ttl)
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("acquire is idempotent for the same owner", func(t *testing.T) {
		a := factory(t)
		ttl := time.Minute
		_, err := a.Acquire(ctx, "k", "owner-1", &ttl)
		require.NoError(t, err)

		ok, err := a.Acquire(ctx, "k", "owner-1", &ttl)
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("acquire by a different owner fails while held", func(t *testing.T) {
		a := factory(t)
		ttl := time.Minute
		_, err := a.Acquire(ctx, "k", "owner-1", &ttl)
		require.NoError(t, err)

		ok, err := a.Acquire(ctx, "k", "owner-2", &ttl)
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("release returns true only for the owner", func(t *testing.T) {
		a := factory(t)
		ttl := time.Minute
		_, err := a.Acquire(ctx, "k", "owner-1", &ttl)
		require.NoError(t, err)

		ok, err := a.Release(ctx, "k", "owner-2")
		require.NoError(t, err)
		assert.False(t, ok)

		ok, err = a.Release(ctx, "k", "owner-1")
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("after release a new owner can acquire", func(t *testing.T) {
		a := factory(t)
		ttl := time.Minute
		_, err := a.Acquire(ctx, "k", "owner-1", &ttl)
		require.NoError(t, err)
		_, err = a.Release(ctx, "k", "owner-1")
		require.NoError(t, err)

		ok, err := a.Acquire(ctx, "k", "owner-2", &ttl)
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("refresh fails for a non-owner", func(t *testing.T) {
		a := factory(t)
		ttl := time.Minute
		_, err := a.Acquire(ctx, "k", "owner-1", &ttl)
		require.NoError(t, err)

		ok, err := a.Refresh(ctx, "k", "owner-2", ttl)
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("refresh fails for an unexpireable lock", func(t *testing.T) {
		a := factory(t)
		_, err := a.Acquire(ctx, "k", "owner-1", nil)
		require.NoError(t, err)

		ok, err := a.Refresh(ctx, "k", "owner-1", time.Minute)
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("refresh succeeds for the owner of an expireable lock", func(t *testing.T) {
		a := factory(t)
		ttl := time.Minute
		_, err := a.Acquire(ctx, "k", "owner-1", &ttl)
		require.NoError(t, err)

		ok, err := a.Refresh(ctx, "k", "owner-1", 2*time.Minute)
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("expired lock is invisible to acquire and release", func(t *testing.T) {
		a := factory(t)
		ttl := 10 * time.Millisecond
		_, err := a.Acquire(ctx, "k", "owner-1", &ttl)
		require.NoError(t, err)

		time.Sleep(30 * time.Millisecond)

		ok, err := a.Acquire(ctx, "k", "owner-2", &ttl)
		require.NoError(t, err)
		assert.True(t, ok, "expired lock must not block a new owner")

		ok, err = a.Release(ctx, "k", "owner-1")
		require.NoError(t, err)
		assert.False(t, ok, "the expired owner must not be able to release the new owner's lock")
	})

	t.Run("forceRelease reports whether a record existed", func(t *testing.T) {
		a := factory(t)
		ok, err := a.ForceRelease(ctx, "missing")
		require.NoError(t, err)
		assert.False(t, ok)

		ttl := time.Minute
		_, err = a.Acquire(ctx, "k", "owner-1", &ttl)
		require.NoError(t, err)

		ok, err = a.ForceRelease(ctx, "k")
		require.NoError(t, err)
		assert.True(t, ok)

		ok, err = a.Acquire(ctx, "k", "owner-2", &ttl)
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("getState reflects the current owner", func(t *testing.T) {
		a := factory(t)
		ttl := time.Minute
		_, err := a.Acquire(ctx, "k", "owner-1", &ttl)
		require.NoError(t, err)

		state, err := a.GetState(ctx, "k")
		require.NoError(t, err)
		require.NotNil(t, state)
		assert.Equal(t, "owner-1", state.LockID)
		assert.True(t, state.Expireable())
	})

	t.Run("getState is nil for an unacquired key", func(t *testing.T) {
		a := factory(t)
		state, err := a.GetState(ctx, "missing")
		require.NoError(t, err)
		assert.Nil(t, state)
	})
}
