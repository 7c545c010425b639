// Package sharedlocktest is the adapter conformance suite every
// sharedlock.Adapter implementation must pass, covering the writer/reader
// mutual-exclusion invariants of the shared-lock primitive.
package sharedlocktest

import (
	"context"
	"testing"
	"time"

	"github.com/lattice-sync/lattice/sharedlock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Factory builds a fresh, empty Adapter for each subtest.
type Factory func(t *testing.T) sharedlock.Adapter

func Run(t *testing.T, factory Factory) {
	ctx := context.Background()
	ttl := time.Minute

	t.Run("acquireWriter on a free key succeeds", func(t *testing.T) {
		a := factory(t)
		ok, err := a.AcquireWriter(ctx, "k", "w1", &ttl)
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("acquireWriter is idempotent for the same writer", func(t *testing.T) {
		a := factory(t)
		_, err := a.AcquireWriter(ctx, "k", "w1", &ttl)
		require.NoError(t, err)

		ok, err := a.AcquireWriter(ctx, "k", "w1", &ttl)
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("acquireWriter by a different writer fails while held", func(t *testing.T) {
		a := factory(t)
		_, err := a.AcquireWriter(ctx, "k", "w1", &ttl)
		require.NoError(t, err)

		ok, err := a.AcquireWriter(ctx, "k", "w2", &ttl)
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("acquireWriter fails while any reader is present", func(t *testing.T) {
		a := factory(t)
		_, err := a.AcquireReader(ctx, "k", "r1", 3, &ttl)
		require.NoError(t, err)

		ok, err := a.AcquireWriter(ctx, "k", "w1", &ttl)
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("acquireReader fails while a writer is present", func(t *testing.T) {
		a := factory(t)
		_, err := a.AcquireWriter(ctx, "k", "w1", &ttl)
		require.NoError(t, err)

		ok, err := a.AcquireReader(ctx, "k", "r1", 3, &ttl)
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("releaseWriter then acquireReader now succeeds", func(t *testing.T) {
		a := factory(t)
		_, err := a.AcquireWriter(ctx, "k", "w1", &ttl)
		require.NoError(t, err)

		ok, err := a.ReleaseWriter(ctx, "k", "w1")
		require.NoError(t, err)
		assert.True(t, ok)

		ok, err = a.AcquireReader(ctx, "k", "r1", 3, &ttl)
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("releaseWriter returns true only for the owner", func(t *testing.T) {
		a := factory(t)
		_, err := a.AcquireWriter(ctx, "k", "w1", &ttl)
		require.NoError(t, err)

		ok, err := a.ReleaseWriter(ctx, "k", "w2")
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("releaseReader fails while a writer is present", func(t *testing.T) {
		a := factory(t)
		_, err := a.AcquireReader(ctx, "k", "r1", 3, &ttl)
		require.NoError(t, err)
		_, err = a.ReleaseReader(ctx, "k", "r1")
		require.NoError(t, err)

		_, err = a.AcquireWriter(ctx, "k", "w1", &ttl)
		require.NoError(t, err)

		ok, err := a.ReleaseReader(ctx, "k", "nonexistent")
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("reader semaphore limit is enforced", func(t *testing.T) {
		a := factory(t)
		_, err := a.AcquireReader(ctx, "k", "r1", 2, &ttl)
		require.NoError(t, err)
		_, err = a.AcquireReader(ctx, "k", "r2", 2, &ttl)
		require.NoError(t, err)

		ok, err := a.AcquireReader(ctx, "k", "r3", 2, &ttl)
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("forceReleaseAllReaders is a no-op while a writer is held", func(t *testing.T) {
		a := factory(t)
		_, err := a.AcquireReader(ctx, "k", "r1", 3, &ttl)
		require.NoError(t, err)
		_, err = a.ReleaseReader(ctx, "k", "r1")
		require.NoError(t, err)
		_, err = a.AcquireWriter(ctx, "k", "w1", &ttl)
		require.NoError(t, err)

		ok, err := a.ForceReleaseAllReaders(ctx, "k")
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("forceReleaseAllReaders clears readers when no writer is present", func(t *testing.T) {
		a := factory(t)
		_, err := a.AcquireReader(ctx, "k", "r1", 3, &ttl)
		require.NoError(t, err)

		ok, err := a.ForceReleaseAllReaders(ctx, "k")
		require.NoError(t, err)
		assert.True(t, ok)

		state, err := a.GetState(ctx, "k")
		require.NoError(t, err)
		assert.Nil(t, state)
	})

	t.Run("forceRelease clears both writer and readers", func(t *testing.T) {
		a := factory(t)
		_, err := a.AcquireWriter(ctx, "k", "w1", &ttl)
		require.NoError(t, err)

		ok, err := a.ForceRelease(ctx, "k")
		require.NoError(t, err)
		assert.True(t, ok)

		ok, err = a.AcquireReader(ctx, "k", "r1", 3, &ttl)
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("refreshWriter fails for a non-owner", func(t *testing.T) {
		a := factory(t)
		_, err := a.AcquireWriter(ctx, "k", "w1", &ttl)
		require.NoError(t, err)

		ok, err := a.RefreshWriter(ctx, "k", "w2", ttl)
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("refreshWriter fails for an unexpireable writer", func(t *testing.T) {
		a := factory(t)
		_, err := a.AcquireWriter(ctx, "k", "w1", nil)
		require.NoError(t, err)

		ok, err := a.RefreshWriter(ctx, "k", "w1", ttl)
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("refreshReader fails for a non-holder", func(t *testing.T) {
		a := factory(t)
		_, err := a.AcquireReader(ctx, "k", "r1", 3, &ttl)
		require.NoError(t, err)

		ok, err := a.RefreshReader(ctx, "k", "r2", ttl)
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("getState reflects the writer", func(t *testing.T) {
		a := factory(t)
		_, err := a.AcquireWriter(ctx, "k", "w1", &ttl)
		require.NoError(t, err)

		state, err := a.GetState(ctx, "k")
		require.NoError(t, err)
		require.NotNil(t, state)
		require.NotNil(t, state.Writer)
		assert.Equal(t, "w1", state.Writer.LockID)
		assert.Nil(t, state.Reader)
	})

	t.Run("getState reflects readers", func(t *testing.T) {
		a := factory(t)
		_, err := a.AcquireReader(ctx, "k", "r1", 3, &ttl)
		require.NoError(t, err)

		state, err := a.GetState(ctx, "k")
		require.NoError(t, err)
		require.NotNil(t, state)
		assert.Nil(t, state.Writer)
		require.NotNil(t, state.Reader)
		assert.Len(t, state.Reader.Slots, 1)
	})

	t.Run("getState is nil for an unheld key", func(t *testing.T) {
		a := factory(t)
		state, err := a.GetState(ctx, "missing")
		require.NoError(t, err)
		assert.Nil(t, state)
	})

	t.Run("expired writer no longer blocks readers", func(t *testing.T) {
		a := factory(t)
		shortTTL := 10 * time.Millisecond
		_, err := a.AcquireWriter(ctx, "k", "w1", &shortTTL)
		require.NoError(t, err)

		time.Sleep(30 * time.Millisecond)

		ok, err := a.AcquireReader(ctx, "k", "r1", 3, &ttl)
		require.NoError(t, err)
		assert.True(t, ok, "expired writer must not block readers")
	})
}
