// Package semaphoretest is the adapter conformance suite every
// semaphore.Adapter implementation must pass.
package semaphoretest

import (
	"context"
	"testing"
	"time"

	"github.com/lattice-sync/lattice/semaphore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type Factory func(t *testing.T) semaphore.Adapter

func Run(t *testing.T, factory Factory) {
	ctx := context.Background()
	ttl := time.Minute

	t.Run("limit is fixed by the first acquire", func(t *testing.T) {
		a := factory(t)
		_, err := a.Acquire(ctx, "k", "s1", 2, &ttl)
		require.NoError(t, err)
		_, err = a.Acquire(ctx, "k", "s2", 99, &ttl)
		require.NoError(t, err)

		r, err := a.GetState(ctx, "k")
		require.NoError(t, err)
		require.NotNil(t, r)
		assert.Equal(t, 2, r.Limit)
	})

	t.Run("acquire beyond the limit fails", func(t *testing.T) {
		a := factory(t)
		_, err := a.Acquire(ctx, "k", "s1", 1, &ttl)
		require.NoError(t, err)

		ok, err := a.Acquire(ctx, "k", "s2", 1, &ttl)
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("acquire is idempotent for the same slot", func(t *testing.T) {
		a := factory(t)
		_, err := a.Acquire(ctx, "k", "s1", 1, &ttl)
		require.NoError(t, err)

		ok, err := a.Acquire(ctx, "k", "s1", 1, &ttl)
		require.NoError(t, err)
		assert.True(t, ok)

		r, err := a.GetState(ctx, "k")
		require.NoError(t, err)
		assert.Len(t, r.Slots, 1)
	})

	t.Run("release frees a slot for reuse", func(t *testing.T) {
		a := factory(t)
		_, err := a.Acquire(ctx, "k", "s1", 1, &ttl)
		require.NoError(t, err)

		ok, err := a.Release(ctx, "k", "s1")
		require.NoError(t, err)
		assert.True(t, ok)

		ok, err = a.Acquire(ctx, "k", "s2", 1, &ttl)
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("refresh fails for a non-holder", func(t *testing.T) {
		a := factory(t)
		_, err := a.Acquire(ctx, "k", "s1", 1, &ttl)
		require.NoError(t, err)

		ok, err := a.Refresh(ctx, "k", "s2", ttl)
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("refresh fails for an unexpireable slot", func(t *testing.T) {
		a := factory(t)
		_, err := a.Acquire(ctx, "k", "s1", 1, nil)
		require.NoError(t, err)

		ok, err := a.Refresh(ctx, "k", "s1", ttl)
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("expired slots are not observable and free capacity", func(t *testing.T) {
		a := factory(t)
		shortTTL := 10 * time.Millisecond
		_, err := a.Acquire(ctx, "k", "s1", 1, &shortTTL)
		require.NoError(t, err)

		time.Sleep(30 * time.Millisecond)

		ok, err := a.Acquire(ctx, "k", "s2", 1, &ttl)
		require.NoError(t, err)
		assert.True(t, ok, "expired slot must free capacity")
	})

	t.Run("peekOwnSlot sees an expired slot GetState has already pruned", func(t *testing.T) {
		a := factory(t)
		shortTTL := 10 * time.Millisecond
		_, err := a.Acquire(ctx, "k", "s1", 1, &shortTTL)
		require.NoError(t, err)

		time.Sleep(30 * time.Millisecond)

		// GetState prunes s1 as a side effect; PeekOwnSlot must still see it
		// if read first.
		own, err := a.PeekOwnSlot(ctx, "k", "s1")
		require.NoError(t, err)
		require.NotNil(t, own)
		assert.Equal(t, "s1", own.SlotID)

		r, err := a.GetState(ctx, "k")
		require.NoError(t, err)
		assert.Nil(t, r)
	})

	t.Run("peekOwnSlot is nil for a slot that never acquired", func(t *testing.T) {
		a := factory(t)
		_, err := a.Acquire(ctx, "k", "s1", 1, &ttl)
		require.NoError(t, err)

		own, err := a.PeekOwnSlot(ctx, "k", "s2")
		require.NoError(t, err)
		assert.Nil(t, own)
	})

	t.Run("forceReleaseAll clears every slot", func(t *testing.T) {
		a := factory(t)
		_, err := a.Acquire(ctx, "k", "s1", 2, &ttl)
		require.NoError(t, err)
		_, err = a.Acquire(ctx, "k", "s2", 2, &ttl)
		require.NoError(t, err)

		ok, err := a.ForceReleaseAll(ctx, "k")
		require.NoError(t, err)
		assert.True(t, ok)

		r, err := a.GetState(ctx, "k")
		require.NoError(t, err)
		assert.Nil(t, r)
	})
}
