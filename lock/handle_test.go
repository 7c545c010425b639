package lock_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/lattice-sync/lattice/adapter/memory"
	"github.com/lattice-sync/lattice/lock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestProvider() *lock.Provider {
	return lock.New(&lock.Option{Adapter: memory.NewLockAdapter()})
}

// S1: lock exclusion with blocking acquire.
func TestLockExclusionWithBlockingAcquire(t *testing.T) {
	p := newTestProvider()
	a := p.Create("k", lock.HandleOption{TTL: 100 * time.Millisecond})
	b := p.Create("k", lock.HandleOption{TTL: 100 * time.Millisecond})

	ok, err := a.Acquire(context.Background())
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = b.AcquireBlocking(context.Background(), lock.BlockingOption{Time: 50 * time.Millisecond})
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = a.Release(context.Background())
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = b.AcquireBlocking(context.Background(), lock.BlockingOption{Time: 200 * time.Millisecond})
	require.NoError(t, err)
	assert.True(t, ok)
}

// S2: lock expiry hands ownership to a new owner, and the stale owner can
// no longer release or refresh.
func TestLockExpiryHandsOverOwnership(t *testing.T) {
	p := newTestProvider()
	a := p.Create("k", lock.HandleOption{TTL: 50 * time.Millisecond})

	ok, err := a.Acquire(context.Background())
	require.NoError(t, err)
	assert.True(t, ok)

	time.Sleep(80 * time.Millisecond)

	b := p.Create("k", lock.HandleOption{TTL: 50 * time.Millisecond})
	ok, err = b.Acquire(context.Background())
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = a.Release(context.Background())
	require.NoError(t, err)
	assert.False(t, ok)

	state, err := b.GetState(context.Background())
	require.NoError(t, err)
	require.NotNil(t, state)
	assert.Equal(t, b.LockID(), state.LockID)
}

func TestAcquireOrFailAndReleaseOrFail(t *testing.T) {
	p := newTestProvider()
	a := p.Create("k")
	b := p.Create("k")

	require.NoError(t, a.AcquireOrFail(context.Background()))
	assert.ErrorIs(t, b.AcquireOrFail(context.Background()), lock.ErrFailedAcquire)
	assert.ErrorIs(t, b.ReleaseOrFail(context.Background()), lock.ErrFailedRelease)
	require.NoError(t, a.ReleaseOrFail(context.Background()))
}

func TestRunAlwaysReleasesOnFailure(t *testing.T) {
	p := newTestProvider()
	h := p.Create("k")

	boom := errors.New("boom")
	r := lock.Run(context.Background(), h, func(ctx context.Context) (int, error) {
		return 0, boom
	})
	assert.True(t, r.IsFailure())

	other := p.Create("k")
	ok, err := other.Acquire(context.Background())
	require.NoError(t, err)
	assert.True(t, ok, "the lock must be released even though fn failed")
}

func TestRunReturnsValueOnSuccess(t *testing.T) {
	p := newTestProvider()
	h := p.Create("k")

	r := lock.Run(context.Background(), h, func(ctx context.Context) (string, error) {
		return "done", nil
	})

	v, err := r.Unwrap()
	require.NoError(t, err)
	assert.Equal(t, "done", v)
}
