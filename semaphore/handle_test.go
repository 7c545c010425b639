package semaphore_test

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/lattice-sync/lattice/adapter/memory"
	"github.com/lattice-sync/lattice/semaphore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestProvider() *semaphore.Provider {
	return semaphore.New(&semaphore.Option{Adapter: memory.NewSemaphoreAdapter()})
}

// S3: semaphore limit with concurrent acquirers and a blocking latecomer.
func TestSemaphoreLimitWithBlockingLatecomer(t *testing.T) {
	p := newTestProvider()

	var successes int32
	var wg sync.WaitGroup
	handles := make([]*semaphore.Handle, 3)
	for i := range handles {
		handles[i] = p.Create("k", semaphore.HandleOption{Limit: 2, TTL: time.Hour})
	}

	for _, h := range handles {
		wg.Add(1)
		go func(h *semaphore.Handle) {
			defer wg.Done()
			ok, err := h.Acquire(context.Background())
			require.NoError(t, err)
			if ok {
				atomic.AddInt32(&successes, 1)
			}
		}(h)
	}
	wg.Wait()

	assert.Equal(t, int32(2), atomic.LoadInt32(&successes))

	fourth := p.Create("k", semaphore.HandleOption{Limit: 2, TTL: time.Hour})
	go func() {
		time.Sleep(20 * time.Millisecond)
		_, _ = handles[0].Release(context.Background())
	}()

	ok, err := fourth.AcquireBlocking(context.Background(), semaphore.BlockingOption{Time: 200 * time.Millisecond})
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestSemaphoreGetStateTagged(t *testing.T) {
	p := newTestProvider()
	h := p.Create("k", semaphore.HandleOption{Limit: 1, TTL: time.Minute})

	state, err := h.GetStateTagged(context.Background())
	require.NoError(t, err)
	assert.Equal(t, semaphore.Unacquired, state.Tag)

	ok, err := h.Acquire(context.Background())
	require.NoError(t, err)
	require.True(t, ok)

	state, err = h.GetStateTagged(context.Background())
	require.NoError(t, err)
	assert.Equal(t, semaphore.Acquired, state.Tag)
	assert.Greater(t, state.RemainingTime, time.Duration(0))

	other := p.Create("k", semaphore.HandleOption{Limit: 1, TTL: time.Minute})
	state, err = other.GetStateTagged(context.Background())
	require.NoError(t, err)
	assert.Equal(t, semaphore.LimitReached, state.Tag)
}

func TestSemaphoreGetStateTaggedExpired(t *testing.T) {
	p := newTestProvider()
	h := p.Create("k", semaphore.HandleOption{Limit: 1, TTL: 10 * time.Millisecond})

	ok, err := h.Acquire(context.Background())
	require.NoError(t, err)
	require.True(t, ok)

	time.Sleep(30 * time.Millisecond)

	state, err := h.GetStateTagged(context.Background())
	require.NoError(t, err)
	assert.Equal(t, semaphore.Expired, state.Tag)
}

func TestSemaphoreRunAlwaysReleases(t *testing.T) {
	p := newTestProvider()
	h := p.Create("k", semaphore.HandleOption{Limit: 1})

	r := semaphore.Run(context.Background(), h, func(ctx context.Context) (int, error) {
		return 7, nil
	})
	v, err := r.Unwrap()
	require.NoError(t, err)
	assert.Equal(t, 7, v)

	other := p.Create("k", semaphore.HandleOption{Limit: 1})
	ok, err := other.Acquire(context.Background())
	require.NoError(t, err)
	assert.True(t, ok, "slot must be released after Run")
}
