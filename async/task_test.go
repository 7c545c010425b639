package async_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/lattice-sync/lattice/async"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTaskRunsProducerExactlyOnce(t *testing.T) {
	var calls int32
	task := async.New(func(ctx context.Context) (int, error) {
		atomic.AddInt32(&calls, 1)
		return 42, nil
	})

	v1, err1 := task.Await(context.Background())
	v2, err2 := task.Await(context.Background())

	require.NoError(t, err1)
	require.NoError(t, err2)
	assert.Equal(t, 42, v1)
	assert.Equal(t, 42, v2)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestTaskNotStartedUntilAwaited(t *testing.T) {
	var started bool
	task := async.New(func(ctx context.Context) (int, error) {
		started = true
		return 1, nil
	})

	assert.False(t, started)
	_, _ = task.Await(context.Background())
	assert.True(t, started)
}

func TestPipeDoesNotShareCacheWithOriginal(t *testing.T) {
	var calls int32
	base := async.New(func(ctx context.Context) (int, error) {
		return int(atomic.AddInt32(&calls, 1)), nil
	})

	piped := base.Pipe(func(next async.Producer[int]) async.Producer[int] {
		return func(ctx context.Context) (int, error) {
			v, err := next(ctx)
			return v * 10, err
		}
	})

	baseVal, _ := base.Await(context.Background())
	pipedVal, _ := piped.Await(context.Background())

	assert.Equal(t, 1, baseVal)
	assert.Equal(t, 20, pipedVal)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestFailurePropagatesToAwaiter(t *testing.T) {
	boom := errors.New("boom")
	task := async.New(func(ctx context.Context) (int, error) {
		return 0, boom
	})

	_, err := task.Await(context.Background())
	assert.ErrorIs(t, err, boom)
}

func TestDelayResolvesAfterDuration(t *testing.T) {
	start := time.Now()
	_, err := async.Delay(20 * time.Millisecond).Await(context.Background())
	require.NoError(t, err)
	assert.GreaterOrEqual(t, time.Since(start), 20*time.Millisecond)
}

func TestDelayCancellation(t *testing.T) {
	ctx, token := async.WithCancelToken(context.Background())
	task := async.Delay(time.Hour)

	go func() {
		time.Sleep(5 * time.Millisecond)
		token.Cancel(nil)
	}()

	_, err := task.Await(ctx)
	assert.ErrorIs(t, err, async.ErrCanceled)
}

func TestDetachDoesNotBlock(t *testing.T) {
	done := make(chan struct{})
	task := async.New(func(ctx context.Context) (int, error) {
		close(done)
		return 1, nil
	})

	task.Detach()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("producer never ran")
	}
}
