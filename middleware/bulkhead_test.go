package middleware_test

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/lattice-sync/lattice/middleware"
	"github.com/stretchr/testify/assert"
)

func TestBulkheadLimitsConcurrency(t *testing.T) {
	var active, maxActive int32
	mw := middleware.Bulkhead[int](&middleware.BulkheadOption{
		MaxConcurrency: 2,
		MaxCapacity:    10,
	})

	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = mw(context.Background(), func(ctx context.Context) (int, error) {
				n := atomic.AddInt32(&active, 1)
				for {
					old := atomic.LoadInt32(&maxActive)
					if n <= old || atomic.CompareAndSwapInt32(&maxActive, old, n) {
						break
					}
				}
				time.Sleep(10 * time.Millisecond)
				atomic.AddInt32(&active, -1)
				return 1, nil
			})
		}()
	}
	wg.Wait()

	assert.LessOrEqual(t, atomic.LoadInt32(&maxActive), int32(2))
}

func TestBulkheadRejectsBeyondCapacity(t *testing.T) {
	mw := middleware.Bulkhead[int](&middleware.BulkheadOption{
		MaxConcurrency: 1,
		MaxCapacity:    1,
	})

	release := make(chan struct{})
	started := make(chan struct{})
	go func() {
		_, _ = mw(context.Background(), func(ctx context.Context) (int, error) {
			close(started)
			<-release
			return 1, nil
		})
	}()
	<-started

	_, err := mw(context.Background(), func(ctx context.Context) (int, error) {
		return 2, nil
	})

	assert.ErrorIs(t, err, middleware.CapacityFullAsyncError)
	close(release)
}
