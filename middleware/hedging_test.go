package middleware_test

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/lattice-sync/lattice/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHedgingReturnsFastPathWithoutHedging(t *testing.T) {
	var calls int32
	mw := middleware.Hedging[int](&middleware.HedgingOption{
		Delay: 50 * time.Millisecond,
	})

	v, err := mw(context.Background(), func(ctx context.Context) (int, error) {
		atomic.AddInt32(&calls, 1)
		return 1, nil
	})

	require.NoError(t, err)
	assert.Equal(t, 1, v)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestHedgingLaunchesSecondAttemptAfterDelay(t *testing.T) {
	var calls int32
	var hedged bool
	mw := middleware.Hedging[int](&middleware.HedgingOption{
		Delay:     5 * time.Millisecond,
		MaxHedges: 1,
		OnHedge:   func(int) { hedged = true },
	})

	v, err := mw(context.Background(), func(ctx context.Context) (int, error) {
		n := atomic.AddInt32(&calls, 1)
		if n == 1 {
			time.Sleep(50 * time.Millisecond)
		}
		return int(n), nil
	})

	require.NoError(t, err)
	assert.Equal(t, 2, v)
	assert.True(t, hedged)
	assert.GreaterOrEqual(t, atomic.LoadInt32(&calls), int32(2))
}
