package middleware_test

import (
	"context"
	"testing"
	"time"

	"github.com/lattice-sync/lattice/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTimeoutFiresBeforeSlowFCompletes(t *testing.T) {
	var onTimeout bool
	mw := middleware.Timeout[int](&middleware.TimeoutOption{
		Duration:  10 * time.Millisecond,
		OnTimeout: func() { onTimeout = true },
	})

	_, err := mw(context.Background(), func(ctx context.Context) (int, error) {
		select {
		case <-time.After(time.Hour):
			return 1, nil
		case <-ctx.Done():
			return 0, context.Cause(ctx)
		}
	})

	assert.ErrorIs(t, err, middleware.TimeoutAsyncError)
	assert.True(t, onTimeout)
}

func TestTimeoutDoesNotFireWhenFCompletesInTime(t *testing.T) {
	mw := middleware.Timeout[int](&middleware.TimeoutOption{
		Duration: 50 * time.Millisecond,
	})

	v, err := mw(context.Background(), func(ctx context.Context) (int, error) {
		return 3, nil
	})

	require.NoError(t, err)
	assert.Equal(t, 3, v)
}
