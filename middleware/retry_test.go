package middleware_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/lattice-sync/lattice/async"
	"github.com/lattice-sync/lattice/backoff"
	"github.com/lattice-sync/lattice/middleware"
	"github.com/lattice-sync/lattice/result"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRetrySucceedsAfterTransientFailures(t *testing.T) {
	boom := errors.New("transient")
	attempts := 0
	mw := middleware.Retry[int](&middleware.RetryOption[int]{
		MaxAttempts:   3,
		BackoffPolicy: backoff.Constant(time.Millisecond, 0),
	})

	v, err := mw(context.Background(), func(ctx context.Context) (int, error) {
		attempts++
		if attempts < 3 {
			return 0, boom
		}
		return 7, nil
	})

	require.NoError(t, err)
	assert.Equal(t, 7, v)
	assert.Equal(t, 3, attempts)
}

func TestRetryExhaustsIntoRetryResilienceError(t *testing.T) {
	boom := errors.New("always fails")
	attempts := 0
	mw := middleware.Retry[int](&middleware.RetryOption[int]{
		MaxAttempts:   3,
		BackoffPolicy: backoff.Constant(time.Millisecond, 0),
	})

	_, err := mw(context.Background(), func(ctx context.Context) (int, error) {
		attempts++
		return 0, boom
	})

	var resilience *middleware.RetryResilienceError
	require.ErrorAs(t, err, &resilience)
	assert.Equal(t, 3, resilience.Attempts)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 3, attempts)
}

func TestRetryBypassesAbortError(t *testing.T) {
	attempts := 0
	mw := middleware.Retry[int](&middleware.RetryOption[int]{
		MaxAttempts:   5,
		BackoffPolicy: backoff.Constant(time.Millisecond, 0),
	})

	_, err := mw(context.Background(), func(ctx context.Context) (int, error) {
		attempts++
		return 0, middleware.Abort(errors.New("fatal"))
	})

	assert.ErrorIs(t, err, middleware.AbortAsyncError)
	assert.Equal(t, 1, attempts)
}

func TestRetryHonorsErrorPolicy(t *testing.T) {
	unretryable := errors.New("unretryable")
	attempts := 0
	mw := middleware.Retry[int](&middleware.RetryOption[int]{
		MaxAttempts:   5,
		BackoffPolicy: backoff.Constant(time.Millisecond, 0),
		ErrorPolicy:   func(err error) bool { return !errors.Is(err, unretryable) },
	})

	_, err := mw(context.Background(), func(ctx context.Context) (int, error) {
		attempts++
		return 0, unretryable
	})

	assert.ErrorIs(t, err, unretryable)
	assert.Equal(t, 1, attempts)
}

// A Result-Failure returned with a nil thrown error must retry exactly the
// way a thrown error would, and the eventual success must come back as a
// plain result.Result, not be forced through the throw path.
func TestRetryTreatsResultFailureAsRetryable(t *testing.T) {
	boom := errors.New("transient")
	attempts := 0
	mw := middleware.Retry[result.Result[int]](&middleware.RetryOption[result.Result[int]]{
		MaxAttempts:   3,
		BackoffPolicy: backoff.Constant(time.Millisecond, 0),
	})

	v, err := mw(context.Background(), func(ctx context.Context) (result.Result[int], error) {
		attempts++
		if attempts < 3 {
			return result.Failure[int](boom), nil
		}
		return result.Success(7), nil
	})

	require.NoError(t, err)
	require.True(t, v.IsSuccess())
	got, _ := v.Unwrap()
	assert.Equal(t, 7, got)
	assert.Equal(t, 3, attempts)
}

// Exhaustion in Result mode must hand back a Result-Failure rather than a
// thrown RetryResilienceError, keeping the (T, error) contract's error nil.
func TestRetryExhaustionRewrapsIntoResultFailure(t *testing.T) {
	boom := errors.New("always fails")
	mw := middleware.Retry[result.Result[int]](&middleware.RetryOption[result.Result[int]]{
		MaxAttempts:   3,
		BackoffPolicy: backoff.Constant(time.Millisecond, 0),
	})

	v, err := mw(context.Background(), func(ctx context.Context) (result.Result[int], error) {
		return result.Failure[int](boom), nil
	})

	require.NoError(t, err)
	require.True(t, v.IsFailure())

	var resilience *middleware.RetryResilienceError
	require.ErrorAs(t, v.FailureError(), &resilience)
	assert.Equal(t, 3, resilience.Attempts)
	assert.ErrorIs(t, v.FailureError(), boom)
}

func TestRetryCancellationInterruptsBackoffWait(t *testing.T) {
	ctx, token := async.WithCancelToken(context.Background())
	boom := errors.New("boom")
	mw := middleware.Retry[int](&middleware.RetryOption[int]{
		MaxAttempts:   5,
		BackoffPolicy: backoff.Constant(time.Hour, 0),
	})

	go func() {
		time.Sleep(5 * time.Millisecond)
		token.Cancel(nil)
	}()

	_, err := mw(ctx, func(ctx context.Context) (int, error) {
		return 0, boom
	})

	assert.Error(t, err)
}
