package middleware_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/lattice-sync/lattice/middleware"
	"github.com/lattice-sync/lattice/result"
	"github.com/stretchr/testify/assert"
)

func TestObserveCallsSuccessAndFinally(t *testing.T) {
	var start, success, fail, finally bool
	mw := middleware.Observe[int](&middleware.ObserveOption[int]{
		OnStart:   func() { start = true },
		OnSuccess: func(middleware.ObserveEvent[int]) { success = true },
		OnError:   func(middleware.ObserveEvent[int]) { fail = true },
		OnFinally: func(e middleware.ObserveEvent[int]) {
			finally = true
			assert.GreaterOrEqual(t, e.ExecutionTime, time.Duration(0))
		},
	})

	v, err := mw(context.Background(), func(ctx context.Context) (int, error) {
		time.Sleep(time.Millisecond)
		return 5, nil
	})

	assert.NoError(t, err)
	assert.Equal(t, 5, v)
	assert.True(t, start)
	assert.True(t, success)
	assert.False(t, fail)
	assert.True(t, finally)
}

func TestObserveCallsErrorAndFinallyOnFailure(t *testing.T) {
	boom := errors.New("boom")
	var success, fail, finally bool
	mw := middleware.Observe[int](&middleware.ObserveOption[int]{
		OnSuccess: func(middleware.ObserveEvent[int]) { success = true },
		OnError:   func(middleware.ObserveEvent[int]) { fail = true },
		OnFinally: func(middleware.ObserveEvent[int]) { finally = true },
	})

	_, err := mw(context.Background(), func(ctx context.Context) (int, error) {
		return 0, boom
	})

	assert.ErrorIs(t, err, boom)
	assert.False(t, success)
	assert.True(t, fail)
	assert.True(t, finally)
}

// A Result-Failure returned with a nil thrown error must fire OnError, not
// OnSuccess, distinguishing it from a genuine Result-Success.
func TestObserveDistinguishesResultFailureFromSuccess(t *testing.T) {
	boom := errors.New("boom")
	var success, fail bool
	var observedErr error
	mw := middleware.Observe[result.Result[int]](&middleware.ObserveOption[result.Result[int]]{
		OnSuccess: func(middleware.ObserveEvent[result.Result[int]]) { success = true },
		OnError: func(e middleware.ObserveEvent[result.Result[int]]) {
			fail = true
			observedErr = e.Error
		},
	})

	v, err := mw(context.Background(), func(ctx context.Context) (result.Result[int], error) {
		return result.Failure[int](boom), nil
	})

	assert.NoError(t, err)
	assert.True(t, v.IsFailure())
	assert.False(t, success)
	assert.True(t, fail)
	assert.ErrorIs(t, observedErr, boom)
}
