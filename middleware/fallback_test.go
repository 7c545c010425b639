package middleware_test

import (
	"context"
	"errors"
	"testing"

	"github.com/lattice-sync/lattice/middleware"
	"github.com/lattice-sync/lattice/result"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFallbackReturnsStaticValueOnFailure(t *testing.T) {
	mw := middleware.Fallback[int](&middleware.FallbackOption[int]{
		FallbackValue: 99,
	})

	v, err := mw(context.Background(), func(ctx context.Context) (int, error) {
		return 0, errors.New("boom")
	})

	require.NoError(t, err)
	assert.Equal(t, 99, v)
}

func TestFallbackFuncTakesPriorityOverValue(t *testing.T) {
	boom := errors.New("boom")
	mw := middleware.Fallback[int](&middleware.FallbackOption[int]{
		FallbackValue: 99,
		FallbackFunc: func(err error) (int, error) {
			assert.ErrorIs(t, err, boom)
			return 7, nil
		},
	})

	v, err := mw(context.Background(), func(ctx context.Context) (int, error) {
		return 0, boom
	})

	require.NoError(t, err)
	assert.Equal(t, 7, v)
}

func TestFallbackLeavesSuccessUntouched(t *testing.T) {
	called := false
	mw := middleware.Fallback[int](&middleware.FallbackOption[int]{
		FallbackValue: 99,
		OnFallback:    func(error) { called = true },
	})

	v, err := mw(context.Background(), func(ctx context.Context) (int, error) {
		return 1, nil
	})

	require.NoError(t, err)
	assert.Equal(t, 1, v)
	assert.False(t, called)
}

// A Result-Failure returned with a nil thrown error must trigger the
// fallback the same way a thrown error would.
func TestFallbackTriggersOnResultFailure(t *testing.T) {
	boom := errors.New("boom")
	mw := middleware.Fallback[result.Result[int]](&middleware.FallbackOption[result.Result[int]]{
		FallbackFunc: func(err error) (result.Result[int], error) {
			assert.ErrorIs(t, err, boom)
			return result.Success(99), nil
		},
	})

	v, err := mw(context.Background(), func(ctx context.Context) (result.Result[int], error) {
		return result.Failure[int](boom), nil
	})

	require.NoError(t, err)
	require.True(t, v.IsSuccess())
	got, _ := v.Unwrap()
	assert.Equal(t, 99, got)
}

func TestFallbackHonorsErrorPolicy(t *testing.T) {
	uncovered := errors.New("uncovered")
	mw := middleware.Fallback[int](&middleware.FallbackOption[int]{
		FallbackValue: 99,
		ErrorPolicy:   func(err error) bool { return !errors.Is(err, uncovered) },
	})

	_, err := mw(context.Background(), func(ctx context.Context) (int, error) {
		return 0, uncovered
	})

	assert.ErrorIs(t, err, uncovered)
}
