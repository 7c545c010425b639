package result_test

import (
	"errors"
	"testing"

	"github.com/lattice-sync/lattice/result"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResult(t *testing.T) {
	ok := result.Success(42)
	assert.True(t, ok.IsSuccess())
	assert.False(t, ok.IsFailure())
	assert.Equal(t, 42, ok.MustUnwrap())

	failErr := errors.New("boom")
	fail := result.Failure[int](failErr)
	assert.True(t, fail.IsFailure())
	assert.Equal(t, 0, fail.UnwrapOr(0))
	assert.Equal(t, -1, fail.UnwrapOrElse(func(error) int { return -1 }))

	mapped := ok.Map(func(v int) int { return v + 1 })
	assert.Equal(t, 43, mapped.MustUnwrap())

	mappedErr := fail.MapError(func(err error) error { return errors.New("wrapped: " + err.Error()) })
	assert.EqualError(t, mappedErr.Err, "wrapped: boom")
}

func TestAllAndPartition(t *testing.T) {
	values, err := result.All(result.Success(1), result.Success(2))
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2}, values)

	_, err = result.All(result.Success(1), result.Failure[int](errors.New("bad")))
	require.Error(t, err)

	ok, errs := result.Partition(result.Success(1), result.Failure[int](errors.New("bad")), result.Success(3))
	assert.Equal(t, []int{1, 3}, ok)
	assert.Len(t, errs, 1)
}

func TestMustUnwrapPanicsOnFailure(t *testing.T) {
	defer func() {
		assert.NotNil(t, recover())
	}()
	result.Failure[int](errors.New("boom")).MustUnwrap()
}
