package backoff_test

import (
	"testing"
	"time"

	"github.com/lattice-sync/lattice/backoff"
	"github.com/stretchr/testify/assert"
)

func TestConstant(t *testing.T) {
	p := backoff.Constant(100*time.Millisecond, 0)
	assert.Equal(t, 100*time.Millisecond, p(0, nil).Duration())
	assert.Equal(t, 100*time.Millisecond, p(5, nil).Duration())
}

func TestLinear(t *testing.T) {
	p := backoff.Linear(10*time.Millisecond, 10*time.Millisecond, 50*time.Millisecond, 0)
	assert.Equal(t, 10*time.Millisecond, p(0, nil).Duration())
	assert.Equal(t, 30*time.Millisecond, p(2, nil).Duration())
	assert.Equal(t, 50*time.Millisecond, p(10, nil).Duration(), "must clamp to max")
}

func TestExponential(t *testing.T) {
	p := backoff.Exponential(10*time.Millisecond, 2, time.Second, 0)
	assert.Equal(t, 10*time.Millisecond, p(0, nil).Duration())
	assert.Equal(t, 20*time.Millisecond, p(1, nil).Duration())
	assert.Equal(t, 40*time.Millisecond, p(2, nil).Duration())
	assert.Equal(t, time.Second, p(20, nil).Duration(), "must clamp to max")
}

func TestPolynomial(t *testing.T) {
	p := backoff.Polynomial(10*time.Millisecond, 2, time.Second, 0)
	assert.Equal(t, 10*time.Millisecond, p(1, nil).Duration())
	assert.Equal(t, 40*time.Millisecond, p(2, nil).Duration())
}

func TestJitterClampedNonNegative(t *testing.T) {
	p := backoff.Constant(5*time.Millisecond, 1.0)
	for i := 0; i < 50; i++ {
		assert.GreaterOrEqual(t, p(i, nil).Duration(), time.Duration(0))
	}
}
