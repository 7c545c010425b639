// Package breakertest is the adapter conformance suite every breaker.Adapter
// implementation must pass, modeled on the teacher's storage/redis/redistest
// and storage/sql/sqltest shared-suite pattern.
package breakertest

import (
	"context"
	"testing"

	"github.com/lattice-sync/lattice/breaker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Factory builds a fresh, empty Adapter for each subtest.
type Factory func(t *testing.T) breaker.Adapter

// Run executes the full conformance suite against adapters built by factory.
func Run(t *testing.T, factory Factory) {
	t.Run("new key starts closed with zero counters", func(t *testing.T) {
		a := factory(t)
		r, err := a.GetState(context.Background(), "k")
		require.NoError(t, err)
		assert.Equal(t, breaker.Closed, r.State)
		assert.Zero(t, r.FailureCount)
		assert.Zero(t, r.SuccessCount)
	})

	t.Run("isolate forces isolated regardless of counters", func(t *testing.T) {
		a := factory(t)
		ctx := context.Background()
		require.NoError(t, a.TrackFailure(ctx, "k"))
		require.NoError(t, a.Isolate(ctx, "k"))

		r, err := a.GetState(ctx, "k")
		require.NoError(t, err)
		assert.Equal(t, breaker.Isolated, r.State)
	})

	t.Run("reset clears back to closed", func(t *testing.T) {
		a := factory(t)
		ctx := context.Background()
		require.NoError(t, a.Isolate(ctx, "k"))
		require.NoError(t, a.Reset(ctx, "k"))

		r, err := a.GetState(ctx, "k")
		require.NoError(t, err)
		assert.Equal(t, breaker.Closed, r.State)
	})

	t.Run("tracking is isolated per key", func(t *testing.T) {
		a := factory(t)
		ctx := context.Background()
		require.NoError(t, a.TrackFailure(ctx, "k1"))

		r1, err := a.GetState(ctx, "k1")
		require.NoError(t, err)
		r2, err := a.GetState(ctx, "k2")
		require.NoError(t, err)

		assert.Equal(t, 1, r1.FailureCount)
		assert.Zero(t, r2.FailureCount)
	})
}
