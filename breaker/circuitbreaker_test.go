package breaker_test

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"golang.org/x/time/rate"

	"github.com/lattice-sync/lattice/adapter/memory"
	"github.com/lattice-sync/lattice/backoff"
	"github.com/lattice-sync/lattice/breaker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// countingHandler counts slog.Handler.Handle calls instead of formatting
// output, so tests can assert on log volume without parsing text.
type countingHandler struct{ n *int32 }

func (h countingHandler) Enabled(context.Context, slog.Level) bool { return true }
func (h countingHandler) Handle(context.Context, slog.Record) error {
	atomic.AddInt32(h.n, 1)
	return nil
}
func (h countingHandler) WithAttrs([]slog.Attr) slog.Handler { return h }
func (h countingHandler) WithGroup(string) slog.Handler      { return h }

func newTestBreaker() *breaker.Breaker {
	policy := &breaker.ConsecutivePolicy{
		FailureThreshold: 2,
		SuccessThreshold: 2,
		BackoffPolicy:    backoff.Constant(10 * time.Millisecond, 0),
	}
	return breaker.New(&breaker.Option{Adapter: memory.NewBreakerAdapter(policy)})
}

func TestBreakerOpensAfterConsecutiveFailures(t *testing.T) {
	b := newTestBreaker()
	ctx := context.Background()
	boom := errors.New("boom")

	for i := 0; i < 2; i++ {
		err := b.Run(ctx, "svc", func(ctx context.Context) error { return boom })
		assert.ErrorIs(t, err, boom)
	}

	state, err := b.State(ctx, "svc")
	require.NoError(t, err)
	assert.Equal(t, breaker.Open, state)

	err = b.Run(ctx, "svc", func(ctx context.Context) error {
		t.Fatal("F must not be invoked while Open")
		return nil
	})
	assert.ErrorIs(t, err, breaker.ErrUnavailable)
}

func TestBreakerRecoversThroughHalfOpenToClosed(t *testing.T) {
	b := newTestBreaker()
	ctx := context.Background()
	boom := errors.New("boom")

	for i := 0; i < 2; i++ {
		_ = b.Run(ctx, "svc", func(ctx context.Context) error { return boom })
	}

	time.Sleep(20 * time.Millisecond)

	for i := 0; i < 2; i++ {
		err := b.Run(ctx, "svc", func(ctx context.Context) error { return nil })
		require.NoError(t, err)
	}

	state, err := b.State(ctx, "svc")
	require.NoError(t, err)
	assert.Equal(t, breaker.Closed, state)
}

func TestBreakerIsolateShortCircuitsRegardlessOfCounters(t *testing.T) {
	b := newTestBreaker()
	ctx := context.Background()

	require.NoError(t, b.Isolate(ctx, "svc"))

	err := b.Run(ctx, "svc", func(ctx context.Context) error {
		t.Fatal("F must not be invoked while Isolated")
		return nil
	})
	assert.ErrorIs(t, err, breaker.ErrIsolated)

	require.NoError(t, b.Reset(ctx, "svc"))
	err = b.Run(ctx, "svc", func(ctx context.Context) error { return nil })
	require.NoError(t, err)
}

// The adapter's Record after opening must match the state-machine's
// expected shape exactly, not just State: counters reset, Attempt set.
func TestBreakerRecordMatchesExpectedShapeAfterOpening(t *testing.T) {
	adapter := memory.NewBreakerAdapter(&breaker.ConsecutivePolicy{
		FailureThreshold: 2,
		SuccessThreshold: 2,
		BackoffPolicy:    backoff.Constant(10 * time.Millisecond, 0),
	})
	b := breaker.New(&breaker.Option{Adapter: adapter})
	ctx := context.Background()
	boom := errors.New("boom")

	for i := 0; i < 2; i++ {
		_ = b.Run(ctx, "svc", func(ctx context.Context) error { return boom })
	}

	r, err := adapter.GetState(ctx, "svc")
	require.NoError(t, err)

	want := breaker.Record{State: breaker.Open, Attempt: 1}
	if diff := cmp.Diff(want, r, cmpopts.IgnoreFields(breaker.Record{}, "OpenedAt")); diff != "" {
		t.Errorf("record shape after opening did not match (-want +got):\n%s", diff)
	}
	assert.False(t, r.OpenedAt.IsZero())
}

// Sampling throttles onTransition's log line the way the teacher's
// circuitbreaker throttles its own update under high QPS: only the first
// transition within the sampling interval is logged.
func TestBreakerSamplingThrottlesTransitionLogging(t *testing.T) {
	var n int32
	policy := &breaker.ConsecutivePolicy{
		FailureThreshold: 1,
		SuccessThreshold: 1,
		BackoffPolicy:    backoff.Constant(10 * time.Millisecond, 0),
	}
	b := breaker.New(&breaker.Option{
		Adapter:  memory.NewBreakerAdapter(policy),
		Logger:   slog.New(countingHandler{n: &n}),
		Sampling: &rate.Sometimes{Interval: time.Hour},
	})
	ctx := context.Background()
	boom := errors.New("boom")

	_ = b.Run(ctx, "svc", func(ctx context.Context) error { return boom }) // Closed -> Open
	time.Sleep(20 * time.Millisecond)
	_ = b.Run(ctx, "svc", func(ctx context.Context) error { return nil }) // Open -> HalfOpen -> Closed

	assert.Equal(t, int32(1), atomic.LoadInt32(&n), "sampling interval should suppress all transitions after the first")
}

func TestBreakerSuccessInClosedDoesNotOpen(t *testing.T) {
	b := newTestBreaker()
	ctx := context.Background()
	boom := errors.New("boom")

	_ = b.Run(ctx, "svc", func(ctx context.Context) error { return boom })
	err := b.Run(ctx, "svc", func(ctx context.Context) error { return nil })
	require.NoError(t, err)

	state, err := b.State(ctx, "svc")
	require.NoError(t, err)
	assert.Equal(t, breaker.Closed, state)
}
