package breaker

import (
	"context"
	"log/slog"

	"golang.org/x/time/rate"

	"github.com/lattice-sync/lattice/middleware"
)

// Option configures a Breaker.
type Option struct {
	Adapter          Adapter
	MetricsCollector MetricsCollector
	Logger           *slog.Logger
	// Sampling, when set, throttles onTransition's structured log line the
	// way the teacher's circuitbreaker throttles its state update under high
	// QPS; nil (the default) logs every transition.
	Sampling *rate.Sometimes
}

// NewOption returns defaults: an in-process AtomicMetrics collector and
// slog.Default(); Adapter has no default and must be supplied.
func NewOption() *Option {
	return &Option{
		MetricsCollector: &AtomicMetrics{},
		Logger:           slog.Default(),
	}
}

// Breaker is the per-key circuit breaker provider: it checks Adapter state
// before invoking a guarded call and records the outcome afterward.
type Breaker struct {
	adapter  Adapter
	metrics  MetricsCollector
	logger   *slog.Logger
	sampling *rate.Sometimes
}

// New returns a Breaker backed by opt.Adapter, panicking if none is set
// (mirrors the teacher's "missing handler" panic in sync/circuitbreaker.New).
func New(opt *Option) *Breaker {
	if opt == nil {
		opt = NewOption()
	}
	if opt.Adapter == nil {
		panic("breaker: missing Adapter in Option")
	}
	metrics := opt.MetricsCollector
	if metrics == nil {
		metrics = &AtomicMetrics{}
	}
	logger := opt.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Breaker{adapter: opt.Adapter, metrics: metrics, logger: logger, sampling: opt.Sampling}
}

// State returns the current state of key.
func (b *Breaker) State(ctx context.Context, key string) (State, error) {
	r, err := b.adapter.GetState(ctx, key)
	if err != nil {
		return Closed, err
	}
	return r.State, nil
}

// Isolate forces key into the Isolated state.
func (b *Breaker) Isolate(ctx context.Context, key string) error {
	return b.adapter.Isolate(ctx, key)
}

// Reset clears key back to Closed.
func (b *Breaker) Reset(ctx context.Context, key string) error {
	return b.adapter.Reset(ctx, key)
}

// Run checks key's state, short-circuiting with ErrUnavailable/ErrIsolated
// when Open or Isolated, otherwise invoking f and recording the outcome.
func (b *Breaker) Run(ctx context.Context, key string, f func(ctx context.Context) error) error {
	b.metrics.IncRequests()

	from, to, err := b.adapter.UpdateState(ctx, key)
	if err != nil {
		return err
	}
	if from != to {
		b.onTransition(key, from, to)
	}

	state, err := b.State(ctx, key)
	if err != nil {
		return err
	}

	if state.IsIsolated() {
		b.metrics.IncFailures()
		return ErrIsolated
	}
	if state.IsOpen() {
		b.metrics.IncFailures()
		return ErrUnavailable
	}

	err = f(ctx)
	if err != nil {
		b.metrics.IncFailures()
		if terr := b.adapter.TrackFailure(ctx, key); terr != nil {
			return terr
		}
	} else {
		b.metrics.IncSuccesses()
		if terr := b.adapter.TrackSuccess(ctx, key); terr != nil {
			return terr
		}
	}

	if _, to2, uerr := b.adapter.UpdateState(ctx, key); uerr == nil && to2 != state {
		b.onTransition(key, state, to2)
	}

	return err
}

func (b *Breaker) onTransition(key string, from, to State) {
	if to.IsOpen() {
		b.metrics.IncOpen()
	}
	if to.IsClosed() {
		b.metrics.IncClose()
	}

	log := func() {
		b.logger.Info("breaker state transition", "key", key, "from", from.String(), "to", to.String())
	}
	if b.sampling == nil {
		log()
		return
	}
	b.sampling.Do(log)
}

// Middleware adapts Breaker into a resilience middleware guarding calls
// keyed by key, per spec §4.4's "used as a resilience middleware" behavior.
func Middleware[T any](b *Breaker, key string) middleware.Middleware[T] {
	return func(ctx context.Context, next middleware.Next[T]) (T, error) {
		var v T
		err := b.Run(ctx, key, func(ctx context.Context) error {
			result, ferr := next(ctx)
			v = result
			return ferr
		})
		return v, err
	}
}
