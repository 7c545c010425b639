package middleware

import (
	"context"
	"time"
)

// TimeoutOption configures the timeout middleware.
type TimeoutOption struct {
	// Duration bounds how long F may run before it is abandoned.
	Duration time.Duration
	// OnTimeout observes a timeout firing before F completed.
	OnTimeout func()
}

// Timeout races F against a timer. If the timer fires first, Timeout
// cancels the derived context (so F can observe context.Cause and unwind)
// and returns TimeoutAsyncError without waiting for F to return. A
// naturally-completing F always wins the race over a timer firing at the
// same instant, per the spec's deterministic-outcome invariant.
func Timeout[T any](opt *TimeoutOption) Middleware[T] {
	return func(ctx context.Context, next Next[T]) (T, error) {
		ctx, cancel := context.WithTimeoutCause(ctx, opt.Duration, TimeoutAsyncError)
		defer cancel()

		type result struct {
			v   T
			err error
		}
		done := make(chan result, 1)
		go func() {
			v, err := next(ctx)
			done <- result{v, err}
		}()

		select {
		case r := <-done:
			return r.v, r.err
		case <-ctx.Done():
			select {
			case r := <-done:
				return r.v, r.err
			default:
			}
			if opt.OnTimeout != nil {
				opt.OnTimeout()
			}
			var zero T
			return zero, context.Cause(ctx)
		}
	}
}
