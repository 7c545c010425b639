package middleware

import (
	"context"
	"time"
)

// HedgingOption configures the hedging middleware.
type HedgingOption struct {
	// Delay is how long to wait for the primary attempt before racing a
	// second attempt alongside it.
	Delay time.Duration
	// MaxHedges bounds the number of secondary attempts started (default 1).
	MaxHedges int
	// OnHedge observes a hedge attempt being launched.
	OnHedge func(attempt int)
}

// Hedging starts F once, and if it has not completed after Delay, starts
// additional attempts (up to MaxHedges) concurrently without canceling
// earlier ones. Whichever attempt completes first (success or failure) wins;
// the rest keep running to completion in the background and their results
// are discarded, matching sync/promise.Promises.Race semantics.
func Hedging[T any](opt *HedgingOption) Middleware[T] {
	maxHedges := opt.MaxHedges
	if maxHedges <= 0 {
		maxHedges = 1
	}

	return func(ctx context.Context, next Next[T]) (T, error) {
		type result struct {
			v   T
			err error
		}
		done := make(chan result, 1+maxHedges)

		launch := func() {
			go func() {
				v, err := next(ctx)
				select {
				case done <- result{v, err}:
				default:
				}
			}()
		}

		launch()

		timer := time.NewTimer(opt.Delay)
		defer timer.Stop()

		hedged := 0
		for hedged < maxHedges {
			select {
			case r := <-done:
				return r.v, r.err
			case <-timer.C:
				hedged++
				if opt.OnHedge != nil {
					opt.OnHedge(hedged)
				}
				launch()
				timer.Reset(opt.Delay)
			case <-ctx.Done():
				return *new(T), context.Cause(ctx)
			}
		}

		select {
		case r := <-done:
			return r.v, r.err
		case <-ctx.Done():
			return *new(T), context.Cause(ctx)
		}
	}
}
