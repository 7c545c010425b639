package middleware

import (
	"context"
	"time"
)

// ObserveEvent carries the context for each observe callback.
type ObserveEvent[T any] struct {
	ReturnValue   T
	Error         error
	ExecutionTime time.Duration
}

// ObserveOption configures the observe middleware. onFinally always runs;
// exactly one of onSuccess/onError runs, matching spec testable property 10.
type ObserveOption[T any] struct {
	OnStart   func()
	OnSuccess func(ObserveEvent[T])
	OnError   func(ObserveEvent[T])
	OnFinally func(ObserveEvent[T])
}

// Observe invokes callbacks around F, timing the call with the monotonic
// clock (time.Since is monotonic-safe in Go). It distinguishes a thrown
// error from a Result-Failure from a Result-Success by evaluating v/err
// through the same Result-aware lens Retry and Fallback use: ObserveEvent.Error
// carries the effective error either way, so OnError/OnSuccess fire
// correctly regardless of which mode T is used in.
func Observe[T any](opt *ObserveOption[T]) Middleware[T] {
	return func(ctx context.Context, next Next[T]) (T, error) {
		if opt.OnStart != nil {
			opt.OnStart()
		}

		start := time.Now()
		v, err := next(ctx)
		elapsed := time.Since(start)

		eff := effectiveError(v, err)
		evt := ObserveEvent[T]{ReturnValue: v, Error: eff, ExecutionTime: elapsed}
		if eff != nil {
			if opt.OnError != nil {
				opt.OnError(evt)
			}
		} else if opt.OnSuccess != nil {
			opt.OnSuccess(evt)
		}

		if opt.OnFinally != nil {
			opt.OnFinally(evt)
		}

		return v, err
	}
}
