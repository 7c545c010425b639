package middleware

import "context"

// BulkheadOption configures the bulkhead middleware.
type BulkheadOption struct {
	// MaxConcurrency is the number of invocations allowed to run at once.
	MaxConcurrency int
	// MaxCapacity bounds live+queued invocations; the queue depth is
	// MaxCapacity-MaxConcurrency. Invocations beyond MaxCapacity fail
	// immediately with CapacityFullAsyncError.
	MaxCapacity int
	// OnProcessing observes the live invocation count changing.
	OnProcessing func(active int)
}

// Bulkhead bounds concurrent execution of F using the semaphore-channel
// pattern from sync/backpressure.Guard: a buffered channel of MaxCapacity
// slots acts as a FIFO queue, and MaxConcurrency active workers are tracked
// separately so OnProcessing reports the live (not queued) count.
func Bulkhead[T any](opt *BulkheadOption) Middleware[T] {
	if opt.MaxConcurrency <= 0 {
		opt.MaxConcurrency = 1
	}
	if opt.MaxCapacity < opt.MaxConcurrency {
		opt.MaxCapacity = opt.MaxConcurrency
	}

	queue := make(chan struct{}, opt.MaxCapacity)
	active := make(chan struct{}, opt.MaxConcurrency)

	return func(ctx context.Context, next Next[T]) (v T, err error) {
		select {
		case queue <- struct{}{}:
		default:
			return v, CapacityFullAsyncError
		}
		defer func() { <-queue }()

		select {
		case active <- struct{}{}:
		case <-ctx.Done():
			return v, context.Cause(ctx)
		}
		defer func() { <-active }()

		if opt.OnProcessing != nil {
			opt.OnProcessing(len(active))
		}

		return next(ctx)
	}
}
