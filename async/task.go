package async

import (
	"context"
	"errors"
	"sync"
	"time"
)

// ErrCanceled is returned when a Task's cancellation token fires before the
// producer completes.
var ErrCanceled = errors.New("async: canceled")

// Producer is the zero-argument computation a Task defers.
type Producer[T any] func(ctx context.Context) (T, error)

// Middleware wraps a Producer, observing or altering its behavior. Compare
// middleware.Middleware, which is the same shape specialised for the
// resilience pipeline; Task keeps its own so it has no import-cycle on the
// middleware package, which itself builds on Task-free primitives.
type Middleware[T any] func(next Producer[T]) Producer[T]

// Task is a deferred async value: constructing one does not start the
// underlying computation. The first Await executes the producer exactly
// once; later Awaits replay the cached outcome. Pipe returns a new Task with
// an additional middleware appended, without mutating or sharing the
// original Task's cache — reproducing the teacher's sync/promise.Promise
// semantics (Await/cache-once via sync.Once) but deferred to first-use
// instead of started eagerly in a goroutine at construction time.
type Task[T any] struct {
	producer Producer[T]

	once sync.Once
	done chan struct{}
	data T
	err  error
}

// New builds a Task around a producer. The producer does not run until the
// first Await.
func New[T any](producer Producer[T]) *Task[T] {
	return &Task[T]{
		producer: producer,
		done:     make(chan struct{}),
	}
}

// Pipe returns a new Task whose producer is this Task's producer wrapped by
// mw. The new Task has its own cache: it has not been awaited yet, so its
// first Await still runs mw(producer) exactly once.
func (t *Task[T]) Pipe(mw Middleware[T]) *Task[T] {
	return New(mw(t.producer))
}

// Await runs the producer on first call (synchronously, on the caller's
// goroutine) and memoizes success or failure for all later calls.
func (t *Task[T]) Await(ctx context.Context) (T, error) {
	t.once.Do(func() {
		defer close(t.done)
		t.data, t.err = t.producer(ctx)
	})
	return t.data, t.err
}

// Detach starts the computation (if not already started) without blocking
// the caller for its outcome. The outcome is still cached for later Awaits.
func (t *Task[T]) Detach() {
	go func() {
		_, _ = t.Await(context.Background())
	}()
}

// Delay returns a Task that, once awaited, suspends for d and then resolves
// with the zero value. It respects ctx cancellation, failing with
// ErrCanceled (or the context's cause) instead of the zero value.
func Delay(d time.Duration) *Task[struct{}] {
	return New(func(ctx context.Context) (struct{}, error) {
		timer := time.NewTimer(d)
		defer timer.Stop()

		select {
		case <-timer.C:
			return struct{}{}, nil
		case <-ctx.Done():
			return struct{}{}, cause(ctx)
		}
	})
}

func cause(ctx context.Context) error {
	if err := context.Cause(ctx); err != nil {
		return err
	}
	return ErrCanceled
}
