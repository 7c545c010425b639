// Package middleware implements AsyncHooks, the reverse-compose middleware
// engine the spec's resilience pipeline is built from, plus the concrete
// middlewares (retry, fallback, bulkhead, observe, timeout, hedging).
//
// Modeled on the teacher's functional-options + chained-handler idioms
// (sync/retry.DoFunc's option chain, internal.CommandHandlerFunc) and on
// sync/backpressure.Guard / sync/promise.Promises for the bulkhead and
// hedging bodies respectively.
package middleware

import "context"

// Next is the function a Middleware wraps: the remainder of the chain,
// terminating in the user's own function F.
type Next[T any] func(ctx context.Context) (T, error)

// Middleware observes or alters an invocation of Next. It must either call
// next (possibly having altered ctx) and observe its outcome, or
// short-circuit by returning its own result or error.
type Middleware[T any] func(ctx context.Context, next Next[T]) (T, error)

// Hooks is an immutable, ordered chain of middlewares: M1 wraps M2 wraps …
// wraps F, with M1 outermost (Deterministic ordering per spec §4.2).
type Hooks[T any] struct {
	middlewares []Middleware[T]
}

// New builds a Hooks chain from middlewares in outermost-first order.
func New[T any](middlewares ...Middleware[T]) *Hooks[T] {
	cp := make([]Middleware[T], len(middlewares))
	copy(cp, middlewares)
	return &Hooks[T]{middlewares: cp}
}

// Pipe returns a new Hooks with mw appended as the new innermost middleware,
// preserving immutability of the receiver.
func (h *Hooks[T]) Pipe(mw Middleware[T]) *Hooks[T] {
	cp := make([]Middleware[T], len(h.middlewares)+1)
	copy(cp, h.middlewares)
	cp[len(h.middlewares)] = mw
	return &Hooks[T]{middlewares: cp}
}

// PipeWhen conditionally appends mw, useful for feature-flagged policies.
func (h *Hooks[T]) PipeWhen(cond bool, mw Middleware[T]) *Hooks[T] {
	if !cond {
		return h
	}
	return h.Pipe(mw)
}

// Wrap builds the chained invocation M1(M2(...Mn(f))) and returns it as a
// single Next, ready to be called with a context.
func (h *Hooks[T]) Wrap(f Next[T]) Next[T] {
	wrapped := f
	for i := len(h.middlewares) - 1; i >= 0; i-- {
		mw := h.middlewares[i]
		next := wrapped
		wrapped = func(ctx context.Context) (T, error) {
			return mw(ctx, next)
		}
	}
	return wrapped
}

// Run is sugar for Wrap(f)(ctx).
func (h *Hooks[T]) Run(ctx context.Context, f Next[T]) (T, error) {
	return h.Wrap(f)(ctx)
}
