package middleware

import (
	"context"
	"errors"
	"time"

	"github.com/lattice-sync/lattice/backoff"
)

// RetryOption configures the retry middleware, enumerated explicitly per
// DESIGN NOTES §9 instead of a dynamic option bag.
type RetryOption[T any] struct {
	// MaxAttempts is the total number of attempts (default 4), matching
	// spec §4.3.
	MaxAttempts int
	// BackoffPolicy computes the delay between attempts.
	BackoffPolicy backoff.Policy
	// ErrorPolicy decides whether a failure is worth retrying; nil accepts
	// all errors.
	ErrorPolicy func(error) bool
	// OnExecutionAttempt observes every attempt, success or not.
	OnExecutionAttempt func(attempt int, err error)
	// OnRetryDelay observes the delay chosen before each retry.
	OnRetryDelay func(attempt int, delay time.Duration)
}

// NewRetryOption returns defaults: 4 attempts, exponential backoff starting
// at 100ms capped at 30s, and an accept-all error policy.
func NewRetryOption[T any]() *RetryOption[T] {
	return &RetryOption[T]{
		MaxAttempts:   4,
		BackoffPolicy: backoff.Exponential(100*time.Millisecond, 2, 30*time.Second, 0.1),
	}
}

// Retry attempts F; on a failure accepted by ErrorPolicy and while attempts
// remain, it waits BackoffPolicy(attempt, err) then retries. AbortAsyncError
// always bypasses retry. On exhaustion it fails with RetryResilienceError.
func Retry[T any](opt *RetryOption[T]) Middleware[T] {
	if opt == nil {
		opt = NewRetryOption[T]()
	}
	maxAttempts := opt.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = 4
	}
	policy := opt.BackoffPolicy
	if policy == nil {
		policy = backoff.Exponential(100*time.Millisecond, 2, 30*time.Second, 0.1)
	}

	return func(ctx context.Context, next Next[T]) (v T, err error) {
		var lastErr error
		for attempt := 0; attempt < maxAttempts; attempt++ {
			v, err = next(ctx)
			// eff treats a Result-Failure (err == nil, v holding a wrapped
			// error) the same as a thrown error for retry purposes; a
			// genuine success still returns v/err untouched below.
			eff := effectiveError(v, err)
			if opt.OnExecutionAttempt != nil {
				opt.OnExecutionAttempt(attempt, eff)
			}

			if eff == nil {
				return v, err
			}
			lastErr = eff

			if errors.Is(eff, AbortAsyncError) {
				return v, err
			}

			if opt.ErrorPolicy != nil && !opt.ErrorPolicy(eff) {
				return v, err
			}

			if attempt == maxAttempts-1 {
				break
			}

			delay := policy(attempt, eff).Duration()
			if opt.OnRetryDelay != nil {
				opt.OnRetryDelay(attempt, delay)
			}

			timer := time.NewTimer(delay)
			select {
			case <-timer.C:
			case <-ctx.Done():
				timer.Stop()
				return v, context.Cause(ctx)
			}
		}

		return rewrapError(v, &RetryResilienceError{Attempts: maxAttempts, Cause: lastErr})
	}
}
