package middleware

import (
	"errors"
	"fmt"
)

// AbortAsyncError, once returned by F or a middleware, always bypasses
// retry and propagates straight to the caller (spec §4.3 retry).
var AbortAsyncError = errors.New("middleware: aborted")

// Abort wraps cause so errors.Is(err, AbortAsyncError) holds; retry must
// never retry it regardless of its errorPolicy.
func Abort(cause error) error {
	return &abortError{cause: cause}
}

type abortError struct {
	cause error
}

func (e *abortError) Error() string { return fmt.Sprintf("%s: %s", AbortAsyncError, e.cause) }
func (e *abortError) Unwrap() error { return e.cause }
func (e *abortError) Is(target error) bool {
	return target == AbortAsyncError
}

// RetryResilienceError wraps the last failure after maxAttempts are
// exhausted, carrying the attempt count.
type RetryResilienceError struct {
	Attempts int
	Cause    error
}

func (e *RetryResilienceError) Error() string {
	return fmt.Sprintf("middleware: retry exhausted after %d attempts: %s", e.Attempts, e.Cause)
}

func (e *RetryResilienceError) Unwrap() error { return e.Cause }

// CapacityFullAsyncError is returned by bulkhead when maxCapacity is
// exceeded. A queued invocation whose context is canceled returns
// context.Cause(ctx) instead.
var CapacityFullAsyncError = errors.New("middleware: capacity full")

// TimeoutAsyncError is returned by the timeout middleware when its timer
// fires before F completes.
var TimeoutAsyncError = errors.New("middleware: timeout")
