// Package result provides a generic Result type representing an operation
// that either succeeds with a value or fails with an error, for flows
// (retry, fallback) that need to treat a Result-Failure the same way they
// treat a thrown error without forcing every call site to use panics.
package result

import "errors"

// ErrNoResult is returned when no results are provided to an operation that
// requires at least one.
var ErrNoResult = errors.New("result: no result")

// Result is a tagged value: exactly one of Success or Failure holds.
type Result[T any] struct {
	Data T
	Err  error
}

// Success builds a successful Result.
func Success[T any](v T) Result[T] {
	return Result[T]{Data: v}
}

// Failure builds a failed Result.
func Failure[T any](err error) Result[T] {
	return Result[T]{Err: err}
}

// From wraps a (value, error) pair, the shape most Go functions return.
func From[T any](v T, err error) Result[T] {
	if err != nil {
		return Failure[T](err)
	}
	return Success(v)
}

// IsSuccess reports whether the Result holds a value.
func (r Result[T]) IsSuccess() bool {
	return r.Err == nil
}

// IsFailure reports whether the Result holds an error.
func (r Result[T]) IsFailure() bool {
	return r.Err != nil
}

// Unwrap returns the wrapped value and error.
func (r Result[T]) Unwrap() (T, error) {
	return r.Data, r.Err
}

// FailureError returns the wrapped error (nil for a Success) without
// requiring the caller to know T, so generic code can treat a Result-Failure
// the same way it treats a thrown error.
func (r Result[T]) FailureError() error {
	return r.Err
}

// WithFailureAny rebuilds this Result as a Failure carrying err, returned as
// any so a caller that only knows a Result-shaped interface (not T itself)
// can rewrap a terminal error back into the right concrete Result type.
func (r Result[T]) WithFailureAny(err error) any {
	return Result[T]{Err: err}
}

// MustUnwrap returns the value, panicking if the Result is a Failure.
func (r Result[T]) MustUnwrap() T {
	if r.Err != nil {
		panic("result: unwrapping a failure: " + r.Err.Error())
	}
	return r.Data
}

// UnwrapOr returns the value if successful, otherwise the given default.
func (r Result[T]) UnwrapOr(defaultValue T) T {
	if r.Err != nil {
		return defaultValue
	}
	return r.Data
}

// UnwrapOrElse returns the value if successful, otherwise calls fn with the error.
func (r Result[T]) UnwrapOrElse(fn func(error) T) T {
	if r.Err != nil {
		return fn(r.Err)
	}
	return r.Data
}

// Map transforms the value if successful; a Failure passes through unchanged.
func (r Result[T]) Map(fn func(T) T) Result[T] {
	if r.Err != nil {
		return r
	}
	return Success(fn(r.Data))
}

// MapError transforms the error if failed; a Success passes through unchanged.
func (r Result[T]) MapError(fn func(error) error) Result[T] {
	if r.Err == nil {
		return r
	}
	return Result[T]{Data: r.Data, Err: fn(r.Err)}
}

// FlatMap chains an operation that itself returns a Result.
func (r Result[T]) FlatMap(fn func(T) Result[T]) Result[T] {
	if r.Err != nil {
		return r
	}
	return fn(r.Data)
}

// All returns the values of every Result if all are successful, or the
// first encountered error.
func All[T any](rs ...Result[T]) ([]T, error) {
	if len(rs) == 0 {
		return nil, ErrNoResult
	}

	values := make([]T, len(rs))
	for i, r := range rs {
		v, err := r.Unwrap()
		if err != nil {
			return nil, err
		}
		values[i] = v
	}
	return values, nil
}

// Partition separates Results into successful values and errors.
func Partition[T any](rs ...Result[T]) (values []T, errs []error) {
	for _, r := range rs {
		if v, err := r.Unwrap(); err == nil {
			values = append(values, v)
		} else {
			errs = append(errs, err)
		}
	}
	return values, errs
}
