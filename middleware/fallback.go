package middleware

import "context"

// FallbackOption configures the fallback middleware.
type FallbackOption[T any] struct {
	// FallbackValue is returned in place of a matching failure. It may be
	// a lazily-computed value via FallbackFunc.
	FallbackValue T
	// FallbackFunc, when set, takes priority over FallbackValue and is
	// invoked with the triggering error.
	FallbackFunc func(err error) (T, error)
	// ErrorPolicy decides whether a failure is covered by the fallback;
	// nil accepts all errors.
	ErrorPolicy func(error) bool
	// OnFallback observes a fallback being taken.
	OnFallback func(err error)
}

// Fallback returns FallbackValue/FallbackFunc(err) in place of any failure
// accepted by ErrorPolicy. Failures not matching propagate unchanged. A
// Result-Failure returned by next (err == nil, v.IsFailure()) triggers the
// fallback the same way a thrown error would.
func Fallback[T any](opt *FallbackOption[T]) Middleware[T] {
	return func(ctx context.Context, next Next[T]) (T, error) {
		v, err := next(ctx)
		// eff treats a Result-Failure the same as a thrown error, so
		// fallback triggers symmetrically in throw and Result modes.
		eff := effectiveError(v, err)
		if eff == nil {
			return v, err
		}

		if opt.ErrorPolicy != nil && !opt.ErrorPolicy(eff) {
			return v, err
		}

		if opt.OnFallback != nil {
			opt.OnFallback(eff)
		}

		if opt.FallbackFunc != nil {
			return opt.FallbackFunc(eff)
		}

		return opt.FallbackValue, nil
	}
}
