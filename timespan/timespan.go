// Package timespan provides an immutable signed duration value type used
// throughout the coordination primitives wherever a plain time.Duration
// would lose the distinction between "zero" and "not set".
package timespan

import "time"

// TimeSpan is an immutable, signed duration with nanosecond precision.
// Two TimeSpans are equal iff their normalised nanosecond values are equal.
type TimeSpan struct {
	d time.Duration
}

// Zero is the empty span.
var Zero = TimeSpan{}

// New wraps a time.Duration as a TimeSpan.
func New(d time.Duration) TimeSpan {
	return TimeSpan{d: d}
}

// Of is an alias for New, read better at call sites building literals.
func Of(d time.Duration) TimeSpan {
	return New(d)
}

// Duration returns the underlying time.Duration.
func (t TimeSpan) Duration() time.Duration {
	return t.d
}

// Add returns t+o.
func (t TimeSpan) Add(o TimeSpan) TimeSpan {
	return TimeSpan{d: t.d + o.d}
}

// Sub returns t-o.
func (t TimeSpan) Sub(o TimeSpan) TimeSpan {
	return TimeSpan{d: t.d - o.d}
}

// Mul returns t scaled by factor.
func (t TimeSpan) Mul(factor float64) TimeSpan {
	return TimeSpan{d: time.Duration(float64(t.d) * factor)}
}

// Div returns t divided by factor.
func (t TimeSpan) Div(factor float64) TimeSpan {
	return TimeSpan{d: time.Duration(float64(t.d) / factor)}
}

// IsZero reports whether the span is exactly zero.
func (t TimeSpan) IsZero() bool {
	return t.d == 0
}

// Equal reports equality by normalised value.
func (t TimeSpan) Equal(o TimeSpan) bool {
	return t.d == o.d
}

// Compare returns -1, 0 or 1 as t is less than, equal to, or greater than o.
func (t TimeSpan) Compare(o TimeSpan) int {
	switch {
	case t.d < o.d:
		return -1
	case t.d > o.d:
		return 1
	default:
		return 0
	}
}

// ToEndDate returns from+t. from defaults to time.Now() when zero.
func (t TimeSpan) ToEndDate(from time.Time) time.Time {
	if from.IsZero() {
		from = time.Now()
	}
	return from.Add(t.d)
}

// ToStartDate returns from-t. from defaults to time.Now() when zero.
func (t TimeSpan) ToStartDate(from time.Time) time.Time {
	if from.IsZero() {
		from = time.Now()
	}
	return from.Add(-t.d)
}

// String renders the underlying duration.
func (t TimeSpan) String() string {
	return t.d.String()
}
