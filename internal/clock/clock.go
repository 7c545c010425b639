// Package clock provides a now()-injection type for code whose tests need
// to control time instead of sleeping real wall-clock durations. No other
// package in this module imports it; the adapters keep their own
// `now func() time.Time` fields. Modeled on the teacher's types/clock
// comparison helpers, trimmed to the Now seam the coordination primitives
// actually need.
package clock

import "time"

// Clock returns the current time. Swap it in tests via NewSource.
type Clock func() time.Time

// Real is the default Clock, backed by time.Now.
func Real() time.Time {
	return time.Now()
}

// Source is embedded by types that need an overridable clock.
type Source struct {
	Now Clock
}

// NewSource returns a Source defaulting to the real clock.
func NewSource(now Clock) Source {
	if now == nil {
		now = Real
	}
	return Source{Now: now}
}
