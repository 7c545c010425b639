// Package backoff is a pure library of backoff policies: functions from
// (attempt, error) to a delay. Modeled on the teacher's sync/retry backoff
// types (ConstantBackOff, ExponentialBackOff, LinearBackOff), generalized
// to the spec's constant/linear/exponential/polynomial family with a
// uniform jitter knob shared across all four.
package backoff

import (
	"math"
	"math/rand/v2"
	"time"

	"github.com/lattice-sync/lattice/timespan"
)

// Policy computes the delay to wait before retrying the given attempt
// (0-indexed), optionally taking the error that caused the attempt to fail.
type Policy func(attempt int, err error) timespan.TimeSpan

// clamp bounds d to [0, max]. A zero max means unbounded.
func clamp(d, max time.Duration) time.Duration {
	if d < 0 {
		d = 0
	}
	if max > 0 && d > max {
		return max
	}
	return d
}

func withJitter(d time.Duration, jitter float64) time.Duration {
	if jitter <= 0 {
		return d
	}
	// Multiply by 1 + U(-jitter, +jitter).
	factor := 1 + (rand.Float64()*2-1)*jitter
	return time.Duration(float64(d) * factor)
}

// Constant returns the same delay for every attempt.
func Constant(delay time.Duration, jitter float64) Policy {
	return func(attempt int, err error) timespan.TimeSpan {
		return timespan.New(clamp(withJitter(delay, jitter), 0))
	}
}

// Linear grows the delay by step per attempt, capped at max (0 = unbounded).
func Linear(initial, step, max time.Duration, jitter float64) Policy {
	return func(attempt int, err error) timespan.TimeSpan {
		d := initial + step*time.Duration(attempt)
		return timespan.New(clamp(withJitter(d, jitter), max))
	}
}

// Exponential grows the delay by factor^attempt, capped at max (0 = unbounded).
func Exponential(initial time.Duration, factor float64, max time.Duration, jitter float64) Policy {
	return func(attempt int, err error) timespan.TimeSpan {
		d := time.Duration(float64(initial) * math.Pow(factor, float64(attempt)))
		return timespan.New(clamp(withJitter(d, jitter), max))
	}
}

// Polynomial grows the delay by attempt^degree, capped at max (0 = unbounded).
func Polynomial(initial time.Duration, degree float64, max time.Duration, jitter float64) Policy {
	return func(attempt int, err error) timespan.TimeSpan {
		n := math.Max(float64(attempt), 1)
		d := time.Duration(float64(initial) * math.Pow(n, degree))
		return timespan.New(clamp(withJitter(d, jitter), max))
	}
}
