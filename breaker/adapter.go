package breaker

import (
	"context"
	"time"
)

// Record is the storage-adapter-independent snapshot of a breaker's state
// for one key, mirroring CircuitBreakerRecord: state, counters and the
// instant of the last transition to Open.
type Record struct {
	State        State
	FailureCount int
	SuccessCount int
	OpenedAt     time.Time
	// Attempt counts how many times the breaker has opened, feeding
	// BackoffPolicy(attempt) for the HalfOpen wait.
	Attempt int
}

// Adapter is the storage-independent circuit breaker driver contract.
// Implementations hold one Record per key and must apply TrackFailure,
// TrackSuccess and UpdateState atomically with respect to each other for a
// given key.
type Adapter interface {
	// GetState returns the current record for key, or the zero Record
	// (Closed, zero counters) if none exists yet.
	GetState(ctx context.Context, key string) (Record, error)
	// TrackFailure records a failed invocation against key.
	TrackFailure(ctx context.Context, key string) error
	// TrackSuccess records a successful invocation against key.
	TrackSuccess(ctx context.Context, key string) error
	// UpdateState applies the configured policy's transition function to
	// key's record and returns the state before and after.
	UpdateState(ctx context.Context, key string) (from, to State, err error)
	// Isolate forces key into the Isolated state regardless of counters.
	Isolate(ctx context.Context, key string) error
	// Reset clears key's counters and returns it to Closed.
	Reset(ctx context.Context, key string) error
}

// Policy computes the next Record for a breaker key given the current
// Record and the time of observation.
type Policy interface {
	Next(now time.Time, r Record) Record
}
