package breaker

import (
	"time"

	"github.com/lattice-sync/lattice/backoff"
)

// ConsecutivePolicy implements the Consecutive circuit breaker policy:
// failureThreshold consecutive failures opens the breaker; after the
// backoff-determined wait it moves to HalfOpen; successThreshold consecutive
// successes there closes it again. Isolate always wins the tie-break, then
// the time-based Open->HalfOpen transition, then the counter-based ones.
type ConsecutivePolicy struct {
	FailureThreshold int
	SuccessThreshold int
	BackoffPolicy    backoff.Policy
}

// NewConsecutivePolicy returns a policy with the defaults used throughout
// the teacher's two circuit breaker packages: 5 failures to open, 2
// successes to close, exponential backoff from 1s capped at 30s.
func NewConsecutivePolicy() *ConsecutivePolicy {
	return &ConsecutivePolicy{
		FailureThreshold: 5,
		SuccessThreshold: 2,
		BackoffPolicy:    backoff.Exponential(time.Second, 2, 30*time.Second, 0.1),
	}
}

// Next applies the state table from the circuit breaker design: Closed
// opens once FailureCount reaches the threshold; Open waits out
// BackoffPolicy(Attempt) before moving to HalfOpen; HalfOpen reopens on any
// failure and closes once SuccessCount reaches the threshold. Isolated is a
// sink only Reset escapes.
func (p *ConsecutivePolicy) Next(now time.Time, r Record) Record {
	threshold := p.FailureThreshold
	if threshold <= 0 {
		threshold = 1
	}
	successThreshold := p.SuccessThreshold
	if successThreshold <= 0 {
		successThreshold = 1
	}

	switch r.State {
	case Isolated:
		return r
	case Closed:
		if r.FailureCount >= threshold {
			return Record{State: Open, OpenedAt: now, Attempt: r.Attempt + 1}
		}
		return r
	case Open:
		if now.Sub(r.OpenedAt) >= p.backoffFor(r.Attempt) {
			return Record{State: HalfOpen, Attempt: r.Attempt}
		}
		return r
	case HalfOpen:
		if r.FailureCount > 0 {
			return Record{State: Open, OpenedAt: now, Attempt: r.Attempt + 1}
		}
		if r.SuccessCount >= successThreshold {
			return Record{State: Closed}
		}
		return r
	default:
		return r
	}
}

func (p *ConsecutivePolicy) backoffFor(attempt int) time.Duration {
	policy := p.BackoffPolicy
	if policy == nil {
		policy = backoff.Exponential(time.Second, 2, 30*time.Second, 0)
	}
	n := attempt - 1
	if n < 0 {
		n = 0
	}
	return policy(n, nil).Duration()
}
