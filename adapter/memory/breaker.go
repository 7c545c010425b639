// Package memory provides reference in-memory adapters for every driver
// contract in the repo (breaker, lock, semaphore, sharedlock, cache),
// suitable for single-process use and as the adapter conformance suites'
// baseline implementation. Modeled on the teacher's in-memory stand-ins
// (sync/lock.Value, sync/circuitbreaker's atomic fields) generalized behind
// a mutex per key instead of per-primitive atomics.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/lattice-sync/lattice/breaker"
)

// BreakerAdapter is an in-process breaker.Adapter backed by a map guarded by
// a mutex, with a single shared breaker.Policy applied to every key.
type BreakerAdapter struct {
	mu     sync.Mutex
	now    func() time.Time
	policy breaker.Policy
	states map[string]breaker.Record
}

// NewBreakerAdapter returns a BreakerAdapter applying policy to every key.
// A nil policy defaults to breaker.NewConsecutivePolicy().
func NewBreakerAdapter(policy breaker.Policy) *BreakerAdapter {
	if policy == nil {
		policy = breaker.NewConsecutivePolicy()
	}
	return &BreakerAdapter{
		now:    time.Now,
		policy: policy,
		states: make(map[string]breaker.Record),
	}
}

func (a *BreakerAdapter) GetState(ctx context.Context, key string) (breaker.Record, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.states[key], nil
}

func (a *BreakerAdapter) TrackFailure(ctx context.Context, key string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	r := a.states[key]
	r.FailureCount++
	a.states[key] = r
	return nil
}

func (a *BreakerAdapter) TrackSuccess(ctx context.Context, key string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	r := a.states[key]
	switch r.State {
	case breaker.Closed:
		r.FailureCount = 0
	case breaker.HalfOpen:
		r.SuccessCount++
	}
	a.states[key] = r
	return nil
}

func (a *BreakerAdapter) UpdateState(ctx context.Context, key string) (from, to breaker.State, err error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	r := a.states[key]
	from = r.State
	next := a.policy.Next(a.now(), r)
	a.states[key] = next
	return from, next.State, nil
}

func (a *BreakerAdapter) Isolate(ctx context.Context, key string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.states[key] = breaker.Record{State: breaker.Isolated}
	return nil
}

func (a *BreakerAdapter) Reset(ctx context.Context, key string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	delete(a.states, key)
	return nil
}

var _ breaker.Adapter = (*BreakerAdapter)(nil)
