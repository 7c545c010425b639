package lock

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/lattice-sync/lattice/backoff"
	"github.com/lattice-sync/lattice/eventbus"
	"github.com/lattice-sync/lattice/result"
)

func newLockID() string {
	return uuid.Must(uuid.NewV7()).String()
}

// Handle is a per-key lock client. Handles are cheap, not thread-local, and
// safe to share across goroutines (they carry no back-pointer to anything
// mutable besides the shared Adapter).
type Handle struct {
	key    string
	lockID string
	ttl    time.Duration
	p      *Provider
}

// Key returns the fully-qualified key this handle addresses.
func (h *Handle) Key() string { return h.key }

// LockID returns the identity this handle acquires/releases/refreshes with.
func (h *Handle) LockID() string { return h.lockID }

// Acquire attempts to take the lock, returning false rather than an error
// when another owner holds it.
func (h *Handle) Acquire(ctx context.Context) (bool, error) {
	h.p.opt.MetricsCollector.IncLockAttempts()

	var ttl *time.Duration
	if h.ttl > 0 {
		ttl = &h.ttl
	}

	ok, err := h.p.opt.Adapter.Acquire(ctx, h.key, h.lockID, ttl)
	if err != nil {
		h.emit(ctx, EventUnexpectedErr, err)
		return false, err
	}

	if ok {
		h.p.opt.MetricsCollector.IncLockSuccess()
		h.emit(ctx, EventAcquired, nil)
	} else {
		h.p.opt.MetricsCollector.IncLockFailures()
		h.emit(ctx, EventUnavailable, nil)
	}

	return ok, nil
}

// AcquireOrFail wraps Acquire, converting a false result into ErrFailedAcquire.
func (h *Handle) AcquireOrFail(ctx context.Context) error {
	ok, err := h.Acquire(ctx)
	if err != nil {
		return err
	}
	if !ok {
		return ErrFailedAcquire
	}
	return nil
}

// BlockingOption configures AcquireBlocking's poll loop.
type BlockingOption struct {
	Time     time.Duration
	Interval backoff.Policy
}

// AcquireBlocking polls Acquire with Interval until it succeeds or Time
// elapses, returning the final success/failure without error unless the
// adapter itself fails or ctx is canceled.
func (h *Handle) AcquireBlocking(ctx context.Context, opt BlockingOption) (bool, error) {
	if opt.Time <= 0 {
		opt.Time = h.p.opt.DefaultBlockingTime
	}
	if opt.Interval == nil {
		opt.Interval = h.p.opt.DefaultBlockingInterval
	}

	deadline := time.After(opt.Time)
	for attempt := 0; ; attempt++ {
		ok, err := h.Acquire(ctx)
		if err != nil || ok {
			return ok, err
		}

		delay := opt.Interval(attempt, nil).Duration()
		timer := time.NewTimer(delay)
		select {
		case <-timer.C:
		case <-deadline:
			timer.Stop()
			return false, nil
		case <-ctx.Done():
			timer.Stop()
			return false, context.Cause(ctx)
		}
	}
}

// Release returns true iff this handle is the current owner.
func (h *Handle) Release(ctx context.Context) (bool, error) {
	ok, err := h.p.opt.Adapter.Release(ctx, h.key, h.lockID)
	if err != nil {
		h.emit(ctx, EventUnexpectedErr, err)
		return false, err
	}

	h.p.opt.MetricsCollector.IncUnlocks()
	if ok {
		h.emit(ctx, EventReleased, nil)
	} else {
		h.emit(ctx, EventFailedRelease, nil)
	}
	return ok, nil
}

// ReleaseOrFail wraps Release, converting a false result into ErrFailedRelease.
func (h *Handle) ReleaseOrFail(ctx context.Context) error {
	ok, err := h.Release(ctx)
	if err != nil {
		return err
	}
	if !ok {
		return ErrFailedRelease
	}
	return nil
}

// Refresh extends the lock's TTL to ttl (or the handle's configured TTL if
// ttl is zero). Returns false if this handle does not own the lock, or the
// lock is unexpireable.
func (h *Handle) Refresh(ctx context.Context, ttl time.Duration) (bool, error) {
	if ttl <= 0 {
		ttl = h.ttl
	}

	ok, err := h.p.opt.Adapter.Refresh(ctx, h.key, h.lockID, ttl)
	if err != nil {
		h.emit(ctx, EventUnexpectedErr, err)
		return false, err
	}

	h.p.opt.MetricsCollector.IncRefreshes()
	if ok {
		h.emit(ctx, EventRefreshed, nil)
	} else {
		h.emit(ctx, EventFailedRefresh, nil)
	}
	return ok, nil
}

// RefreshOrFail wraps Refresh, converting a false result into ErrFailedRefresh.
func (h *Handle) RefreshOrFail(ctx context.Context, ttl time.Duration) error {
	ok, err := h.Refresh(ctx, ttl)
	if err != nil {
		return err
	}
	if !ok {
		return ErrFailedRefresh
	}
	return nil
}

// ForceRelease removes the record for this handle's key regardless of
// ownership.
func (h *Handle) ForceRelease(ctx context.Context) (bool, error) {
	ok, err := h.p.opt.Adapter.ForceRelease(ctx, h.key)
	if err != nil {
		h.emit(ctx, EventUnexpectedErr, err)
		return false, err
	}
	h.emit(ctx, EventForceReleased, nil)
	return ok, nil
}

// GetState returns the current lock state, or nil if unacquired or expired.
func (h *Handle) GetState(ctx context.Context) (*State, error) {
	return h.p.opt.Adapter.GetState(ctx, h.key)
}

// Run acquires the lock, invokes fn, and always releases afterward once
// the lock was acquired (including when fn fails), returning the outcome as a
// Result so callers never need bare (T, error) plumbing for the
// acquisition-failure path. A package-level generic function since Go
// methods cannot carry their own type parameters.
func Run[T any](ctx context.Context, h *Handle, fn func(ctx context.Context) (T, error)) result.Result[T] {
	ok, err := h.Acquire(ctx)
	if err != nil {
		return result.Failure[T](err)
	}
	if !ok {
		return result.Failure[T](ErrFailedAcquire)
	}
	defer func() {
		_, _ = h.Release(context.WithoutCancel(ctx))
	}()

	return result.From(fn(ctx))
}

// RunOrFail is Run with the Result unwrapped into bare (T, error).
func RunOrFail[T any](ctx context.Context, h *Handle, fn func(ctx context.Context) (T, error)) (T, error) {
	return Run(ctx, h, fn).Unwrap()
}

// RunBlocking is Run preceded by AcquireBlocking instead of a single Acquire
// attempt.
func RunBlocking[T any](ctx context.Context, h *Handle, opt BlockingOption, fn func(ctx context.Context) (T, error)) result.Result[T] {
	ok, err := h.AcquireBlocking(ctx, opt)
	if err != nil {
		return result.Failure[T](err)
	}
	if !ok {
		return result.Failure[T](ErrFailedAcquire)
	}
	defer func() {
		_, _ = h.Release(context.WithoutCancel(ctx))
	}()

	return result.From(fn(ctx))
}

func (h *Handle) emit(ctx context.Context, name string, cause error) {
	if h.p.opt.EventBus == nil {
		return
	}
	h.p.opt.EventBus.Dispatch(ctx, eventbus.Event{
		Name:    name,
		Key:     h.key,
		Payload: cause,
	})
}
