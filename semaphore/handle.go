package semaphore

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/lattice-sync/lattice/backoff"
	"github.com/lattice-sync/lattice/eventbus"
	"github.com/lattice-sync/lattice/result"
)

func newSlotID() string {
	return uuid.Must(uuid.NewV7()).String()
}

// Handle is a per-key, per-slot semaphore client.
type Handle struct {
	key    string
	slotID string
	limit  int
	ttl    time.Duration
	p      *Provider
}

func (h *Handle) Key() string    { return h.key }
func (h *Handle) SlotID() string { return h.slotID }

// Acquire takes this handle's slot if the semaphore isn't full (or it
// already holds a slot).
func (h *Handle) Acquire(ctx context.Context) (bool, error) {
	h.p.opt.MetricsCollector.IncAcquireAttempts()

	var ttl *time.Duration
	if h.ttl > 0 {
		ttl = &h.ttl
	}

	ok, err := h.p.opt.Adapter.Acquire(ctx, h.key, h.slotID, h.limit, ttl)
	if err != nil {
		h.emit(ctx, EventUnexpectedErr, err)
		return false, err
	}

	if ok {
		h.p.opt.MetricsCollector.IncAcquireSuccess()
		h.emit(ctx, EventAcquired, nil)
	} else {
		h.p.opt.MetricsCollector.IncLimitReached()
		h.emit(ctx, EventLimitReached, nil)
	}
	return ok, nil
}

// AcquireOrFail wraps Acquire, converting a false result into ErrLimitReached.
func (h *Handle) AcquireOrFail(ctx context.Context) error {
	ok, err := h.Acquire(ctx)
	if err != nil {
		return err
	}
	if !ok {
		return ErrLimitReached
	}
	return nil
}

// BlockingOption configures AcquireBlocking's poll loop.
type BlockingOption struct {
	Time     time.Duration
	Interval backoff.Policy
}

// AcquireBlocking polls Acquire until it succeeds or Time elapses.
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

// Release frees this handle's slot.
func (h *Handle) Release(ctx context.Context) (bool, error) {
	ok, err := h.p.opt.Adapter.Release(ctx, h.key, h.slotID)
	if err != nil {
		h.emit(ctx, EventUnexpectedErr, err)
		return false, err
	}

	h.p.opt.MetricsCollector.IncReleases()
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

// Refresh extends this handle's slot TTL.
func (h *Handle) Refresh(ctx context.Context, ttl time.Duration) (bool, error) {
	if ttl <= 0 {
		ttl = h.ttl
	}

	ok, err := h.p.opt.Adapter.Refresh(ctx, h.key, h.slotID, ttl)
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

// ForceReleaseAll clears every slot for this handle's key.
func (h *Handle) ForceReleaseAll(ctx context.Context) (bool, error) {
	ok, err := h.p.opt.Adapter.ForceReleaseAll(ctx, h.key)
	if err != nil {
		h.emit(ctx, EventUnexpectedErr, err)
		return false, err
	}
	h.emit(ctx, EventAllForceReleased, nil)
	return ok, nil
}

// GetState returns the raw Record for this handle's key.
func (h *Handle) GetState(ctx context.Context) (*Record, error) {
	return h.p.opt.Adapter.GetState(ctx, h.key)
}

// GetStateTagged returns the tagged variant describing this handle's
// relationship to the current record: Unacquired, Acquired, LimitReached or
// Expired. PeekOwnSlot is read before GetState because GetState prunes
// expired slots as a side effect; reading it first preserves visibility
// into a just-expired slot of this handle's own slotID that GetState would
// otherwise have already deleted.
func (h *Handle) GetStateTagged(ctx context.Context) (TaggedState, error) {
	own, err := h.p.opt.Adapter.PeekOwnSlot(ctx, h.key, h.slotID)
	if err != nil {
		return TaggedState{}, err
	}

	r, err := h.p.opt.Adapter.GetState(ctx, h.key)
	if err != nil {
		return TaggedState{}, err
	}
	if r == nil {
		if own != nil {
			return TaggedState{Tag: Expired, Limit: h.limit}, nil
		}
		return TaggedState{Tag: Unacquired, Limit: h.limit}, nil
	}

	for _, s := range r.Slots {
		if s.SlotID == h.slotID {
			if s.ExpiresAt.IsZero() {
				return TaggedState{Tag: Acquired, Limit: r.Limit, Held: len(r.Slots), Unexpireable: true}, nil
			}
			return TaggedState{
				Tag:           Acquired,
				Limit:         r.Limit,
				Held:          len(r.Slots),
				RemainingTime: time.Until(s.ExpiresAt),
			}, nil
		}
	}

	if own != nil {
		return TaggedState{Tag: Expired, Limit: r.Limit, Held: len(r.Slots)}, nil
	}
	if len(r.Slots) >= r.Limit {
		return TaggedState{Tag: LimitReached, Limit: r.Limit, Held: len(r.Slots)}, nil
	}
	return TaggedState{Tag: Unacquired, Limit: r.Limit, Held: len(r.Slots)}, nil
}

// Run acquires a slot, invokes fn, and always releases afterward.
func Run[T any](ctx context.Context, h *Handle, fn func(ctx context.Context) (T, error)) result.Result[T] {
	ok, err := h.Acquire(ctx)
	if err != nil {
		return result.Failure[T](err)
	}
	if !ok {
		return result.Failure[T](ErrLimitReached)
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
		return result.Failure[T](ErrLimitReached)
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
