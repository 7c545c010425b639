package sharedlock

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/lattice-sync/lattice/eventbus"
	"github.com/lattice-sync/lattice/result"
)

func newID() string {
	return uuid.Must(uuid.NewV7()).String()
}

func newLockID() string { return newID() }

// Handle is a per-key shared-lock client: one writer identity and one
// reader slot, sharing a single logical key. Handles are cheap and not
// thread-local, mirroring lock.Handle and semaphore.Handle.
type Handle struct {
	key         string
	writerID    string
	readerSlot  string
	readerLimit int
	ttl         time.Duration
	p           *Provider
}

func (h *Handle) Key() string      { return h.key }
func (h *Handle) WriterID() string { return h.writerID }
func (h *Handle) ReaderSlot() string { return h.readerSlot }

// AcquireWriter takes the writer slot, failing while any reader is present
// or a different writer already holds it.
func (h *Handle) AcquireWriter(ctx context.Context) (bool, error) {
	h.p.opt.MetricsCollector.IncWriterAttempts()

	var ttl *time.Duration
	if h.ttl > 0 {
		ttl = &h.ttl
	}

	ok, err := h.p.opt.Adapter.AcquireWriter(ctx, h.key, h.writerID, ttl)
	if err != nil {
		h.emit(ctx, EventUnexpectedErr, err)
		return false, err
	}

	if ok {
		h.p.opt.MetricsCollector.IncWriterSuccess()
		h.emit(ctx, EventWriterAcquired, nil)
	} else {
		h.p.opt.MetricsCollector.IncWriterFailures()
		h.emit(ctx, EventWriterUnavailable, nil)
	}
	return ok, nil
}

// AcquireWriterOrFail wraps AcquireWriter, converting a false result into
// ErrFailedAcquireWriter.
func (h *Handle) AcquireWriterOrFail(ctx context.Context) error {
	ok, err := h.AcquireWriter(ctx)
	if err != nil {
		return err
	}
	if !ok {
		return ErrFailedAcquireWriter
	}
	return nil
}

// ReleaseWriter releases the writer slot iff this handle's writerID owns it.
func (h *Handle) ReleaseWriter(ctx context.Context) (bool, error) {
	ok, err := h.p.opt.Adapter.ReleaseWriter(ctx, h.key, h.writerID)
	if err != nil {
		h.emit(ctx, EventUnexpectedErr, err)
		return false, err
	}

	h.p.opt.MetricsCollector.IncWriterReleases()
	if ok {
		h.emit(ctx, EventWriterReleased, nil)
	} else {
		h.emit(ctx, EventWriterFailedRelease, nil)
	}
	return ok, nil
}

// ReleaseWriterOrFail wraps ReleaseWriter, converting a false result into
// ErrFailedReleaseWriter.
func (h *Handle) ReleaseWriterOrFail(ctx context.Context) error {
	ok, err := h.ReleaseWriter(ctx)
	if err != nil {
		return err
	}
	if !ok {
		return ErrFailedReleaseWriter
	}
	return nil
}

// RefreshWriter extends the writer's TTL. Returns false if this handle does
// not own the writer slot, or the slot is unexpireable.
func (h *Handle) RefreshWriter(ctx context.Context, ttl time.Duration) (bool, error) {
	if ttl <= 0 {
		ttl = h.ttl
	}

	ok, err := h.p.opt.Adapter.RefreshWriter(ctx, h.key, h.writerID, ttl)
	if err != nil {
		h.emit(ctx, EventUnexpectedErr, err)
		return false, err
	}

	h.p.opt.MetricsCollector.IncRefreshes()
	if ok {
		h.emit(ctx, EventWriterRefreshed, nil)
	} else {
		h.emit(ctx, EventWriterFailedRefresh, nil)
	}
	return ok, nil
}

// RefreshWriterOrFail wraps RefreshWriter, converting a false result into
// ErrFailedRefresh.
func (h *Handle) RefreshWriterOrFail(ctx context.Context, ttl time.Duration) error {
	ok, err := h.RefreshWriter(ctx, ttl)
	if err != nil {
		return err
	}
	if !ok {
		return ErrFailedRefresh
	}
	return nil
}

// AcquireReader takes this handle's reader slot, failing while a writer is
// present or the reader semaphore limit is reached.
func (h *Handle) AcquireReader(ctx context.Context) (bool, error) {
	h.p.opt.MetricsCollector.IncReaderAttempts()

	var ttl *time.Duration
	if h.ttl > 0 {
		ttl = &h.ttl
	}

	ok, err := h.p.opt.Adapter.AcquireReader(ctx, h.key, h.readerSlot, h.readerLimit, ttl)
	if err != nil {
		h.emit(ctx, EventUnexpectedErr, err)
		return false, err
	}

	if ok {
		h.p.opt.MetricsCollector.IncReaderSuccess()
		h.emit(ctx, EventReaderAcquired, nil)
	} else {
		h.p.opt.MetricsCollector.IncReaderFailures()
		h.emit(ctx, EventReaderUnavailable, nil)
	}
	return ok, nil
}

// AcquireReaderOrFail wraps AcquireReader, converting a false result into
// ErrFailedAcquireReader.
func (h *Handle) AcquireReaderOrFail(ctx context.Context) error {
	ok, err := h.AcquireReader(ctx)
	if err != nil {
		return err
	}
	if !ok {
		return ErrFailedAcquireReader
	}
	return nil
}

// BlockingOption configures AcquireReaderBlocking's poll loop.
type BlockingOption struct {
	Time     time.Duration
	Interval func(attempt int, err error) time.Duration
}

// AcquireReaderBlocking polls AcquireReader until it succeeds or Time
// elapses (e.g. waiting out a writer that is expected to release soon).
func (h *Handle) AcquireReaderBlocking(ctx context.Context, opt BlockingOption) (bool, error) {
	if opt.Time <= 0 {
		opt.Time = h.p.opt.DefaultBlockingTime
	}
	interval := opt.Interval
	if interval == nil {
		policy := h.p.opt.DefaultBlockingInterval
		interval = func(attempt int, err error) time.Duration { return policy(attempt, err).Duration() }
	}

	deadline := time.After(opt.Time)
	for attempt := 0; ; attempt++ {
		ok, err := h.AcquireReader(ctx)
		if err != nil || ok {
			return ok, err
		}

		timer := time.NewTimer(interval(attempt, nil))
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

// ReleaseReader releases this handle's reader slot. Fails while a writer is
// present, per the mutual-exclusion invariant.
func (h *Handle) ReleaseReader(ctx context.Context) (bool, error) {
	ok, err := h.p.opt.Adapter.ReleaseReader(ctx, h.key, h.readerSlot)
	if err != nil {
		h.emit(ctx, EventUnexpectedErr, err)
		return false, err
	}

	h.p.opt.MetricsCollector.IncReaderReleases()
	if ok {
		h.emit(ctx, EventReaderReleased, nil)
	} else {
		h.emit(ctx, EventReaderFailedRelease, nil)
	}
	return ok, nil
}

// ReleaseReaderOrFail wraps ReleaseReader, converting a false result into
// ErrFailedReleaseReader.
func (h *Handle) ReleaseReaderOrFail(ctx context.Context) error {
	ok, err := h.ReleaseReader(ctx)
	if err != nil {
		return err
	}
	if !ok {
		return ErrFailedReleaseReader
	}
	return nil
}

// RefreshReader extends this handle's reader slot TTL.
func (h *Handle) RefreshReader(ctx context.Context, ttl time.Duration) (bool, error) {
	if ttl <= 0 {
		ttl = h.ttl
	}

	ok, err := h.p.opt.Adapter.RefreshReader(ctx, h.key, h.readerSlot, ttl)
	if err != nil {
		h.emit(ctx, EventUnexpectedErr, err)
		return false, err
	}

	h.p.opt.MetricsCollector.IncRefreshes()
	if ok {
		h.emit(ctx, EventReaderRefreshed, nil)
	} else {
		h.emit(ctx, EventReaderFailedRefresh, nil)
	}
	return ok, nil
}

// RefreshReaderOrFail wraps RefreshReader, converting a false result into
// ErrFailedRefresh.
func (h *Handle) RefreshReaderOrFail(ctx context.Context, ttl time.Duration) error {
	ok, err := h.RefreshReader(ctx, ttl)
	if err != nil {
		return err
	}
	if !ok {
		return ErrFailedRefresh
	}
	return nil
}

// ForceReleaseAllReaders clears every reader slot for this handle's key. A
// no-op while a writer currently holds the key.
func (h *Handle) ForceReleaseAllReaders(ctx context.Context) (bool, error) {
	ok, err := h.p.opt.Adapter.ForceReleaseAllReaders(ctx, h.key)
	if err != nil {
		h.emit(ctx, EventUnexpectedErr, err)
		return false, err
	}
	h.emit(ctx, EventAllReadersForceReleased, nil)
	return ok, nil
}

// ForceRelease clears both the writer and every reader for this handle's key.
func (h *Handle) ForceRelease(ctx context.Context) (bool, error) {
	ok, err := h.p.opt.Adapter.ForceRelease(ctx, h.key)
	if err != nil {
		h.emit(ctx, EventUnexpectedErr, err)
		return false, err
	}
	h.emit(ctx, EventForceReleased, nil)
	return ok, nil
}

// GetState returns the current disjoint writer/reader snapshot.
func (h *Handle) GetState(ctx context.Context) (*State, error) {
	return h.p.opt.Adapter.GetState(ctx, h.key)
}

// RunWriter acquires the writer slot, invokes fn, and always releases
// afterward. A package-level generic function since Go methods cannot carry
// their own type parameters.
func RunWriter[T any](ctx context.Context, h *Handle, fn func(ctx context.Context) (T, error)) result.Result[T] {
	ok, err := h.AcquireWriter(ctx)
	if err != nil {
		return result.Failure[T](err)
	}
	if !ok {
		return result.Failure[T](ErrFailedAcquireWriter)
	}
	defer func() {
		_, _ = h.ReleaseWriter(context.WithoutCancel(ctx))
	}()

	return result.From(fn(ctx))
}

// RunWriterOrFail is RunWriter with the Result unwrapped into bare (T, error).
func RunWriterOrFail[T any](ctx context.Context, h *Handle, fn func(ctx context.Context) (T, error)) (T, error) {
	return RunWriter(ctx, h, fn).Unwrap()
}

// RunReader acquires the reader slot, invokes fn, and always releases
// afterward.
func RunReader[T any](ctx context.Context, h *Handle, fn func(ctx context.Context) (T, error)) result.Result[T] {
	ok, err := h.AcquireReader(ctx)
	if err != nil {
		return result.Failure[T](err)
	}
	if !ok {
		return result.Failure[T](ErrFailedAcquireReader)
	}
	defer func() {
		_, _ = h.ReleaseReader(context.WithoutCancel(ctx))
	}()

	return result.From(fn(ctx))
}

// RunReaderOrFail is RunReader with the Result unwrapped into bare (T, error).
func RunReaderOrFail[T any](ctx context.Context, h *Handle, fn func(ctx context.Context) (T, error)) (T, error) {
	return RunReader(ctx, h, fn).Unwrap()
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
