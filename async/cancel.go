package async

import "context"

// CancelToken propagates cancellation through a resilience pipeline or a
// blocking primitive call. It wraps context.CancelCauseFunc so the first
// caller to cancel wins and later Cancel calls are no-ops, matching the
// spec's "cancellation is idempotent and races with natural completion;
// the first outcome wins".
type CancelToken struct {
	cancel context.CancelCauseFunc
}

// WithCancelToken derives a cancellable context and its token from parent.
func WithCancelToken(parent context.Context) (context.Context, *CancelToken) {
	ctx, cancel := context.WithCancelCause(parent)
	return ctx, &CancelToken{cancel: cancel}
}

// Cancel fires cause on the derived context. Safe to call more than once or
// concurrently; only the first call has any effect.
func (t *CancelToken) Cancel(cause error) {
	if cause == nil {
		cause = ErrCanceled
	}
	t.cancel(cause)
}
