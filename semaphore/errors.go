package semaphore

import (
	"errors"
	"fmt"
)

// Event names, per spec §6.
const (
	EventAcquired          = "ACQUIRED"
	EventReleased          = "RELEASED"
	EventFailedRelease     = "FAILED_RELEASE"
	EventFailedRefresh     = "FAILED_REFRESH"
	EventLimitReached      = "LIMIT_REACHED"
	EventAllForceReleased  = "ALL_FORCE_RELEASED"
	EventRefreshed         = "REFRESHED"
	EventUnexpectedErr     = "UNEXPECTED_ERROR"
)

// ErrFailedAcquire matches, via errors.Is, the error AcquireOrFail returns
// when Acquire returns false.
var ErrFailedAcquire = errors.New("semaphore: failed to acquire")

// ErrLimitReached refines ErrFailedAcquire when the semaphore is full.
var ErrLimitReached = fmt.Errorf("%w: limit reached", ErrFailedAcquire)

// ErrFailedRelease is returned by ReleaseOrFail when Release returns false.
var ErrFailedRelease = errors.New("semaphore: failed to release")

// ErrFailedRefresh is returned by RefreshOrFail when Refresh returns false.
var ErrFailedRefresh = errors.New("semaphore: failed to refresh")
