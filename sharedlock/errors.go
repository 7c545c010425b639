package sharedlock

import "errors"

// Event names, per the writer/reader split of spec §4.7, dispatched to the
// event bus.
const (
	EventWriterAcquired      = "WRITER_ACQUIRED"
	EventWriterUnavailable   = "WRITER_UNAVAILABLE"
	EventWriterReleased      = "WRITER_RELEASED"
	EventWriterFailedRelease = "WRITER_FAILED_RELEASE"
	EventWriterRefreshed     = "WRITER_REFRESHED"
	EventWriterFailedRefresh = "WRITER_FAILED_REFRESH"
	EventReaderAcquired      = "READER_ACQUIRED"
	EventReaderUnavailable   = "READER_UNAVAILABLE"
	EventReaderReleased      = "READER_RELEASED"
	EventReaderFailedRelease = "READER_FAILED_RELEASE"
	EventReaderRefreshed     = "READER_REFRESHED"
	EventReaderFailedRefresh = "READER_FAILED_REFRESH"
	EventAllReadersForceReleased = "ALL_READERS_FORCE_RELEASED"
	EventForceReleased       = "FORCE_RELEASED"
	EventUnexpectedErr       = "UNEXPECTED_ERROR"
)

// ErrFailedAcquireWriter is returned by AcquireWriterOrFail on a false result.
var ErrFailedAcquireWriter = errors.New("sharedlock: failed to acquire writer")

// ErrFailedAcquireReader is returned by AcquireReaderOrFail on a false result.
var ErrFailedAcquireReader = errors.New("sharedlock: failed to acquire reader")

// ErrFailedReleaseWriter is returned by ReleaseWriterOrFail on a false result.
var ErrFailedReleaseWriter = errors.New("sharedlock: failed to release writer")

// ErrFailedReleaseReader is returned by ReleaseReaderOrFail on a false
// result, including when a writer is currently held.
var ErrFailedReleaseReader = errors.New("sharedlock: failed to release reader")

// ErrFailedRefresh is returned by the RefreshXOrFail variants on a false result.
var ErrFailedRefresh = errors.New("sharedlock: failed to refresh")
