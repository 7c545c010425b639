package cache

import "errors"

// Event names, per spec §6's cache event list, dispatched to the event bus.
const (
	EventKeyFound       = "key_found"
	EventKeyNotFound    = "key_not_found"
	EventKeyAdded       = "key_added"
	EventKeyUpdated     = "key_updated"
	EventKeyRemoved     = "key_removed"
	EventKeysCleared    = "keys_cleared"
	EventKeyIncremented = "key_incremented"
	EventKeyDecremented = "key_decremented"
	EventUnexpectedErr  = "UNEXPECTED_ERROR"
)

// ErrKeyNotFound is returned by GetOrFail when the key is absent or expired.
var ErrKeyNotFound = errors.New("cache: key not found")

// ErrKeyExists is returned by AddOrFail when Add reports the key already held.
var ErrKeyExists = errors.New("cache: key already exists")
