// Package key provides a hierarchical key type used to address lock,
// semaphore and circuit breaker records, plus a Namespace helper that
// qualifies a user key with a provider-wide prefix.
package key

import (
	"errors"
	"strings"
)

// ErrEmptySegment is returned when a Key segment is the empty string.
var ErrEmptySegment = errors.New("key: segment must not be empty")

const sep = "/"

// Key is an ordered list of non-empty segments; the zero Key has none.
type Key struct {
	segments []string
}

// New builds a Key from one or more segments. It panics if any segment is
// empty, mirroring how Namespace/lock code treats a malformed key as a
// programmer error rather than a recoverable one.
func New(segments ...string) Key {
	k, err := Parse(segments...)
	if err != nil {
		panic(err)
	}
	return k
}

// Parse builds a Key, validating that no segment is empty.
func Parse(segments ...string) (Key, error) {
	for _, s := range segments {
		if s == "" {
			return Key{}, ErrEmptySegment
		}
	}

	cp := make([]string, len(segments))
	copy(cp, segments)
	return Key{segments: cp}, nil
}

// Append returns a new Key with additional segments appended.
func (k Key) Append(segments ...string) Key {
	return New(append(append([]string{}, k.segments...), segments...)...)
}

// Segments returns a copy of the ordered segment list.
func (k Key) Segments() []string {
	cp := make([]string, len(k.segments))
	copy(cp, k.segments)
	return cp
}

// String deterministically renders the key as segments joined by "/".
func (k Key) String() string {
	return strings.Join(k.segments, sep)
}

// Equal reports whether two keys have identical segment sequences.
func (k Key) Equal(o Key) bool {
	if len(k.segments) != len(o.segments) {
		return false
	}
	for i, s := range k.segments {
		if s != o.segments[i] {
			return false
		}
	}
	return true
}

// IsZero reports whether the key has no segments.
func (k Key) IsZero() bool {
	return len(k.segments) == 0
}
