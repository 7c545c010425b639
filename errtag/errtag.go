// Package errtag provides the typed error taxonomy shared by every
// coordination primitive: a small Kind enum distinguishing contract
// violations, resilience-policy exhaustion, cancellation and driver errors,
// wrapping a cause the same way stdlib error wrapping does.
//
// Modeled on the teacher's types/errors package (Kind constants over a
// shared Error type) without its TOML-embedded message catalogue, which
// wasn't present in the retrieval pack (see DESIGN.md).
package errtag

import "fmt"

// Kind tags the category of failure, independent of the specific message.
type Kind string

const (
	// Contract violates a precondition the caller could have checked
	// (lock not held by caller, semaphore limit reached).
	Contract Kind = "contract_violation"
	// Resilience means a resilience policy (retry/bulkhead/timeout)
	// exhausted or rejected the call.
	Resilience Kind = "resilience"
	// Canceled means the caller aborted the operation.
	Canceled Kind = "canceled"
	// Driver means the underlying adapter/transport failed unexpectedly.
	Driver Kind = "driver"
	// Internal means the driver returned a shape the contract forbids.
	Internal Kind = "internal"
)

// Error is a structured failure value: a Kind tag, a message and an
// optional cause chain.
type Error struct {
	Kind    Kind
	Message string
	Cause   error
}

// New builds an Error of the given kind.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Wrap builds an Error of the given kind around a cause.
func Wrap(kind Kind, message string, cause error) *Error {
	return &Error{Kind: kind, Message: message, Cause: cause}
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %s", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Is allows errors.Is(err, errtag.New(kind, "")) style kind checks by
// comparing Kind alone; the target's Message and Cause are ignored.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == t.Kind
}

// Of reports the Kind of err, or "" if err is not (or doesn't wrap) an *Error.
func Of(err error) Kind {
	var e *Error
	for err != nil {
		if ae, ok := err.(*Error); ok {
			e = ae
			break
		}
		unwrapper, ok := err.(interface{ Unwrap() error })
		if !ok {
			break
		}
		err = unwrapper.Unwrap()
	}
	if e == nil {
		return ""
	}
	return e.Kind
}
