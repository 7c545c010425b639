package middleware

// resultFailure is satisfied by any value that, like result.Result[T], can
// report its own failure without the caller needing to name T.
type resultFailure interface {
	IsFailure() bool
	FailureError() error
}

// resultRewrapper is a resultFailure that can also rebuild itself as a
// Failure of a given error, letting Retry/Fallback/Observe hand a terminal
// error back as a Result instead of throwing it, when T warrants it.
type resultRewrapper interface {
	resultFailure
	WithFailureAny(err error) any
}

// effectiveError is the error that should drive retry, fallback and observe
// policy decisions: a thrown err takes precedence; otherwise, if v is a
// Result-shaped value and holds a Failure, its wrapped error is treated the
// same as a thrown one. Returns nil only for a genuine success.
func effectiveError[T any](v T, err error) error {
	if err != nil {
		return err
	}
	if rf, ok := any(v).(resultFailure); ok && rf.IsFailure() {
		return rf.FailureError()
	}
	return nil
}

// rewrapError hands back a terminal error. In throw mode (T not
// Result-shaped) this is just (v, err). When T is Result-shaped, err is
// folded into a Failure of T instead, so a caller in Result mode never
// receives a thrown error out of Retry/Fallback/Observe.
func rewrapError[T any](v T, err error) (T, error) {
	if rw, ok := any(v).(resultRewrapper); ok {
		return rw.WithFailureAny(err).(T), nil
	}
	return v, err
}
