package breaker

import (
	"errors"
	"fmt"
)

// ErrUnavailable is returned by Breaker.Run when the breaker is Open or
// Isolated and F is not invoked.
var ErrUnavailable = errors.New("breaker: unavailable")

// ErrIsolated refines ErrUnavailable for the Isolated state specifically.
var ErrIsolated = fmt.Errorf("%w: isolated", ErrUnavailable)
