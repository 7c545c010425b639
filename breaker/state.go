// Package breaker implements the storage-adapter-independent circuit
// breaker state machine: Closed/Open/HalfOpen/Isolated transitions driven
// by a Consecutive failure/success-counting policy, usable standalone or
// wired into the middleware pipeline as a resilience middleware.
//
// Grounded on the teacher's two circuit breaker packages: sync/circuitbreaker
// (State enum, atomic counter/status fields) for the state machine shape,
// and dsync/circuitbreaker (MetricsCollector/AtomicCBMetrics/PrometheusCBMetrics
// pairing) for the metrics seam.
package breaker

// State is one of the four circuit breaker states.
type State int

const (
	Closed State = iota
	Open
	HalfOpen
	Isolated
)

var stateText = map[State]string{
	Closed:   "closed",
	Open:     "open",
	HalfOpen: "half-open",
	Isolated: "isolated",
}

func (s State) String() string {
	if text, ok := stateText[s]; ok {
		return text
	}
	return "unknown"
}

func (s State) IsOpen() bool     { return s == Open }
func (s State) IsClosed() bool   { return s == Closed }
func (s State) IsHalfOpen() bool { return s == HalfOpen }
func (s State) IsIsolated() bool { return s == Isolated }
