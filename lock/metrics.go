package lock

import (
	"sync/atomic"

	"github.com/prometheus/client_golang/prometheus"
)

// MetricsCollector observes lock activity, paired Atomic/Prometheus
// implementations per the teacher's dsync/lock.MetricsCollector.
type MetricsCollector interface {
	IncLockAttempts()
	IncLockSuccess()
	IncLockFailures()
	IncUnlocks()
	IncRefreshes()
}

// AtomicMetrics is a dependency-free MetricsCollector default.
type AtomicMetrics struct {
	lockAttempts int64
	lockSuccess  int64
	lockFailures int64
	unlocks      int64
	refreshes    int64
}

func (m *AtomicMetrics) IncLockAttempts() { atomic.AddInt64(&m.lockAttempts, 1) }
func (m *AtomicMetrics) IncLockSuccess()  { atomic.AddInt64(&m.lockSuccess, 1) }
func (m *AtomicMetrics) IncLockFailures() { atomic.AddInt64(&m.lockFailures, 1) }
func (m *AtomicMetrics) IncUnlocks()      { atomic.AddInt64(&m.unlocks, 1) }
func (m *AtomicMetrics) IncRefreshes()    { atomic.AddInt64(&m.refreshes, 1) }

// PrometheusMetrics implements MetricsCollector with prometheus.Counter
// fields wired by the caller to a registry.
type PrometheusMetrics struct {
	LockAttempts prometheus.Counter
	LockSuccess  prometheus.Counter
	LockFailures prometheus.Counter
	Unlocks      prometheus.Counter
	Refreshes    prometheus.Counter
}

func (m *PrometheusMetrics) IncLockAttempts() { m.LockAttempts.Inc() }
func (m *PrometheusMetrics) IncLockSuccess()  { m.LockSuccess.Inc() }
func (m *PrometheusMetrics) IncLockFailures() { m.LockFailures.Inc() }
func (m *PrometheusMetrics) IncUnlocks()      { m.Unlocks.Inc() }
func (m *PrometheusMetrics) IncRefreshes()    { m.Refreshes.Inc() }
