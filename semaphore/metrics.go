package semaphore

import (
	"sync/atomic"

	"github.com/prometheus/client_golang/prometheus"
)

// MetricsCollector observes semaphore activity.
type MetricsCollector interface {
	IncAcquireAttempts()
	IncAcquireSuccess()
	IncLimitReached()
	IncReleases()
	IncRefreshes()
}

// AtomicMetrics is a dependency-free MetricsCollector default.
type AtomicMetrics struct {
	acquireAttempts int64
	acquireSuccess  int64
	limitReached    int64
	releases        int64
	refreshes       int64
}

func (m *AtomicMetrics) IncAcquireAttempts() { atomic.AddInt64(&m.acquireAttempts, 1) }
func (m *AtomicMetrics) IncAcquireSuccess()  { atomic.AddInt64(&m.acquireSuccess, 1) }
func (m *AtomicMetrics) IncLimitReached()    { atomic.AddInt64(&m.limitReached, 1) }
func (m *AtomicMetrics) IncReleases()        { atomic.AddInt64(&m.releases, 1) }
func (m *AtomicMetrics) IncRefreshes()       { atomic.AddInt64(&m.refreshes, 1) }

// PrometheusMetrics implements MetricsCollector with prometheus.Counter fields.
type PrometheusMetrics struct {
	AcquireAttempts prometheus.Counter
	AcquireSuccess  prometheus.Counter
	LimitReached    prometheus.Counter
	Releases        prometheus.Counter
	Refreshes       prometheus.Counter
}

func (m *PrometheusMetrics) IncAcquireAttempts() { m.AcquireAttempts.Inc() }
func (m *PrometheusMetrics) IncAcquireSuccess()  { m.AcquireSuccess.Inc() }
func (m *PrometheusMetrics) IncLimitReached()    { m.LimitReached.Inc() }
func (m *PrometheusMetrics) IncReleases()        { m.Releases.Inc() }
func (m *PrometheusMetrics) IncRefreshes()       { m.Refreshes.Inc() }
