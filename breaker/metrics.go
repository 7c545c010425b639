package breaker

import (
	"sync/atomic"

	"github.com/prometheus/client_golang/prometheus"
)

// MetricsCollector observes breaker activity. Paired Atomic/Prometheus
// implementations follow the teacher's dsync/circuitbreaker.MetricsCollector.
type MetricsCollector interface {
	IncRequests()
	IncSuccesses()
	IncFailures()
	IncOpen()
	IncClose()
}

// AtomicMetrics is a dependency-free MetricsCollector backed by atomic
// counters, suitable as the default when no Prometheus registry is wired.
type AtomicMetrics struct {
	requests  int64
	successes int64
	failures  int64
	open      int64
	closeCnt  int64
}

func (m *AtomicMetrics) IncRequests()  { atomic.AddInt64(&m.requests, 1) }
func (m *AtomicMetrics) IncSuccesses() { atomic.AddInt64(&m.successes, 1) }
func (m *AtomicMetrics) IncFailures()  { atomic.AddInt64(&m.failures, 1) }
func (m *AtomicMetrics) IncOpen()      { atomic.AddInt64(&m.open, 1) }
func (m *AtomicMetrics) IncClose()     { atomic.AddInt64(&m.closeCnt, 1) }

func (m *AtomicMetrics) Requests() int64  { return atomic.LoadInt64(&m.requests) }
func (m *AtomicMetrics) Successes() int64 { return atomic.LoadInt64(&m.successes) }
func (m *AtomicMetrics) Failures() int64  { return atomic.LoadInt64(&m.failures) }
func (m *AtomicMetrics) Opens() int64     { return atomic.LoadInt64(&m.open) }
func (m *AtomicMetrics) Closes() int64    { return atomic.LoadInt64(&m.closeCnt) }

// PrometheusMetrics implements MetricsCollector with prometheus.Counter
// fields, wired by the caller to a registry.
type PrometheusMetrics struct {
	Requests  prometheus.Counter
	Successes prometheus.Counter
	Failures  prometheus.Counter
	Open      prometheus.Counter
	Close     prometheus.Counter
}

func (m *PrometheusMetrics) IncRequests()  { m.Requests.Inc() }
func (m *PrometheusMetrics) IncSuccesses() { m.Successes.Inc() }
func (m *PrometheusMetrics) IncFailures()  { m.Failures.Inc() }
func (m *PrometheusMetrics) IncOpen()      { m.Open.Inc() }
func (m *PrometheusMetrics) IncClose()     { m.Close.Inc() }
