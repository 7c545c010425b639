package cache

import (
	"sync/atomic"

	"github.com/prometheus/client_golang/prometheus"
)

// MetricsCollector observes cache activity, paired Atomic/Prometheus
// implementations per the teacher's AtomicLockMetrics/PrometheusLockMetrics
// shape.
type MetricsCollector interface {
	IncHits()
	IncMisses()
	IncWrites()
	IncDeletes()
	IncClears()
}

// AtomicMetrics is a dependency-free MetricsCollector default.
type AtomicMetrics struct {
	hits    int64
	misses  int64
	writes  int64
	deletes int64
	clears  int64
}

func (m *AtomicMetrics) IncHits()    { atomic.AddInt64(&m.hits, 1) }
func (m *AtomicMetrics) IncMisses()  { atomic.AddInt64(&m.misses, 1) }
func (m *AtomicMetrics) IncWrites()  { atomic.AddInt64(&m.writes, 1) }
func (m *AtomicMetrics) IncDeletes() { atomic.AddInt64(&m.deletes, 1) }
func (m *AtomicMetrics) IncClears()  { atomic.AddInt64(&m.clears, 1) }

// PrometheusMetrics implements MetricsCollector with prometheus.Counter
// fields wired by the caller to a registry.
type PrometheusMetrics struct {
	Hits    prometheus.Counter
	Misses  prometheus.Counter
	Writes  prometheus.Counter
	Deletes prometheus.Counter
	Clears  prometheus.Counter
}

func (m *PrometheusMetrics) IncHits()    { m.Hits.Inc() }
func (m *PrometheusMetrics) IncMisses()  { m.Misses.Inc() }
func (m *PrometheusMetrics) IncWrites()  { m.Writes.Inc() }
func (m *PrometheusMetrics) IncDeletes() { m.Deletes.Inc() }
func (m *PrometheusMetrics) IncClears()  { m.Clears.Inc() }
