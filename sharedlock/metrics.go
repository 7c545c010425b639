package sharedlock

import (
	"sync/atomic"

	"github.com/prometheus/client_golang/prometheus"
)

// MetricsCollector observes shared-lock activity, paired Atomic/Prometheus
// implementations mirroring lock.MetricsCollector and semaphore.MetricsCollector.
type MetricsCollector interface {
	IncWriterAttempts()
	IncWriterSuccess()
	IncWriterFailures()
	IncWriterReleases()
	IncReaderAttempts()
	IncReaderSuccess()
	IncReaderFailures()
	IncReaderReleases()
	IncRefreshes()
}

// AtomicMetrics is a dependency-free MetricsCollector default.
type AtomicMetrics struct {
	writerAttempts int64
	writerSuccess  int64
	writerFailures int64
	writerReleases int64
	readerAttempts int64
	readerSuccess  int64
	readerFailures int64
	readerReleases int64
	refreshes      int64
}

func (m *AtomicMetrics) IncWriterAttempts() { atomic.AddInt64(&m.writerAttempts, 1) }
func (m *AtomicMetrics) IncWriterSuccess()   { atomic.AddInt64(&m.writerSuccess, 1) }
func (m *AtomicMetrics) IncWriterFailures()  { atomic.AddInt64(&m.writerFailures, 1) }
func (m *AtomicMetrics) IncWriterReleases()  { atomic.AddInt64(&m.writerReleases, 1) }
func (m *AtomicMetrics) IncReaderAttempts()  { atomic.AddInt64(&m.readerAttempts, 1) }
func (m *AtomicMetrics) IncReaderSuccess()   { atomic.AddInt64(&m.readerSuccess, 1) }
func (m *AtomicMetrics) IncReaderFailures()  { atomic.AddInt64(&m.readerFailures, 1) }
func (m *AtomicMetrics) IncReaderReleases()  { atomic.AddInt64(&m.readerReleases, 1) }
func (m *AtomicMetrics) IncRefreshes()       { atomic.AddInt64(&m.refreshes, 1) }

// PrometheusMetrics implements MetricsCollector with prometheus.Counter
// fields wired by the caller to a registry.
type PrometheusMetrics struct {
	WriterAttempts prometheus.Counter
	WriterSuccess  prometheus.Counter
	WriterFailures prometheus.Counter
	WriterReleases prometheus.Counter
	ReaderAttempts prometheus.Counter
	ReaderSuccess  prometheus.Counter
	ReaderFailures prometheus.Counter
	ReaderReleases prometheus.Counter
	Refreshes      prometheus.Counter
}

func (m *PrometheusMetrics) IncWriterAttempts() { m.WriterAttempts.Inc() }
func (m *PrometheusMetrics) IncWriterSuccess()  { m.WriterSuccess.Inc() }
func (m *PrometheusMetrics) IncWriterFailures() { m.WriterFailures.Inc() }
func (m *PrometheusMetrics) IncWriterReleases() { m.WriterReleases.Inc() }
func (m *PrometheusMetrics) IncReaderAttempts() { m.ReaderAttempts.Inc() }
func (m *PrometheusMetrics) IncReaderSuccess()  { m.ReaderSuccess.Inc() }
func (m *PrometheusMetrics) IncReaderFailures() { m.ReaderFailures.Inc() }
func (m *PrometheusMetrics) IncReaderReleases() { m.ReaderReleases.Inc() }
func (m *PrometheusMetrics) IncRefreshes()      { m.Refreshes.Inc() }
