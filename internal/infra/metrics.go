package infra

import (
	"sync/atomic"
	"time"
)

// Metrics provides lightweight observability of the market ticker.
// Uses atomic operations for thread-safety.
type Metrics struct {
	// Counters
	fetchesTotal   atomic.Uint64
	rendersTotal   atomic.Uint64
	unchangedTotal atomic.Uint64 // Successful fetches with a timestamp already seen
	skippedTotal   atomic.Uint64 // Refreshes dropped because a fetch was in flight
	errorsTotal    atomic.Uint64
	parseErrors    atomic.Uint64

	// Latency tracking
	latencySumNs atomic.Int64
	latencyCount atomic.Uint64

	// Gauges
	viewers atomic.Int32
	paused  atomic.Int32 // 1 = refresh timer paused
}

// RecordFetch records one fetch attempt with its latency.
func (m *Metrics) RecordFetch(latencyNs int64) {
	m.fetchesTotal.Add(1)
	m.latencySumNs.Add(latencyNs)
	m.latencyCount.Add(1)
}

// RecordRender records a render hand-off.
func (m *Metrics) RecordRender() {
	m.rendersTotal.Add(1)
}

// RecordUnchanged records a fetch whose snapshot was already displayed.
func (m *Metrics) RecordUnchanged() {
	m.unchangedTotal.Add(1)
}

// RecordSkipped records a refresh ignored by the in-flight guard.
func (m *Metrics) RecordSkipped() {
	m.skippedTotal.Add(1)
}

// RecordError records a failed fetch.
func (m *Metrics) RecordError() {
	m.errorsTotal.Add(1)
}

// RecordParseErrors records numeric fields recovered as zero.
func (m *Metrics) RecordParseErrors(n int) {
	if n > 0 {
		m.parseErrors.Add(uint64(n))
	}
}

// SetViewers sets the number of connected viewers.
func (m *Metrics) SetViewers(count int32) {
	m.viewers.Store(count)
}

// SetPaused sets the refresh timer state (true = paused).
func (m *Metrics) SetPaused(paused bool) {
	if paused {
		m.paused.Store(1)
	} else {
		m.paused.Store(0)
	}
}

// MetricsSnapshot is a point-in-time view of all metrics.
type MetricsSnapshot struct {
	FetchesTotal   uint64    `json:"fetches_total"`
	RendersTotal   uint64    `json:"renders_total"`
	UnchangedTotal uint64    `json:"unchanged_total"`
	SkippedTotal   uint64    `json:"skipped_total"`
	ErrorsTotal    uint64    `json:"errors_total"`
	ParseErrors    uint64    `json:"parse_errors_total"`
	AvgLatencyNs   int64     `json:"avg_latency_ns"`
	Viewers        int32     `json:"viewers"`
	Paused         bool      `json:"paused"`
	Timestamp      time.Time `json:"timestamp"`
}

// Snapshot returns current metrics as a snapshot.
func (m *Metrics) Snapshot() MetricsSnapshot {
	var avgLatency int64
	count := m.latencyCount.Load()
	if count > 0 {
		avgLatency = m.latencySumNs.Load() / int64(count)
	}

	return MetricsSnapshot{
		FetchesTotal:   m.fetchesTotal.Load(),
		RendersTotal:   m.rendersTotal.Load(),
		UnchangedTotal: m.unchangedTotal.Load(),
		SkippedTotal:   m.skippedTotal.Load(),
		ErrorsTotal:    m.errorsTotal.Load(),
		ParseErrors:    m.parseErrors.Load(),
		AvgLatencyNs:   avgLatency,
		Viewers:        m.viewers.Load(),
		Paused:         m.paused.Load() == 1,
		Timestamp:      time.Now(),
	}
}
