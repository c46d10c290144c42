package app

import (
	"sync/atomic"
	"time"
)

// Metrics tracks completion request and decision counts.
type Metrics struct {
	requests     atomic.Uint64
	timeouts     atomic.Uint64
	fallbacks    atomic.Uint64
	failures     atomic.Uint64
	requestNs    atomic.Int64
	minRequestNs atomic.Int64
	maxRequestNs atomic.Int64

	accepted atomic.Uint64
	rejected atomic.Uint64
	undone   atomic.Uint64
	redone   atomic.Uint64

	startTime time.Time
}

// NewMetrics creates a new metrics tracker.
func NewMetrics() *Metrics {
	m := &Metrics{startTime: time.Now()}
	m.minRequestNs.Store(1<<63 - 1)
	return m
}

// RecordRequest records a finished request. err is the request error, if any.
func (m *Metrics) RecordRequest(d time.Duration, err error) {
	ns := d.Nanoseconds()
	m.requests.Add(1)
	m.requestNs.Add(ns)

	for {
		old := m.minRequestNs.Load()
		if ns >= old || m.minRequestNs.CompareAndSwap(old, ns) {
			break
		}
	}
	for {
		old := m.maxRequestNs.Load()
		if ns <= old || m.maxRequestNs.CompareAndSwap(old, ns) {
			break
		}
	}

	if err != nil {
		m.failures.Add(1)
		if isTimeout(err) {
			m.timeouts.Add(1)
		}
	}
}

// RecordFallback records a switch to the fallback model.
func (m *Metrics) RecordFallback() { m.fallbacks.Add(1) }

// RecordAccept records an accepted suggestion.
func (m *Metrics) RecordAccept() { m.accepted.Add(1) }

// RecordReject records a rejected suggestion.
func (m *Metrics) RecordReject() { m.rejected.Add(1) }

// RecordUndo records an undone update.
func (m *Metrics) RecordUndo() { m.undone.Add(1) }

// RecordRedo records a redone update.
func (m *Metrics) RecordRedo() { m.redone.Add(1) }

// Snapshot returns a snapshot of current metrics.
func (m *Metrics) Snapshot() MetricsSnapshot {
	requests := m.requests.Load()
	var avg time.Duration
	if requests > 0 {
		avg = time.Duration(m.requestNs.Load() / int64(requests))
	}
	minNs := m.minRequestNs.Load()
	if minNs == 1<<63-1 {
		minNs = 0
	}

	return MetricsSnapshot{
		Uptime:     time.Since(m.startTime),
		Requests:   requests,
		Failures:   m.failures.Load(),
		Timeouts:   m.timeouts.Load(),
		Fallbacks:  m.fallbacks.Load(),
		AvgRequest: avg,
		MinRequest: time.Duration(minNs),
		MaxRequest: time.Duration(m.maxRequestNs.Load()),
		Accepted:   m.accepted.Load(),
		Rejected:   m.rejected.Load(),
		Undone:     m.undone.Load(),
		Redone:     m.redone.Load(),
	}
}

// MetricsSnapshot is a point-in-time view of metrics.
type MetricsSnapshot struct {
	Uptime     time.Duration
	Requests   uint64
	Failures   uint64
	Timeouts   uint64
	Fallbacks  uint64
	AvgRequest time.Duration
	MinRequest time.Duration
	MaxRequest time.Duration
	Accepted   uint64
	Rejected   uint64
	Undone     uint64
	Redone     uint64
}

// AcceptRate returns the percentage of decided suggestions that were
// accepted.
func (s MetricsSnapshot) AcceptRate() float64 {
	total := s.Accepted + s.Rejected
	if total == 0 {
		return 0
	}
	return float64(s.Accepted) / float64(total) * 100
}

// LogAttrs returns the snapshot as slog key-value pairs.
func (s MetricsSnapshot) LogAttrs() []any {
	return []any{
		"uptime", s.Uptime.Round(time.Second),
		"requests", s.Requests,
		"failures", s.Failures,
		"timeouts", s.Timeouts,
		"fallbacks", s.Fallbacks,
		"avg_request", s.AvgRequest,
		"accepted", s.Accepted,
		"rejected", s.Rejected,
		"undone", s.Undone,
		"redone", s.Redone,
	}
}
