package app

import (
	"sync"
	"sync/atomic"
	"time"
)

// Metrics tracks event loop timing.
type Metrics struct {
	mu sync.RWMutex

	eventCount   atomic.Uint64
	eventTotalNs atomic.Int64
	eventMaxNs   atomic.Int64
	reloads      atomic.Uint64

	perKind map[EventKind]uint64

	startTime time.Time
}

// NewMetrics creates a new metrics tracker.
func NewMetrics() *Metrics {
	return &Metrics{
		perKind:   make(map[EventKind]uint64),
		startTime: time.Now(),
	}
}

// RecordEvent records event processing timing.
func (m *Metrics) RecordEvent(kind EventKind, duration time.Duration) {
	ns := duration.Nanoseconds()
	m.eventCount.Add(1)
	m.eventTotalNs.Add(ns)

	for {
		old := m.eventMaxNs.Load()
		if ns <= old {
			break
		}
		if m.eventMaxNs.CompareAndSwap(old, ns) {
			break
		}
	}

	m.mu.Lock()
	m.perKind[kind]++
	m.mu.Unlock()
}

// RecordReload counts a configuration reload request.
func (m *Metrics) RecordReload() {
	m.reloads.Add(1)
}

// Snapshot returns a snapshot of current metrics.
func (m *Metrics) Snapshot() MetricsSnapshot {
	count := m.eventCount.Load()

	var avg int64
	if count > 0 {
		avg = m.eventTotalNs.Load() / int64(count)
	}

	m.mu.RLock()
	perKind := make(map[EventKind]uint64, len(m.perKind))
	for k, v := range m.perKind {
		perKind[k] = v
	}
	start := m.startTime
	m.mu.RUnlock()

	return MetricsSnapshot{
		Uptime:     time.Since(start),
		EventCount: count,
		AvgEventNs: avg,
		MaxEventNs: m.eventMaxNs.Load(),
		Reloads:    m.reloads.Load(),
		PerKind:    perKind,
	}
}

// Reset clears all metrics.
func (m *Metrics) Reset() {
	m.eventCount.Store(0)
	m.eventTotalNs.Store(0)
	m.eventMaxNs.Store(0)
	m.reloads.Store(0)

	m.mu.Lock()
	m.perKind = make(map[EventKind]uint64)
	m.startTime = time.Now()
	m.mu.Unlock()
}

// MetricsSnapshot is a point-in-time view of metrics.
type MetricsSnapshot struct {
	Uptime     time.Duration
	EventCount uint64
	AvgEventNs int64
	MaxEventNs int64
	Reloads    uint64
	PerKind    map[EventKind]uint64
}
