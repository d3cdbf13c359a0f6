package metrics

import "sync/atomic"

// MetricID identifies one counter.
type MetricID uint16

const (
	MetricLoginSuccess MetricID = iota
	MetricLoginFailure
	MetricLoginRateLimited
	MetricLogout
	MetricForceLogout
	MetricSessionCreated
	MetricSessionInvalidated
	MetricAuthorizeAllow
	MetricAuthorizeDeny
	MetricPermissionCacheHit
	MetricPermissionCacheMiss
	MetricPermissionCacheCleared
	MetricTraceWriteFailure

	// MetricIDCount is the number of defined metric IDs.
	MetricIDCount
)

// Config controls whether counting is active.
type Config struct {
	Enabled bool
}

// Metrics is a fixed array of atomic counters. A nil or disabled Metrics
// makes every operation a no-op.
type Metrics struct {
	enabled  bool
	counters [MetricIDCount]atomic.Uint64
}

// Snapshot is a point-in-time copy of all counters.
type Snapshot struct {
	Counters map[MetricID]uint64
}

// New creates a [Metrics] instance according to cfg.
func New(cfg Config) *Metrics {
	return &Metrics{enabled: cfg.Enabled}
}

// Inc increments the counter for id.
func (m *Metrics) Inc(id MetricID) {
	if m == nil || !m.enabled || id >= MetricIDCount {
		return
	}
	m.counters[id].Add(1)
}

// Value returns the current value of one counter.
func (m *Metrics) Value(id MetricID) uint64 {
	if m == nil || id >= MetricIDCount {
		return 0
	}
	return m.counters[id].Load()
}

// TakeSnapshot copies all counters.
func (m *Metrics) TakeSnapshot() Snapshot {
	snap := Snapshot{Counters: make(map[MetricID]uint64, MetricIDCount)}
	if m == nil {
		return snap
	}
	for id := MetricID(0); id < MetricIDCount; id++ {
		snap.Counters[id] = m.counters[id].Load()
	}
	return snap
}
