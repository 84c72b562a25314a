package goSession

import "sync/atomic"

// MetricID identifies one engine counter.
type MetricID uint16

const (
	// MetricRegisterSuccess counts principals created at the provider.
	MetricRegisterSuccess MetricID = iota
	// MetricRegisterFailure counts failed registrations.
	MetricRegisterFailure
	// MetricLoginSuccess counts successful logins (created or reused).
	MetricLoginSuccess
	// MetricLoginFailure counts rejected or failed logins.
	MetricLoginFailure
	// MetricSessionCreated counts sessions persisted for a new (user,
	// device) pair.
	MetricSessionCreated
	// MetricSessionReused counts logins that bound to an existing session.
	MetricSessionReused
	// MetricRefreshSuccess counts completed refresh rotations.
	MetricRefreshSuccess
	// MetricRefreshFailure counts refreshes rejected for any reason.
	MetricRefreshFailure
	// MetricRefreshConflict counts rotations lost to a concurrent racer.
	MetricRefreshConflict
	// MetricReplayRejected counts proofs rejected for signature or
	// freshness reasons.
	MetricReplayRejected
	// MetricRevokeFailure counts best-effort upstream revocations that
	// failed during logout.
	MetricRevokeFailure
	// MetricLogout counts single-session revocations.
	MetricLogout
	// MetricLogoutAll counts all-sessions revocations.
	MetricLogoutAll
	metricIDCount
)

const cacheLineSize = 64

type paddedCounter struct {
	value uint64
	_     [cacheLineSize - 8]byte
}

// Metrics is a lock-free counter set sized at compile time. A nil or
// disabled Metrics is safe to use and counts nothing.
type Metrics struct {
	enabled  bool
	counters [metricIDCount]paddedCounter
}

// MetricsSnapshot is a point-in-time copy of every counter.
type MetricsSnapshot struct {
	Counters map[MetricID]uint64
}

// NewMetrics creates a counter set per the given config.
func NewMetrics(cfg MetricsConfig) *Metrics {
	return &Metrics{enabled: cfg.Enabled}
}

// Enabled reports whether counting is active.
func (m *Metrics) Enabled() bool {
	return m != nil && m.enabled
}

// Inc adds one to the identified counter.
func (m *Metrics) Inc(id MetricID) {
	if m == nil || !m.enabled || id >= metricIDCount {
		return
	}
	atomic.AddUint64(&m.counters[id].value, 1)
}

// Value reads a single counter.
func (m *Metrics) Value(id MetricID) uint64 {
	if m == nil || id >= metricIDCount {
		return 0
	}
	return atomic.LoadUint64(&m.counters[id].value)
}

// Snapshot copies all counters at once.
func (m *Metrics) Snapshot() MetricsSnapshot {
	if m == nil || !m.enabled {
		return MetricsSnapshot{Counters: map[MetricID]uint64{}}
	}

	s := MetricsSnapshot{Counters: make(map[MetricID]uint64, int(metricIDCount))}
	for id := MetricID(0); id < metricIDCount; id++ {
		s.Counters[id] = atomic.LoadUint64(&m.counters[id].value)
	}
	return s
}
