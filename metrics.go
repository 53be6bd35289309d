package goToken

import "sync/atomic"

// MetricID indexes a fixed counter slot.
type MetricID uint16

const (
	// MetricTokenIssued counts terminal sign operations.
	MetricTokenIssued MetricID = iota
	// MetricTokenParsed counts successful structural parses.
	MetricTokenParsed
	// MetricParseFailure counts structural parse failures.
	MetricParseFailure
	// MetricValidationSuccess counts pipeline runs that passed every stage.
	MetricValidationSuccess
	// MetricValidationFailure counts pipeline runs stopped by a failing stage.
	MetricValidationFailure
	// MetricSignatureVerify counts invocations of the signature engine at
	// validation time. Cached validation hits do not increment it.
	MetricSignatureVerify
	// MetricCacheHit counts parsed-token and validation-result cache hits.
	MetricCacheHit
	// MetricCacheMiss counts cache lookups that missed.
	MetricCacheMiss
	// MetricCacheEviction counts entries removed by capacity eviction.
	MetricCacheEviction
	// MetricRevocation counts tokens added to a revocation registry.
	MetricRevocation
	metricIDCount
)

var metricNames = [metricIDCount]string{
	MetricTokenIssued:       "gotoken_tokens_issued_total",
	MetricTokenParsed:       "gotoken_tokens_parsed_total",
	MetricParseFailure:      "gotoken_parse_failures_total",
	MetricValidationSuccess: "gotoken_validation_success_total",
	MetricValidationFailure: "gotoken_validation_failure_total",
	MetricSignatureVerify:   "gotoken_signature_verifications_total",
	MetricCacheHit:          "gotoken_cache_hits_total",
	MetricCacheMiss:         "gotoken_cache_misses_total",
	MetricCacheEviction:     "gotoken_cache_evictions_total",
	MetricRevocation:        "gotoken_revocations_total",
}

// MetricName returns the stable exported name for a counter.
func MetricName(id MetricID) string {
	if int(id) >= len(metricNames) {
		return ""
	}
	return metricNames[id]
}

// MetricCount is the number of defined counters.
const MetricCount = int(metricIDCount)

const cacheLineSize = 64

// paddedCounter keeps hot counters on separate cache lines.
type paddedCounter struct {
	value uint64
	_     [cacheLineSize - 8]byte
}

// Metrics is a fixed set of lock-free counters shared by parser,
// validator, caches, and registries. A nil *Metrics is a valid sink that
// drops every increment.
type Metrics struct {
	counters [metricIDCount]paddedCounter
}

// NewMetrics returns a zeroed counter set.
func NewMetrics() *Metrics {
	return &Metrics{}
}

// Inc adds one to the counter. Safe on a nil receiver.
func (m *Metrics) Inc(id MetricID) {
	if m == nil || id >= metricIDCount {
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

// MetricsSnapshot is a point-in-time copy of every counter.
type MetricsSnapshot struct {
	Counters [metricIDCount]uint64
}

// Snapshot copies all counters at once.
func (m *Metrics) Snapshot() MetricsSnapshot {
	var snap MetricsSnapshot
	if m == nil {
		return snap
	}
	for i := range m.counters {
		snap.Counters[i] = atomic.LoadUint64(&m.counters[i].value)
	}
	return snap
}
