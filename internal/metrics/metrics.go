// Package metrics exposes prometheus instrumentation for fetch outcomes
// and cache effectiveness. A nil *Recorder is valid and records nothing,
// so instrumentation stays optional.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/goborsa/borsa/internal/core"
)

// Recorder holds the collectors every source reports into.
type Recorder struct {
	fetches   *prometheus.CounterVec
	durations *prometheus.HistogramVec
	cacheHits *prometheus.CounterVec
	cacheMiss *prometheus.CounterVec
}

// NewRecorder creates a recorder and registers its collectors.
func NewRecorder(reg prometheus.Registerer) *Recorder {
	r := &Recorder{
		fetches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "borsa",
			Name:      "fetches_total",
			Help:      "Upstream fetches by source, operation and result code.",
		}, []string{"source", "operation", "result"}),
		durations: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "borsa",
			Name:      "fetch_duration_seconds",
			Help:      "Upstream fetch latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"source", "operation"}),
		cacheHits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "borsa",
			Name:      "cache_hits_total",
			Help:      "Cache hits by source.",
		}, []string{"source"}),
		cacheMiss: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "borsa",
			Name:      "cache_misses_total",
			Help:      "Cache misses by source.",
		}, []string{"source"}),
	}
	if reg != nil {
		reg.MustRegister(r.fetches, r.durations, r.cacheHits, r.cacheMiss)
	}
	return r
}

// Fetch records one completed upstream fetch.
func (r *Recorder) Fetch(source, operation string, err error, dur time.Duration) {
	if r == nil {
		return
	}
	r.fetches.WithLabelValues(source, operation, core.CodeOf(err)).Inc()
	r.durations.WithLabelValues(source, operation).Observe(dur.Seconds())
}

// CacheHit records a cache hit for a source.
func (r *Recorder) CacheHit(source string) {
	if r == nil {
		return
	}
	r.cacheHits.WithLabelValues(source).Inc()
}

// CacheMiss records a cache miss for a source.
func (r *Recorder) CacheMiss(source string) {
	if r == nil {
		return
	}
	r.cacheMiss.WithLabelValues(source).Inc()
}
