package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"

	"github.com/goborsa/borsa/internal/core"
)

func TestRecorder_Fetch(t *testing.T) {
	reg := prometheus.NewRegistry()
	r := NewRecorder(reg)

	r.Fetch("isyatirim", "quote", nil, 120*time.Millisecond)
	r.Fetch("isyatirim", "quote", core.TickerNotFound("XXXX"), 80*time.Millisecond)

	ok := testutil.ToFloat64(r.fetches.WithLabelValues("isyatirim", "quote", "ok"))
	assert.Equal(t, 1.0, ok)

	nf := testutil.ToFloat64(r.fetches.WithLabelValues("isyatirim", "quote", core.CodeTickerNotFound))
	assert.Equal(t, 1.0, nf)
}

func TestRecorder_Cache(t *testing.T) {
	reg := prometheus.NewRegistry()
	r := NewRecorder(reg)

	r.CacheHit("tefas")
	r.CacheHit("tefas")
	r.CacheMiss("tefas")

	assert.Equal(t, 2.0, testutil.ToFloat64(r.cacheHits.WithLabelValues("tefas")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.cacheMiss.WithLabelValues("tefas")))
}

func TestRecorder_NilSafe(t *testing.T) {
	var r *Recorder
	// Must not panic.
	r.Fetch("x", "quote", nil, time.Millisecond)
	r.CacheHit("x")
	r.CacheMiss("x")
}
