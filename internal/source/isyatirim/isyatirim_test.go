package isyatirim

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goborsa/borsa/internal/cache"
	"github.com/goborsa/borsa/internal/config"
	"github.com/goborsa/borsa/internal/core"
	"github.com/goborsa/borsa/internal/source"
	"github.com/goborsa/borsa/internal/transport"
)

func testDeps() source.Deps {
	return source.Deps{
		Cache: cache.New(),
		HTTP:  transport.New(transport.Options{Timeout: 5 * time.Second}, nil),
		TTL:   config.Defaults().TTL,
	}
}

const quoteBody = `{"value":[{
	"HG_HS_KOD":"AKBNK",
	"HG_KAPANIS":"57.25",
	"HG_ACILIS":"56.10",
	"HG_YUKSEK":"58.00",
	"HG_DUSUK":"55.90",
	"HG_DUNKAPANIS":"55.00",
	"HG_HACIM":"1,234,567.89",
	"HG_TARIH":1767225600000
}]}`

func TestQuote(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Contains(t, r.URL.String(), "stockList=AKBNK")
		w.Write([]byte(quoteBody))
	}))
	defer srv.Close()

	s := New(testDeps(), srv.URL)
	q, err := s.Quote(context.Background(), "AKBNK")
	require.NoError(t, err)

	assert.Equal(t, "AKBNK", q.Symbol)
	assert.Equal(t, 57.25, q.Last)
	assert.Equal(t, 56.10, q.Open)
	assert.Equal(t, 1234567.89, q.Volume)
	assert.InDelta(t, 2.25, q.Change, 1e-9)
	assert.InDelta(t, 4.0909, q.ChangePercent, 1e-3)
	assert.False(t, q.Time.IsZero())
	assert.Equal(t, "isyatirim", q.Source)
}

func TestQuote_UnknownSymbol(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"value":[]}`))
	}))
	defer srv.Close()

	s := New(testDeps(), srv.URL)
	_, err := s.Quote(context.Background(), "ZZZZ")
	require.Error(t, err)
	assert.True(t, errors.Is(err, core.ErrTickerNotFound))

	var e *core.Error
	require.True(t, errors.As(err, &e))
	assert.Equal(t, "ZZZZ", e.Symbol)
}

func TestQuote_SecondCallHitsCache(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.Write([]byte(quoteBody))
	}))
	defer srv.Close()

	s := New(testDeps(), srv.URL)
	_, err := s.Quote(context.Background(), "AKBNK")
	require.NoError(t, err)
	_, err = s.Quote(context.Background(), "AKBNK")
	require.NoError(t, err)

	assert.Equal(t, 1, calls, "second quote must come from cache")
}

func TestHistory(t *testing.T) {
	// Rows deliberately out of order, one duplicate, one short row, one
	// outside the requested range, and string-typed numerics.
	body := `{"value":[
		[1767398400000, "57.00", "58.00", "56.50", "57.80", "1000"],
		[1767312000000, 56.00, 57.00, 55.50, 56.80, 900],
		[1767312000000, 56.10, 57.10, 55.60, 56.90, 950],
		[1767139200000],
		[1700000000000, 10, 11, 9, 10.5, 100]
	]}`
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Contains(t, r.URL.String(), "hisse=AKBNK")
		w.Write([]byte(body))
	}))
	defer srv.Close()

	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC)

	s := New(testDeps(), srv.URL)
	bars, err := s.History(context.Background(), "AKBNK", start, end, core.Interval1d)
	require.NoError(t, err)

	require.Len(t, bars, 2, "short row, duplicate and out-of-range row dropped")
	assert.True(t, bars[0].Time.Before(bars[1].Time), "bars sorted ascending")
	assert.Equal(t, 56.90, bars[0].Close, "duplicate resolved to last row")
	assert.Equal(t, 57.80, bars[1].Close)
	assert.Equal(t, float64(1000), bars[1].Volume)
}

func TestHistory_RangeIdempotence(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.Write([]byte(`{"value":[[1767312000000, 56.0, 57.0, 55.5, 56.8, 900]]}`))
	}))
	defer srv.Close()

	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC)

	s := New(testDeps(), srv.URL)
	first, err := s.History(context.Background(), "AKBNK", start, end, core.Interval1d)
	require.NoError(t, err)
	second, err := s.History(context.Background(), "AKBNK", start, end, core.Interval1d)
	require.NoError(t, err)

	assert.Equal(t, 1, calls, "identical resolved range must be served from cache")
	assert.Equal(t, first, second)
}

func TestHistory_EmptyIsTickerNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"value":[]}`))
	}))
	defer srv.Close()

	s := New(testDeps(), srv.URL)
	_, err := s.History(context.Background(), "ZZZZ", time.Now().AddDate(0, -1, 0), time.Now(), core.Interval1d)
	assert.True(t, errors.Is(err, core.ErrTickerNotFound))
}

func TestQuote_UpstreamFailurePropagates(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	s := New(testDeps(), srv.URL)
	_, err := s.Quote(context.Background(), "AKBNK")
	require.Error(t, err)
	assert.True(t, errors.Is(err, core.ErrAPI))
	assert.False(t, strings.Contains(err.Error(), "panic"))
}
