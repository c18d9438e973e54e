package btcturk

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
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

const tickerBody = `{"success":true,"data":[{
	"pair":"BTCTRY","last":2450000.5,"open":2400000,"high":"2475000",
	"low":2380000,"daily":50000.5,"dailyPercent":2.08,"volume":"123.456",
	"timestamp":1767225600000
}]}`

func TestQuote(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "BTCTRY", r.URL.Query().Get("pairSymbol"))
		w.Write([]byte(tickerBody))
	}))
	defer srv.Close()

	s := New(testDeps(), srv.URL, srv.URL)
	q, err := s.Quote(context.Background(), "BTCTRY")
	require.NoError(t, err)

	assert.Equal(t, 2450000.5, q.Last)
	assert.Equal(t, 2475000.0, q.High, "string-typed numeric coerced")
	assert.Equal(t, 123.456, q.Volume)
	assert.Equal(t, 50000.5, q.Change)
	assert.InDelta(t, 2400000.0, q.PrevClose, 1e-9)
}

func TestQuote_UnknownPair(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"success":true,"data":[]}`))
	}))
	defer srv.Close()

	s := New(testDeps(), srv.URL, srv.URL)
	_, err := s.Quote(context.Background(), "ZZZTRY")
	assert.True(t, errors.Is(err, core.ErrTickerNotFound))
}

func TestHistory(t *testing.T) {
	body := `{"s":"ok",
		"t":[1767312000,1767225600],
		"o":[100,90],"h":[110,95],"l":[95,85],"c":["105","92"],"v":[10,12]}`
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "1D", r.URL.Query().Get("resolution"))
		w.Write([]byte(body))
	}))
	defer srv.Close()

	start := time.Unix(1767139200, 0)
	end := time.Unix(1767398400, 0)

	s := New(testDeps(), srv.URL, srv.URL)
	bars, err := s.History(context.Background(), "BTCTRY", start, end, core.Interval1d)
	require.NoError(t, err)

	require.Len(t, bars, 2)
	assert.True(t, bars[0].Time.Before(bars[1].Time))
	assert.Equal(t, 92.0, bars[0].Close, "string close coerced")
	assert.Equal(t, 105.0, bars[1].Close)
}

func TestHistory_NoData(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"s":"no_data"}`))
	}))
	defer srv.Close()

	s := New(testDeps(), srv.URL, srv.URL)
	_, err := s.History(context.Background(), "BTCTRY", time.Now().AddDate(0, 0, -7), time.Now(), core.Interval1d)
	assert.True(t, errors.Is(err, core.ErrDataNotAvailable))
}

func TestSearchPairs(t *testing.T) {
	body := `{"data":{"symbols":[
		{"name":"BTCTRY","numerator":"BTC","denominator":"TRY"},
		{"name":"ETHTRY","numerator":"ETH","denominator":"TRY"},
		{"name":"BTCUSDT","numerator":"BTC","denominator":"USDT"}
	]}}`
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.Write([]byte(body))
	}))
	defer srv.Close()

	s := New(testDeps(), srv.URL, srv.URL)
	btc := s.SearchPairs(context.Background(), "btc")
	assert.Len(t, btc, 2)

	eth := s.SearchPairs(context.Background(), "ETH")
	assert.Len(t, eth, 1)

	assert.Equal(t, 1, calls, "catalog cached between searches")
}

func TestSearchPairs_DegradesToEmpty(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	s := New(testDeps(), srv.URL, srv.URL)
	assert.Empty(t, s.SearchPairs(context.Background(), "btc"))
}
