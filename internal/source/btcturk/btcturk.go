// Package btcturk normalizes crypto pair data from the BtcTurk public
// REST API. This upstream is the friendly one: proper JSON numerics and a
// documented kline endpoint, though fields still go through coercion
// since types have drifted between API versions.
package btcturk

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/goborsa/borsa/internal/cache"
	"github.com/goborsa/borsa/internal/core"
	"github.com/goborsa/borsa/internal/locale"
	"github.com/goborsa/borsa/internal/logger"
	"github.com/goborsa/borsa/internal/source"
)

const (
	name            = "btcturk"
	defaultBaseURL  = "https://api.btcturk.com"
	defaultGraphURL = "https://graph-api.btcturk.com"
)

// Pair is one tradable pair from the exchange catalog.
type Pair struct {
	Symbol      string
	Numerator   string
	Denominator string
}

// Source fetches crypto quotes, klines and the pair catalog.
type Source struct {
	deps     source.Deps
	baseURL  string
	graphURL string
	log      *zap.Logger
}

// New creates the source. Empty URLs select production endpoints.
func New(deps source.Deps, baseURL, graphURL string) *Source {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	if graphURL == "" {
		graphURL = defaultGraphURL
	}
	return &Source{deps: deps, baseURL: baseURL, graphURL: graphURL, log: logger.Named(deps.Log, name)}
}

func (s *Source) Name() string { return name }

// Quote fetches the 24h ticker for a pair such as BTCTRY.
func (s *Source) Quote(ctx context.Context, symbol string) (*core.Quote, error) {
	key := cache.Key(name, "quote", symbol)
	if q, ok := cache.Lookup[*core.Quote](s.deps.Cache, key); ok {
		s.deps.Rec.CacheHit(name)
		return q, nil
	}
	s.deps.Rec.CacheMiss(name)

	u := fmt.Sprintf("%s/api/v2/ticker?pairSymbol=%s", s.baseURL, symbol)

	started := time.Now()
	var resp tickerResponse
	err := s.deps.HTTP.GetJSON(ctx, u, nil, &resp)
	s.deps.Rec.Fetch(name, "quote", err, time.Since(started))
	if err != nil {
		return nil, err
	}
	if len(resp.Data) == 0 {
		return nil, core.TickerNotFound(symbol)
	}

	row := resp.Data[0]
	q := core.Quote{
		Symbol:        symbol,
		Last:          locale.Coerce(row.Last, locale.StyleAPI),
		Open:          locale.Coerce(row.Open, locale.StyleAPI),
		High:          locale.Coerce(row.High, locale.StyleAPI),
		Low:           locale.Coerce(row.Low, locale.StyleAPI),
		Volume:        locale.Coerce(row.Volume, locale.StyleAPI),
		Change:        locale.Coerce(row.Daily, locale.StyleAPI),
		ChangePercent: locale.Coerce(row.DailyPercent, locale.StyleAPI),
		Time:          locale.UnixMillis(row.Timestamp),
		Source:        name,
	}
	// The ticker reports yesterday's close only implicitly.
	q.PrevClose = q.Last - q.Change

	if q.Last == 0 {
		return nil, core.DataNotAvailable(fmt.Sprintf("zero ticker for %s", symbol))
	}
	s.deps.Cache.Set(key, &q, s.deps.TTL.Realtime)
	return &q, nil
}

// History fetches klines for [start, end] from the graph API, which
// speaks unix seconds and columnar arrays.
func (s *Source) History(ctx context.Context, symbol string, start, end time.Time, interval core.Interval) ([]core.Bar, error) {
	key := cache.Key(name, "history", symbol,
		start.UTC().Format(time.RFC3339), end.UTC().Format(time.RFC3339), string(interval))
	if bars, ok := cache.Lookup[[]core.Bar](s.deps.Cache, key); ok {
		s.deps.Rec.CacheHit(name)
		return bars, nil
	}
	s.deps.Rec.CacheMiss(name)

	u := fmt.Sprintf("%s/v1/klines/history?symbol=%s&resolution=%s&from=%d&to=%d",
		s.graphURL, symbol, s.resolution(interval), start.Unix(), end.Unix())

	started := time.Now()
	var resp klineResponse
	err := s.deps.HTTP.GetJSON(ctx, u, nil, &resp)
	s.deps.Rec.Fetch(name, "history", err, time.Since(started))
	if err != nil {
		return nil, err
	}
	if resp.Status == "no_data" || len(resp.Times) == 0 {
		return nil, core.DataNotAvailable(fmt.Sprintf("no klines for %s", symbol))
	}
	if resp.Status != "ok" {
		return nil, core.APIError(0, fmt.Sprintf("kline status %q", resp.Status), nil)
	}

	bars := make([]core.Bar, 0, len(resp.Times))
	for i, ts := range resp.Times {
		bar := core.Bar{Time: locale.UnixSeconds(ts)}
		if i < len(resp.Open) {
			bar.Open = locale.Coerce(resp.Open[i], locale.StyleAPI)
		}
		if i < len(resp.High) {
			bar.High = locale.Coerce(resp.High[i], locale.StyleAPI)
		}
		if i < len(resp.Low) {
			bar.Low = locale.Coerce(resp.Low[i], locale.StyleAPI)
		}
		if i < len(resp.Close) {
			bar.Close = locale.Coerce(resp.Close[i], locale.StyleAPI)
		}
		if i < len(resp.Volume) {
			bar.Volume = locale.Coerce(resp.Volume[i], locale.StyleAPI)
		}
		bars = append(bars, bar)
	}

	bars = core.TrimBars(core.SortBars(bars), start, end)
	s.deps.Cache.Set(key, bars, s.deps.TTL.History)
	return bars, nil
}

// Pairs returns the exchange pair catalog, cached with the reference TTL.
func (s *Source) Pairs(ctx context.Context) ([]Pair, error) {
	key := cache.Key(name, "pairs")
	if pairs, ok := cache.Lookup[[]Pair](s.deps.Cache, key); ok {
		s.deps.Rec.CacheHit(name)
		return pairs, nil
	}
	s.deps.Rec.CacheMiss(name)

	u := s.baseURL + "/api/v2/server/exchangeinfo"

	started := time.Now()
	var resp exchangeInfoResponse
	err := s.deps.HTTP.GetJSON(ctx, u, nil, &resp)
	s.deps.Rec.Fetch(name, "pairs", err, time.Since(started))
	if err != nil {
		return nil, err
	}

	pairs := make([]Pair, 0, len(resp.Data.Symbols))
	for _, sym := range resp.Data.Symbols {
		pairs = append(pairs, Pair{
			Symbol:      sym.Name,
			Numerator:   sym.Numerator,
			Denominator: sym.Denominator,
		})
	}
	s.deps.Cache.Set(key, pairs, s.deps.TTL.Reference)
	return pairs, nil
}

// SearchPairs filters the cached catalog by substring. Best-effort: an
// upstream failure yields an empty list, never an error.
func (s *Source) SearchPairs(ctx context.Context, query string) []Pair {
	pairs, err := s.Pairs(ctx)
	if err != nil {
		s.log.Warn("pair catalog unavailable, search degrades to empty", zap.Error(err))
		return nil
	}
	q := strings.ToUpper(strings.TrimSpace(query))
	if q == "" {
		return nil
	}
	var out []Pair
	for _, p := range pairs {
		if strings.Contains(p.Symbol, q) || strings.Contains(p.Numerator, q) {
			out = append(out, p)
		}
	}
	return out
}

func (s *Source) resolution(interval core.Interval) string {
	switch interval {
	case core.Interval1m:
		return "1"
	case core.Interval5m:
		return "5"
	case core.Interval15m:
		return "15"
	case core.Interval30m:
		return "30"
	case core.Interval1h:
		return "60"
	case core.Interval1wk:
		return "1W"
	case core.Interval1mo:
		return "1M"
	default:
		return "1D"
	}
}

type tickerResponse struct {
	Success bool        `json:"success"`
	Data    []tickerRow `json:"data"`
}

type tickerRow struct {
	Pair         string `json:"pair"`
	Last         any    `json:"last"`
	Open         any    `json:"open"`
	High         any    `json:"high"`
	Low          any    `json:"low"`
	Daily        any    `json:"daily"`
	DailyPercent any    `json:"dailyPercent"`
	Volume       any    `json:"volume"`
	Timestamp    int64  `json:"timestamp"`
}

type klineResponse struct {
	Status string  `json:"s"`
	Times  []int64 `json:"t"`
	Open   []any   `json:"o"`
	High   []any   `json:"h"`
	Low    []any   `json:"l"`
	Close  []any   `json:"c"`
	Volume []any   `json:"v"`
}

type exchangeInfoResponse struct {
	Data struct {
		Symbols []struct {
			Name        string `json:"name"`
			Numerator   string `json:"numerator"`
			Denominator string `json:"denominator"`
		} `json:"symbols"`
	} `json:"data"`
}
