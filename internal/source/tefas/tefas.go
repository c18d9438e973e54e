// Package tefas normalizes Turkish mutual-fund data from the TEFAS
// platform. Endpoints are form-encoded POSTs returning JSON whose dates
// are unix-millisecond strings and whose numerics are string-typed in the
// API convention.
package tefas

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
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
	name           = "tefas"
	defaultBaseURL = "https://www.tefas.gov.tr/api/DB"
)

// Fund is the canonical fund profile record.
type Fund struct {
	Code       string
	Name       string
	Price      float64
	Date       time.Time
	Investors  float64
	Shares     float64
	TotalValue float64
	// Performance windows, percent. Zero when upstream omits them.
	Return1M float64
	Return3M float64
	Return6M float64
	Return1Y float64
}

// AllocationSlice is one asset-class weight of a fund portfolio.
type AllocationSlice struct {
	Asset   string
	Percent float64
}

// FundSummary is one row of the comparison catalog used for search.
type FundSummary struct {
	Code     string
	Name     string
	Return1Y float64
}

// Source fetches fund profiles, history and the search catalog.
type Source struct {
	deps    source.Deps
	baseURL string
	log     *zap.Logger
}

// New creates the source; empty baseURL selects production.
func New(deps source.Deps, baseURL string) *Source {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &Source{deps: deps, baseURL: baseURL, log: logger.Named(deps.Log, name)}
}

func (s *Source) Name() string { return name }

// Fund fetches the most recent profile row for a fund code.
func (s *Source) Fund(ctx context.Context, code string) (*Fund, error) {
	key := cache.Key(name, "fund", code)
	if f, ok := cache.Lookup[*Fund](s.deps.Cache, key); ok {
		s.deps.Rec.CacheHit(name)
		return f, nil
	}
	s.deps.Rec.CacheMiss(name)

	end := time.Now()
	start := end.AddDate(0, 0, -7) // recent window; weekends and holidays have no rows

	started := time.Now()
	rows, err := s.fetchHistoryRows(ctx, code, start, end)
	s.deps.Rec.Fetch(name, "fund", err, time.Since(started))
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, core.TickerNotFound(code)
	}

	latest := rows[len(rows)-1]
	f := &Fund{
		Code:       code,
		Name:       latest.Title,
		Price:      locale.Number(latest.Price, locale.StyleAPI),
		Date:       locale.UnixMillis(locale.CoerceInt(latest.Date)),
		Investors:  locale.Number(latest.Investors, locale.StyleAPI),
		Shares:     locale.Number(latest.Shares, locale.StyleAPI),
		TotalValue: locale.Number(latest.TotalValue, locale.StyleAPI),
	}
	if perf, err := s.performance(ctx, code); err == nil {
		f.Return1M, f.Return3M, f.Return6M, f.Return1Y = perf[0], perf[1], perf[2], perf[3]
	}

	s.deps.Cache.Set(key, f, s.deps.TTL.Realtime)
	return f, nil
}

// Allocation fetches the fund's latest portfolio breakdown by asset
// class. The endpoint returns one row per (date, asset class); only the
// most recent date is kept.
func (s *Source) Allocation(ctx context.Context, code string) ([]AllocationSlice, error) {
	key := cache.Key(name, "allocation", code)
	if a, ok := cache.Lookup[[]AllocationSlice](s.deps.Cache, key); ok {
		s.deps.Rec.CacheHit(name)
		return a, nil
	}
	s.deps.Rec.CacheMiss(name)

	end := time.Now()
	start := end.AddDate(0, 0, -7)
	form := url.Values{
		"fontip":   {"YAT"},
		"fonkod":   {code},
		"bastarih": {locale.FormatDate(start)},
		"bittarih": {locale.FormatDate(end)},
	}

	started := time.Now()
	body, err := s.deps.HTTP.PostForm(ctx, s.baseURL+"/BindHistoryAllocation", form, nil)
	s.deps.Rec.Fetch(name, "allocation", err, time.Since(started))
	if err != nil {
		return nil, err
	}

	var resp allocationResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, core.APIError(0, "decoding fund allocation", err)
	}
	if len(resp.Data) == 0 {
		return nil, core.TickerNotFound(code)
	}

	var latest int64
	for _, row := range resp.Data {
		if ts := locale.CoerceInt(row.Date); ts > latest {
			latest = ts
		}
	}

	var out []AllocationSlice
	for _, row := range resp.Data {
		if locale.CoerceInt(row.Date) != latest || row.Asset == "" {
			continue
		}
		pct := locale.Number(row.Percent, locale.StyleAPI)
		if pct == 0 {
			continue
		}
		out = append(out, AllocationSlice{Asset: row.Asset, Percent: pct})
	}
	if len(out) == 0 {
		return nil, core.DataNotAvailable(fmt.Sprintf("no allocation rows for fund %s", code))
	}

	s.deps.Cache.Set(key, out, s.deps.TTL.Realtime)
	return out, nil
}

// History fetches fund price bars for [start, end]. Funds price once a
// day, so bars carry the close only.
func (s *Source) History(ctx context.Context, code string, start, end time.Time, _ core.Interval) ([]core.Bar, error) {
	key := cache.Key(name, "history", code,
		start.UTC().Format(time.RFC3339), end.UTC().Format(time.RFC3339))
	if bars, ok := cache.Lookup[[]core.Bar](s.deps.Cache, key); ok {
		s.deps.Rec.CacheHit(name)
		return bars, nil
	}
	s.deps.Rec.CacheMiss(name)

	started := time.Now()
	rows, err := s.fetchHistoryRows(ctx, code, start, end)
	s.deps.Rec.Fetch(name, "history", err, time.Since(started))
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, core.DataNotAvailable(fmt.Sprintf("no price rows for fund %s", code))
	}

	bars := make([]core.Bar, 0, len(rows))
	for _, row := range rows {
		price := locale.Number(row.Price, locale.StyleAPI)
		if price == 0 {
			continue
		}
		bars = append(bars, core.Bar{
			Time:  locale.UnixMillis(locale.CoerceInt(row.Date)),
			Close: price,
		})
	}

	bars = core.TrimBars(core.SortBars(bars), start, end)
	s.deps.Cache.Set(key, bars, s.deps.TTL.History)
	return bars, nil
}

func (s *Source) fetchHistoryRows(ctx context.Context, code string, start, end time.Time) ([]historyRow, error) {
	form := url.Values{
		"fontip":   {"YAT"},
		"fonkod":   {code},
		"bastarih": {locale.FormatDate(start)},
		"bittarih": {locale.FormatDate(end)},
	}
	body, err := s.deps.HTTP.PostForm(ctx, s.baseURL+"/BindHistoryInfo", form, nil)
	if err != nil {
		return nil, err
	}
	var resp historyResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, core.APIError(0, "decoding fund history", err)
	}
	return resp.Data, nil
}

// performance returns the 1/3/6/12-month windows from the comparison
// catalog row for the fund. Missing catalog data degrades to zeros.
func (s *Source) performance(ctx context.Context, code string) ([4]float64, error) {
	var out [4]float64
	catalog, err := s.catalog(ctx)
	if err != nil {
		return out, err
	}
	for _, row := range catalog {
		if row.Code == code {
			out = [4]float64{row.ret1m, row.ret3m, row.ret6m, row.Return1Y}
			return out, nil
		}
	}
	return out, fmt.Errorf("fund %s not in catalog", code)
}

// Search filters the cached fund catalog by code or name substring. This
// is a best-effort discovery operation: any upstream failure degrades to
// an empty result rather than an error.
func (s *Source) Search(ctx context.Context, query string) []FundSummary {
	catalog, err := s.catalog(ctx)
	if err != nil {
		s.log.Warn("fund catalog unavailable, search degrades to empty", zap.Error(err))
		return nil
	}

	q := strings.ToUpper(strings.TrimSpace(query))
	if q == "" {
		return nil
	}
	var out []FundSummary
	for _, row := range catalog {
		if strings.Contains(strings.ToUpper(row.Code), q) ||
			strings.Contains(strings.ToUpper(row.Name), q) {
			out = append(out, FundSummary{Code: row.Code, Name: row.Name, Return1Y: row.Return1Y})
		}
	}
	return out
}

// catalog fetches the full comparison list, cached with the reference TTL
// since the fund universe changes rarely.
func (s *Source) catalog(ctx context.Context) ([]catalogRow, error) {
	key := cache.Key(name, "catalog")
	if rows, ok := cache.Lookup[[]catalogRow](s.deps.Cache, key); ok {
		s.deps.Rec.CacheHit(name)
		return rows, nil
	}
	s.deps.Rec.CacheMiss(name)

	form := url.Values{"fontip": {"YAT"}}
	started := time.Now()
	body, err := s.deps.HTTP.PostForm(ctx, s.baseURL+"/BindComparisonFundReturns", form, nil)
	s.deps.Rec.Fetch(name, "catalog", err, time.Since(started))
	if err != nil {
		return nil, err
	}

	var resp catalogResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, core.APIError(0, "decoding fund catalog", err)
	}

	rows := make([]catalogRow, 0, len(resp.Data))
	for _, r := range resp.Data {
		rows = append(rows, catalogRow{
			Code:     r.Code,
			Name:     r.Name,
			ret1m:    locale.Number(r.Return1M, locale.StyleAPI),
			ret3m:    locale.Number(r.Return3M, locale.StyleAPI),
			ret6m:    locale.Number(r.Return6M, locale.StyleAPI),
			Return1Y: locale.Number(r.Return1Y, locale.StyleAPI),
		})
	}
	s.deps.Cache.Set(key, rows, s.deps.TTL.Reference)
	return rows, nil
}

type allocationResponse struct {
	Data []allocationRow `json:"data"`
}

type allocationRow struct {
	Date    any    `json:"TARIH"`
	Asset   string `json:"VARLIKTUR"`
	Percent string `json:"PORTFOYORANI"`
}

type historyResponse struct {
	Data []historyRow `json:"data"`
}

type historyRow struct {
	Date       any    `json:"TARIH"`
	Code       string `json:"FONKODU"`
	Title      string `json:"FONUNVAN"`
	Price      string `json:"FIYAT"`
	Shares     string `json:"TEDPAYSAYISI"`
	Investors  string `json:"KISISAYISI"`
	TotalValue string `json:"PORTFOYBUYUKLUK"`
}

type catalogResponse struct {
	Data []catalogJSONRow `json:"data"`
}

type catalogJSONRow struct {
	Code     string `json:"FONKODU"`
	Name     string `json:"FONUNVAN"`
	Return1M string `json:"GETIRI1A"`
	Return3M string `json:"GETIRI3A"`
	Return6M string `json:"GETIRI6A"`
	Return1Y string `json:"GETIRI1Y"`
}

type catalogRow struct {
	Code     string
	Name     string
	ret1m    float64
	ret3m    float64
	ret6m    float64
	Return1Y float64
}
