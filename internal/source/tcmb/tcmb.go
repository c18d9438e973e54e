// Package tcmb computes inflation adjustments from the central bank's
// consumer price index series. Months are "YYYY-MM"; index values arrive
// as strings in the API convention.
package tcmb

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/goborsa/borsa/internal/cache"
	"github.com/goborsa/borsa/internal/core"
	"github.com/goborsa/borsa/internal/locale"
	"github.com/goborsa/borsa/internal/logger"
	"github.com/goborsa/borsa/internal/source"
)

const (
	name           = "tcmb"
	defaultBaseURL = "https://evds2.tcmb.gov.tr/service/evds"
)

// Result is one inflation calculation.
type Result struct {
	Amount        float64
	Adjusted      float64
	PercentChange float64
	StartMonth    string
	EndMonth      string
	StartIndex    float64
	EndIndex      float64
}

// Source fetches the CPI series and computes adjustments over it.
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

// Calculate answers "what is amount from startMonth worth in endMonth
// money". Months are "YYYY-MM". The computation itself is local; only the
// index series is fetched, cached with the computed TTL.
func (s *Source) Calculate(ctx context.Context, amount float64, startMonth, endMonth string) (*Result, error) {
	if _, err := time.Parse("2006-01", startMonth); err != nil {
		return nil, core.DataNotAvailable(fmt.Sprintf("unrecognized month %q", startMonth))
	}
	if _, err := time.Parse("2006-01", endMonth); err != nil {
		return nil, core.DataNotAvailable(fmt.Sprintf("unrecognized month %q", endMonth))
	}

	series, err := s.series(ctx)
	if err != nil {
		return nil, err
	}

	startIdx, ok := series[startMonth]
	if !ok || startIdx == 0 {
		return nil, core.DataNotAvailable(fmt.Sprintf("no index value for %s", startMonth))
	}
	endIdx, ok := series[endMonth]
	if !ok || endIdx == 0 {
		return nil, core.DataNotAvailable(fmt.Sprintf("no index value for %s", endMonth))
	}

	ratio := endIdx / startIdx
	return &Result{
		Amount:        amount,
		Adjusted:      amount * ratio,
		PercentChange: (ratio - 1) * 100,
		StartMonth:    startMonth,
		EndMonth:      endMonth,
		StartIndex:    startIdx,
		EndIndex:      endIdx,
	}, nil
}

// series fetches the full CPI index keyed by month.
func (s *Source) series(ctx context.Context) (map[string]float64, error) {
	key := cache.Key(name, "cpi")
	if m, ok := cache.Lookup[map[string]float64](s.deps.Cache, key); ok {
		s.deps.Rec.CacheHit(name)
		return m, nil
	}
	s.deps.Rec.CacheMiss(name)

	u := s.baseURL + "/series=TP.FG.J0&type=json"

	started := time.Now()
	var resp seriesResponse
	err := s.deps.HTTP.GetJSON(ctx, u, nil, &resp)
	s.deps.Rec.Fetch(name, "cpi", err, time.Since(started))
	if err != nil {
		return nil, err
	}
	if len(resp.Items) == 0 {
		return nil, core.DataNotAvailable("empty cpi series")
	}

	m := make(map[string]float64, len(resp.Items))
	for _, item := range resp.Items {
		v := locale.Number(item.Value, locale.StyleAPI)
		if v == 0 {
			continue
		}
		m[item.Month] = v
	}
	if len(m) == 0 {
		return nil, core.DataNotAvailable("cpi series contained no usable values")
	}

	s.deps.Cache.Set(key, m, s.deps.TTL.Computed)
	return m, nil
}

type seriesResponse struct {
	Items []seriesItem `json:"items"`
}

type seriesItem struct {
	Month string `json:"Tarih"`
	Value string `json:"TP_FG_J0"`
}
