// Package isyatirim normalizes BIST equity data from the İş Yatırım JSON
// endpoints. Numeric fields arrive as strings in the API convention
// (comma thousands, dot decimal); history rows are positional tuples with
// unix-millisecond timestamps.
package isyatirim

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"go.uber.org/zap"

	"github.com/goborsa/borsa/internal/cache"
	"github.com/goborsa/borsa/internal/core"
	"github.com/goborsa/borsa/internal/locale"
	"github.com/goborsa/borsa/internal/logger"
	"github.com/goborsa/borsa/internal/source"
)

const (
	name           = "isyatirim"
	defaultBaseURL = "https://www.isyatirim.com.tr/_layouts/15/IsYatirim.Website/Common/Data.aspx"
)

// Source fetches BIST equity quotes and history.
type Source struct {
	deps    source.Deps
	baseURL string
	log     *zap.Logger
}

// New creates the source. baseURL overrides the production endpoint;
// empty means default.
func New(deps source.Deps, baseURL string) *Source {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &Source{deps: deps, baseURL: baseURL, log: logger.Named(deps.Log, name)}
}

func (s *Source) Name() string { return name }

// Quote fetches the current snapshot for a BIST symbol.
func (s *Source) Quote(ctx context.Context, symbol string) (*core.Quote, error) {
	key := cache.Key(name, "quote", symbol)
	if q, ok := cache.Lookup[*core.Quote](s.deps.Cache, key); ok {
		s.deps.Rec.CacheHit(name)
		return q, nil
	}
	s.deps.Rec.CacheMiss(name)

	started := time.Now()
	q, err := s.fetchQuote(ctx, symbol)
	s.deps.Rec.Fetch(name, "quote", err, time.Since(started))
	if err != nil {
		return nil, err
	}

	s.deps.Cache.Set(key, q, s.deps.TTL.Realtime)
	return q, nil
}

func (s *Source) fetchQuote(ctx context.Context, symbol string) (*core.Quote, error) {
	u := fmt.Sprintf("%s/StockInfoLiveAll?stockList=%s", s.baseURL, url.QueryEscape(symbol))

	var resp quoteResponse
	if err := s.deps.HTTP.GetJSON(ctx, u, nil, &resp); err != nil {
		return nil, err
	}
	if len(resp.Value) == 0 {
		return nil, core.TickerNotFound(symbol)
	}

	row := resp.Value[0]
	q := core.Quote{
		Symbol:    symbol,
		Last:      locale.Number(row.Last, locale.StyleAPI),
		Open:      locale.Number(row.Open, locale.StyleAPI),
		High:      locale.Number(row.High, locale.StyleAPI),
		Low:       locale.Number(row.Low, locale.StyleAPI),
		PrevClose: locale.Number(row.PrevClose, locale.StyleAPI),
		Volume:    locale.Number(row.Volume, locale.StyleAPI),
		Time:      locale.UnixMillis(row.UpdateTime),
		Source:    name,
	}.WithDerivedChange()

	if q.Last == 0 {
		return nil, core.DataNotAvailable(fmt.Sprintf("empty quote row for %s", symbol))
	}
	return &q, nil
}

// History fetches daily bars for [start, end]. The upstream takes
// DD.MM.YYYY bounds but occasionally returns rows outside them, so the
// result is trimmed here.
func (s *Source) History(ctx context.Context, symbol string, start, end time.Time, interval core.Interval) ([]core.Bar, error) {
	key := cache.Key(name, "history", symbol,
		start.UTC().Format(time.RFC3339), end.UTC().Format(time.RFC3339), string(interval))
	if bars, ok := cache.Lookup[[]core.Bar](s.deps.Cache, key); ok {
		s.deps.Rec.CacheHit(name)
		return bars, nil
	}
	s.deps.Rec.CacheMiss(name)

	started := time.Now()
	bars, err := s.fetchHistory(ctx, symbol, start, end)
	s.deps.Rec.Fetch(name, "history", err, time.Since(started))
	if err != nil {
		return nil, err
	}

	bars = core.TrimBars(core.SortBars(bars), start, end)
	s.deps.Cache.Set(key, bars, s.deps.TTL.History)
	return bars, nil
}

func (s *Source) fetchHistory(ctx context.Context, symbol string, start, end time.Time) ([]core.Bar, error) {
	u := fmt.Sprintf("%s/HisseTekil?hisse=%s&startdate=%s&enddate=%s",
		s.baseURL, url.QueryEscape(symbol), locale.FormatDate(start), locale.FormatDate(end))

	var resp historyResponse
	if err := s.deps.HTTP.GetJSON(ctx, u, nil, &resp); err != nil {
		return nil, err
	}
	if len(resp.Value) == 0 {
		return nil, core.TickerNotFound(symbol)
	}

	bars := make([]core.Bar, 0, len(resp.Value))
	for _, row := range resp.Value {
		// Row layout: [millis, open, high, low, close, volume]. Short
		// rows are tolerated and skipped.
		if len(row) < 5 {
			s.log.Debug("skipping short history row", zap.Int("cells", len(row)))
			continue
		}
		ts, ok := row[0].(float64)
		if !ok {
			ts = locale.Coerce(row[0], locale.StyleAPI)
		}
		if ts == 0 {
			continue
		}
		bar := core.Bar{
			Time:  locale.UnixMillis(int64(ts)),
			Open:  locale.Coerce(row[1], locale.StyleAPI),
			High:  locale.Coerce(row[2], locale.StyleAPI),
			Low:   locale.Coerce(row[3], locale.StyleAPI),
			Close: locale.Coerce(row[4], locale.StyleAPI),
		}
		if len(row) > 5 {
			bar.Volume = locale.Coerce(row[5], locale.StyleAPI)
		}
		bars = append(bars, bar)
	}
	if len(bars) == 0 {
		return nil, core.DataNotAvailable(fmt.Sprintf("no usable history rows for %s", symbol))
	}
	return bars, nil
}

type quoteResponse struct {
	Value []quoteRow `json:"value"`
}

type quoteRow struct {
	Symbol     string `json:"HG_HS_KOD"`
	Last       string `json:"HG_KAPANIS"`
	Open       string `json:"HG_ACILIS"`
	High       string `json:"HG_YUKSEK"`
	Low        string `json:"HG_DUSUK"`
	PrevClose  string `json:"HG_DUNKAPANIS"`
	Volume     string `json:"HG_HACIM"`
	UpdateTime int64  `json:"HG_TARIH"`
}

type historyResponse struct {
	Value [][]any `json:"value"`
}
