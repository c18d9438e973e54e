// Package doviz normalizes FX and precious-metal data scraped from a
// server-rendered currency site. The quote payload is JSON embedded in an
// escaped string inside the page markup, extracted with a regex anchored
// on known field literals. Any structural change upstream degrades to
// DataNotAvailable instead of crashing.
package doviz

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
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
	name           = "doviz"
	defaultBaseURL = "https://www.doviz.com"
)

var (
	// currencyPayload anchors on the "update_date" field literal so a
	// page without the embedded asset block fails extraction cleanly.
	currencyPayload = regexp.MustCompile(`\\?"asset\\?":(\{[^{}]*\\?"update_date\\?"[^{}]*\})`)
	bearerToken     = regexp.MustCompile(`\\?"token\\?":\\?"([A-Za-z0-9._-]+)\\?"`)
)

// Source fetches FX quotes from page markup and history from the JSON
// archive API behind a page-derived bearer token.
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

// Quote fetches the current rate for a pair such as USD-TRY or gram-altin.
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
	page, err := s.deps.HTTP.GetBytes(ctx, s.pageURL(symbol), nil)
	if err != nil {
		return nil, err
	}

	m := currencyPayload.FindSubmatch(page)
	if m == nil {
		s.log.Warn("embedded asset payload not found, page structure may have changed",
			zap.String("symbol", symbol))
		return nil, core.DataNotAvailable(fmt.Sprintf("no embedded payload in page for %s", symbol))
	}

	raw := strings.ReplaceAll(string(m[1]), `\"`, `"`)
	var a asset
	if err := json.Unmarshal([]byte(raw), &a); err != nil {
		return nil, core.DataNotAvailable(fmt.Sprintf("unparseable embedded payload for %s", symbol))
	}

	q := core.Quote{
		Symbol:    symbol,
		Last:      locale.Coerce(a.Selling, locale.StyleAPI),
		Open:      locale.Coerce(a.Open, locale.StyleAPI),
		High:      locale.Coerce(a.High, locale.StyleAPI),
		Low:       locale.Coerce(a.Low, locale.StyleAPI),
		PrevClose: locale.Coerce(a.Closing, locale.StyleAPI),
		Time:      locale.UnixSeconds(a.UpdateDate),
		Source:    name,
	}.WithDerivedChange()

	if q.Last == 0 {
		return nil, core.DataNotAvailable(fmt.Sprintf("zero rate in payload for %s", symbol))
	}
	return &q, nil
}

// History fetches archive bars via the JSON API. The API wants a bearer
// token that is re-derived from the page when the cached one is gone.
func (s *Source) History(ctx context.Context, symbol string, start, end time.Time, interval core.Interval) ([]core.Bar, error) {
	key := cache.Key(name, "history", symbol,
		start.UTC().Format(time.RFC3339), end.UTC().Format(time.RFC3339))
	if bars, ok := cache.Lookup[[]core.Bar](s.deps.Cache, key); ok {
		s.deps.Rec.CacheHit(name)
		return bars, nil
	}
	s.deps.Rec.CacheMiss(name)

	token, err := s.token(ctx, symbol)
	if err != nil {
		return nil, err
	}

	u := fmt.Sprintf("%s/api/v12/assets/%s/archive?start=%d&end=%d",
		s.baseURL, strings.ToLower(symbol), start.Unix(), end.Unix())

	started := time.Now()
	var resp archiveResponse
	err = s.deps.HTTP.GetJSON(ctx, u, map[string]string{"Authorization": "Bearer " + token}, &resp)
	s.deps.Rec.Fetch(name, "history", err, time.Since(started))
	if err != nil {
		return nil, err
	}
	if len(resp.Data) == 0 {
		return nil, core.DataNotAvailable(fmt.Sprintf("empty archive for %s", symbol))
	}

	bars := make([]core.Bar, 0, len(resp.Data))
	for _, row := range resp.Data {
		if row.UpdateDate == 0 {
			continue
		}
		bars = append(bars, core.Bar{
			Time:   locale.UnixSeconds(row.UpdateDate),
			Open:   locale.Coerce(row.Open, locale.StyleAPI),
			High:   locale.Coerce(row.High, locale.StyleAPI),
			Low:    locale.Coerce(row.Low, locale.StyleAPI),
			Close:  locale.Coerce(row.Close, locale.StyleAPI),
			Volume: locale.Coerce(row.Volume, locale.StyleAPI),
		})
	}

	bars = core.TrimBars(core.SortBars(bars), start, end)
	s.deps.Cache.Set(key, bars, s.deps.TTL.History)
	return bars, nil
}

// token extracts the short-lived bearer token from the page markup,
// cached with the realtime TTL.
func (s *Source) token(ctx context.Context, symbol string) (string, error) {
	key := cache.Key(name, "token")
	if tok, ok := cache.Lookup[string](s.deps.Cache, key); ok {
		s.deps.Rec.CacheHit(name)
		return tok, nil
	}
	s.deps.Rec.CacheMiss(name)

	page, err := s.deps.HTTP.GetBytes(ctx, s.pageURL(symbol), nil)
	if err != nil {
		return "", err
	}
	m := bearerToken.FindSubmatch(page)
	if m == nil {
		return "", core.AuthenticationError("bearer token not derivable from page")
	}

	tok := string(m[1])
	s.deps.Cache.Set(key, tok, s.deps.TTL.Realtime)
	return tok, nil
}

func (s *Source) pageURL(symbol string) string {
	// USD-TRY pages live under /kur, metals under their own slug.
	slug := strings.ToLower(strings.ReplaceAll(symbol, "-", ""))
	return fmt.Sprintf("%s/%s", s.baseURL, slug)
}

type asset struct {
	Code       string `json:"code"`
	Selling    any    `json:"selling"`
	Buying     any    `json:"buying"`
	Open       any    `json:"open"`
	High       any    `json:"highest"`
	Low        any    `json:"lowest"`
	Closing    any    `json:"closing"`
	UpdateDate int64  `json:"update_date"`
}

type archiveResponse struct {
	Data []archiveRow `json:"data"`
}

type archiveRow struct {
	UpdateDate int64 `json:"update_date"`
	Open       any   `json:"open"`
	High       any   `json:"highest"`
	Low        any   `json:"lowest"`
	Close      any   `json:"close"`
	Volume     any   `json:"volume"`
}
