// Package tradingview streams quotes and OHLCV history over the charting
// WebSocket protocol. Each call opens one socket with fresh randomized
// session IDs, drives the handshake, and closes the socket on every exit
// path. Quotes require a complete snapshot; history tolerates partial
// delivery when the timeout fires.
package tradingview

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/goborsa/borsa/internal/cache"
	"github.com/goborsa/borsa/internal/config"
	"github.com/goborsa/borsa/internal/core"
	"github.com/goborsa/borsa/internal/locale"
	"github.com/goborsa/borsa/internal/logger"
	"github.com/goborsa/borsa/internal/source"
	"github.com/goborsa/borsa/internal/stream"
)

const (
	name         = "tradingview"
	defaultWSURL = "wss://data.tradingview.com/socket.io/websocket"
	authToken    = "unauthorized_user_token"

	defaultExchange = "BIST"
)

var quoteFields = []any{
	"lp", "ch", "chp", "open_price", "high_price", "low_price",
	"prev_close_price", "volume", "lp_time",
}

var resolutions = map[core.Interval]string{
	core.Interval1m:  "1",
	core.Interval5m:  "5",
	core.Interval15m: "15",
	core.Interval30m: "30",
	core.Interval1h:  "60",
	core.Interval1d:  "D",
	core.Interval1wk: "W",
	core.Interval1mo: "M",
}

var intervalSpans = map[core.Interval]time.Duration{
	core.Interval1m:  time.Minute,
	core.Interval5m:  5 * time.Minute,
	core.Interval15m: 15 * time.Minute,
	core.Interval30m: 30 * time.Minute,
	core.Interval1h:  time.Hour,
	core.Interval1d:  24 * time.Hour,
	core.Interval1wk: 7 * 24 * time.Hour,
	core.Interval1mo: 30 * 24 * time.Hour,
}

// Source drives the streaming protocol for one-shot requests.
type Source struct {
	deps  source.Deps
	wsURL string
	cfg   config.StreamConfig
	log   *zap.Logger
}

// New creates the source; empty wsURL selects production.
func New(deps source.Deps, wsURL string, cfg config.StreamConfig) *Source {
	if wsURL == "" {
		wsURL = defaultWSURL
	}
	return &Source{deps: deps, wsURL: wsURL, cfg: cfg, log: logger.Named(deps.Log, name)}
}

func (s *Source) Name() string { return name }

// fullSymbol qualifies bare tickers with the default exchange.
func fullSymbol(symbol string) string {
	if strings.Contains(symbol, ":") {
		return symbol
	}
	return defaultExchange + ":" + symbol
}

// Quote streams field patches for one symbol and resolves once the last
// price has been seen and updates have settled. A timeout without a last
// price is an upstream failure, never a partial quote.
func (s *Source) Quote(ctx context.Context, symbol string) (*core.Quote, error) {
	symbol = core.NormalizeSymbol(symbol)
	key := cache.Key(name, "quote", symbol)
	if q, ok := cache.Lookup[*core.Quote](s.deps.Cache, key); ok {
		s.deps.Rec.CacheHit(name)
		return q, nil
	}
	s.deps.Rec.CacheMiss(name)

	started := time.Now()
	q, err := s.streamQuote(ctx, symbol)
	s.deps.Rec.Fetch(name, "quote", err, time.Since(started))
	if err != nil {
		return nil, err
	}

	s.deps.Cache.Set(key, q, s.deps.TTL.Realtime)
	return q, nil
}

func (s *Source) streamQuote(ctx context.Context, symbol string) (*core.Quote, error) {
	sess, err := stream.Dial(ctx, s.wsURL, s.cfg.Origin, s.log)
	if err != nil {
		return nil, core.APIError(0, "stream dial failed", err)
	}
	defer sess.Close()

	qs := stream.SessionID("qs")
	if err := sendAll(sess,
		call{"set_auth_token", []any{authToken}},
		call{"quote_create_session", []any{qs}},
		call{"quote_set_fields", append([]any{qs}, quoteFields...)},
		call{"quote_add_symbols", []any{qs, fullSymbol(symbol)}},
	); err != nil {
		return nil, core.APIError(0, "stream send failed", err)
	}

	timeout := time.NewTimer(s.cfg.Timeout)
	defer timeout.Stop()

	// The settle timer starts once the last price arrives, absorbing the
	// burst of follow-up patches before the snapshot is frozen.
	var settle *time.Timer
	var settleC <-chan time.Time
	defer func() {
		if settle != nil {
			settle.Stop()
		}
	}()

	var snap quoteValues
	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-timeout.C:
			return nil, core.APIError(0,
				fmt.Sprintf("no quote for %s within %s", symbol, s.cfg.Timeout), nil)
		case <-settleC:
			return snap.quote(symbol), nil
		case p, ok := <-sess.Packets():
			if !ok {
				return nil, core.APIError(0, "stream closed before quote completed", sess.Err())
			}
			switch p.Method {
			case "qsd":
				if len(p.Params) < 2 {
					continue
				}
				var upd quoteUpdate
				if err := json.Unmarshal(p.Params[1], &upd); err != nil {
					s.log.Debug("unparseable quote patch", zap.Error(err))
					continue
				}
				if upd.Status == "error" {
					return nil, core.TickerNotFound(symbol)
				}
				snap.merge(upd.Values)
				if snap.Last != nil && settleC == nil {
					settle = time.NewTimer(s.cfg.SettleDelay)
					settleC = settle.C
				}
			case "critical_error", "protocol_error":
				return nil, core.APIError(0, "stream error: "+rawParams(p), nil)
			}
		}
	}
}

// History streams bars for the range. On timeout, whatever bars arrived
// resolve successfully; only an empty stream is an error.
func (s *Source) History(ctx context.Context, symbol string, start, end time.Time, interval core.Interval) ([]core.Bar, error) {
	symbol = core.NormalizeSymbol(symbol)
	key := cache.Key(name, "history", symbol,
		start.UTC().Format(time.RFC3339), end.UTC().Format(time.RFC3339), string(interval))
	if bars, ok := cache.Lookup[[]core.Bar](s.deps.Cache, key); ok {
		s.deps.Rec.CacheHit(name)
		return bars, nil
	}
	s.deps.Rec.CacheMiss(name)

	started := time.Now()
	bars, err := s.streamBars(ctx, symbol, start, end, interval)
	s.deps.Rec.Fetch(name, "history", err, time.Since(started))
	if err != nil {
		return nil, err
	}

	s.deps.Cache.Set(key, bars, s.deps.TTL.History)
	return bars, nil
}

func (s *Source) streamBars(ctx context.Context, symbol string, start, end time.Time, interval core.Interval) ([]core.Bar, error) {
	resolution, ok := resolutions[interval]
	if !ok {
		return nil, core.InvalidInterval(string(interval))
	}

	sess, err := stream.Dial(ctx, s.wsURL, s.cfg.Origin, s.log)
	if err != nil {
		return nil, core.APIError(0, "stream dial failed", err)
	}
	defer sess.Close()

	cs := stream.SessionID("cs")
	if err := sendAll(sess,
		call{"set_auth_token", []any{authToken}},
		call{"chart_create_session", []any{cs, ""}},
		call{"resolve_symbol", []any{cs, "sds_sym_1", fullSymbol(symbol)}},
		call{"create_series", []any{cs, "sds_1", "s1", "sds_sym_1", resolution, barCount(start, end, interval)}},
	); err != nil {
		return nil, core.APIError(0, "stream send failed", err)
	}

	timeout := time.NewTimer(s.cfg.Timeout)
	defer timeout.Stop()

	acc := make(map[int64]core.Bar)
	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-timeout.C:
			if len(acc) == 0 {
				return nil, core.APIError(0,
					fmt.Sprintf("no history for %s within %s", symbol, s.cfg.Timeout), nil)
			}
			s.log.Warn("history stream timed out, resolving partial range",
				zap.String("symbol", symbol), zap.Int("bars", len(acc)))
			return finishBars(acc, start, end), nil
		case p, ok := <-sess.Packets():
			if !ok {
				if len(acc) > 0 {
					return finishBars(acc, start, end), nil
				}
				return nil, core.APIError(0, "stream closed before history completed", sess.Err())
			}
			switch p.Method {
			case "timescale_update", "du":
				mergeBars(acc, p)
			case "series_completed":
				if len(acc) == 0 {
					return nil, core.DataNotAvailable(fmt.Sprintf("no bars for %s in range", symbol))
				}
				return finishBars(acc, start, end), nil
			case "symbol_error":
				return nil, core.TickerNotFound(symbol)
			case "critical_error", "protocol_error":
				return nil, core.APIError(0, "stream error: "+rawParams(p), nil)
			}
		}
	}
}

// barCount sizes the series request to cover the range with headroom;
// the exact window is trimmed locally afterwards.
func barCount(start, end time.Time, interval core.Interval) int {
	span := intervalSpans[interval]
	n := int(end.Sub(start)/span) + 2
	if n < 10 {
		n = 10
	}
	if n > 20000 {
		n = 20000
	}
	return n
}

func mergeBars(acc map[int64]core.Bar, p *stream.Packet) {
	if len(p.Params) < 2 {
		return
	}
	var upd struct {
		Series struct {
			Rows []struct {
				Values []float64 `json:"v"`
			} `json:"s"`
		} `json:"sds_1"`
	}
	if err := json.Unmarshal(p.Params[1], &upd); err != nil {
		return
	}
	for _, row := range upd.Series.Rows {
		v := row.Values
		if len(v) < 5 {
			continue
		}
		ts := int64(v[0])
		bar := core.Bar{
			Time:  locale.UnixSeconds(ts),
			Open:  v[1],
			High:  v[2],
			Low:   v[3],
			Close: v[4],
		}
		if len(v) >= 6 {
			bar.Volume = v[5]
		}
		acc[ts] = bar
	}
}

func finishBars(acc map[int64]core.Bar, start, end time.Time) []core.Bar {
	bars := make([]core.Bar, 0, len(acc))
	for _, b := range acc {
		bars = append(bars, b)
	}
	return core.TrimBars(core.SortBars(bars), start, end)
}

type call struct {
	method string
	params []any
}

func sendAll(sess *stream.Session, calls ...call) error {
	for _, c := range calls {
		if err := sess.Send(c.method, c.params...); err != nil {
			return err
		}
	}
	return nil
}

func rawParams(p *stream.Packet) string {
	parts := make([]string, 0, len(p.Params))
	for _, raw := range p.Params {
		parts = append(parts, string(raw))
	}
	return strings.Join(parts, " ")
}

type quoteUpdate struct {
	Symbol string      `json:"n"`
	Status string      `json:"s"`
	Values quoteValues `json:"v"`
}

// quoteValues accumulates field patches; nil means never seen.
type quoteValues struct {
	Last      *float64 `json:"lp"`
	Change    *float64 `json:"ch"`
	ChangePct *float64 `json:"chp"`
	Open      *float64 `json:"open_price"`
	High      *float64 `json:"high_price"`
	Low       *float64 `json:"low_price"`
	PrevClose *float64 `json:"prev_close_price"`
	Volume    *float64 `json:"volume"`
	LastTime  *int64   `json:"lp_time"`
}

func (q *quoteValues) merge(p quoteValues) {
	if p.Last != nil {
		q.Last = p.Last
	}
	if p.Change != nil {
		q.Change = p.Change
	}
	if p.ChangePct != nil {
		q.ChangePct = p.ChangePct
	}
	if p.Open != nil {
		q.Open = p.Open
	}
	if p.High != nil {
		q.High = p.High
	}
	if p.Low != nil {
		q.Low = p.Low
	}
	if p.PrevClose != nil {
		q.PrevClose = p.PrevClose
	}
	if p.Volume != nil {
		q.Volume = p.Volume
	}
	if p.LastTime != nil {
		q.LastTime = p.LastTime
	}
}

func (q *quoteValues) quote(symbol string) *core.Quote {
	deref := func(p *float64) float64 {
		if p == nil {
			return 0
		}
		return *p
	}
	out := &core.Quote{
		Symbol:        symbol,
		Last:          deref(q.Last),
		Open:          deref(q.Open),
		High:          deref(q.High),
		Low:           deref(q.Low),
		PrevClose:     deref(q.PrevClose),
		Volume:        deref(q.Volume),
		Change:        deref(q.Change),
		ChangePercent: deref(q.ChangePct),
		Source:        name,
	}
	if q.LastTime != nil {
		out.Time = locale.UnixSeconds(*q.LastTime)
	}
	if q.Change == nil && q.ChangePct == nil {
		derived := out.WithDerivedChange()
		return &derived
	}
	return out
}
