package borsa

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/goborsa/borsa/internal/cache"
	"github.com/goborsa/borsa/internal/config"
	"github.com/goborsa/borsa/internal/core"
	"github.com/goborsa/borsa/internal/logger"
	"github.com/goborsa/borsa/internal/metrics"
	"github.com/goborsa/borsa/internal/source"
	"github.com/goborsa/borsa/internal/source/bigpara"
	"github.com/goborsa/borsa/internal/source/btcturk"
	"github.com/goborsa/borsa/internal/source/doviz"
	"github.com/goborsa/borsa/internal/source/investing"
	"github.com/goborsa/borsa/internal/source/isyatirim"
	"github.com/goborsa/borsa/internal/source/tcmb"
	"github.com/goborsa/borsa/internal/source/tefas"
	"github.com/goborsa/borsa/internal/source/tradingview"
	"github.com/goborsa/borsa/internal/transport"
)

// Client is the composition root. It owns the shared cache, transport
// and instrumentation, constructs every source once, and hands out
// façades that borrow them. A Client is safe for concurrent use.
type Client struct {
	cfg     *config.Config
	log     *zap.Logger
	cache   *cache.Cache
	sources *source.Registry

	equities    *isyatirim.Source
	funds       *tefas.Source
	fx          *doviz.Source
	crypto      *btcturk.Source
	fixedIncome *bigpara.Source
	cpi         *tcmb.Source
	charts      *tradingview.Source
	calendar    *investing.Source
}

type settings struct {
	configPath string
	log        *zap.Logger
	registerer prometheus.Registerer
	endpoints  map[string]string
}

// Option customizes client construction.
type Option func(*settings)

// WithConfigFile loads configuration from a YAML file instead of using
// built-in defaults.
func WithConfigFile(path string) Option {
	return func(s *settings) { s.configPath = path }
}

// WithLogger sets the logger. Without it the client logs nothing.
func WithLogger(log *zap.Logger) Option {
	return func(s *settings) { s.log = log }
}

// WithMetricsRegisterer sets where prometheus collectors register.
// Defaults to the global registry when metrics are enabled.
func WithMetricsRegisterer(reg prometheus.Registerer) Option {
	return func(s *settings) { s.registerer = reg }
}

// WithEndpoint overrides one source's base URL, e.g. for a proxy.
func WithEndpoint(sourceName, url string) Option {
	return func(s *settings) {
		if s.endpoints == nil {
			s.endpoints = map[string]string{}
		}
		s.endpoints[sourceName] = url
	}
}

// NewClient builds a fully wired client.
func NewClient(opts ...Option) (*Client, error) {
	var s settings
	for _, opt := range opts {
		opt(&s)
	}

	cfg := config.Defaults()
	if s.configPath != "" {
		loaded, err := config.Load(s.configPath)
		if err != nil {
			return nil, core.WrapError(core.ErrConfigInvalid, err)
		}
		cfg = loaded
	}
	if cfg.Endpoints == nil {
		cfg.Endpoints = map[string]string{}
	}
	for name, url := range s.endpoints {
		cfg.Endpoints[name] = url
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	log := s.log
	if log == nil {
		log = zap.NewNop()
	}

	var rec *metrics.Recorder
	if cfg.Metrics.Enabled {
		reg := s.registerer
		if reg == nil {
			reg = prometheus.DefaultRegisterer
		}
		rec = metrics.NewRecorder(reg)
	}

	deps := source.Deps{
		Cache: cache.New(),
		HTTP: transport.New(transport.Options{
			Timeout:     cfg.HTTP.Timeout,
			UserAgent:   cfg.HTTP.UserAgent,
			InsecureTLS: cfg.HTTP.InsecureTLS,
		}, log),
		Log: log,
		Rec: rec,
		TTL: cfg.TTL,
	}

	c := &Client{
		cfg:         cfg,
		log:         logger.Named(log, "client"),
		cache:       deps.Cache,
		sources:     source.NewRegistry(),
		equities:    isyatirim.New(deps, cfg.Endpoint("isyatirim", "")),
		funds:       tefas.New(deps, cfg.Endpoint("tefas", "")),
		fx:          doviz.New(deps, cfg.Endpoint("doviz", "")),
		crypto:      btcturk.New(deps, cfg.Endpoint("btcturk", ""), cfg.Endpoint("btcturk_graph", "")),
		fixedIncome: bigpara.New(deps, cfg.Endpoint("bigpara", "")),
		cpi:         tcmb.New(deps, cfg.Endpoint("tcmb", "")),
		charts:      tradingview.New(deps, cfg.Endpoint("tradingview", ""), cfg.Stream),
		calendar:    investing.New(deps, cfg.Endpoint("investing", "")),
	}

	for _, src := range []source.Source{c.equities, c.fx, c.crypto, c.charts} {
		c.sources.Register(src)
	}
	return c, nil
}

// Sources lists the registered quote+history capable source names.
func (c *Client) Sources() []string { return c.sources.Names() }

// QuoteFrom fetches a quote from a named source, for callers that want
// to pick the upstream explicitly.
func (c *Client) QuoteFrom(ctx context.Context, sourceName, symbol string) (*Quote, error) {
	src, ok := c.sources.Get(sourceName)
	if !ok {
		return nil, core.DataNotAvailable(fmt.Sprintf("unknown source %q", sourceName))
	}
	return src.Quote(ctx, symbol)
}

// HistoryFrom fetches bars from a named source.
func (c *Client) HistoryFrom(ctx context.Context, sourceName, symbol string, opts HistoryOptions) ([]Bar, error) {
	src, ok := c.sources.Get(sourceName)
	if !ok {
		return nil, core.DataNotAvailable(fmt.Sprintf("unknown source %q", sourceName))
	}
	start, end, iv, err := opts.Resolve(time.Now())
	if err != nil {
		return nil, err
	}
	return src.History(ctx, symbol, start, end, iv)
}

// ClearCache drops every cached response.
func (c *Client) ClearCache() { c.cache.Clear() }
