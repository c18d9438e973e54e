// Package borsa provides unified access to Turkish financial market
// data: BIST equities and indices, TEFAS mutual funds, foreign exchange,
// crypto pairs, fixed income tables, inflation figures and the economic
// calendar. All upstream quirks (Turkish number formats, string-typed
// JSON numerics, mixed timestamp units) are normalized behind a small
// set of façades built from a single Client.
//
// Responses are cached in-process with per-class TTLs, so repeated calls
// within a TTL window do not touch the network. Errors form a closed
// taxonomy matched with errors.Is:
//
//	q, err := client.Ticker("THYAO").Info(ctx)
//	if errors.Is(err, borsa.ErrTickerNotFound) { ... }
package borsa

import (
	"github.com/goborsa/borsa/internal/core"
	"github.com/goborsa/borsa/internal/source/bigpara"
	"github.com/goborsa/borsa/internal/source/btcturk"
	"github.com/goborsa/borsa/internal/source/investing"
	"github.com/goborsa/borsa/internal/source/tcmb"
	"github.com/goborsa/borsa/internal/source/tefas"
)

// Domain types, aliased so callers never import internal packages.
type (
	Quote          = core.Quote
	Bar            = core.Bar
	Period         = core.Period
	Interval       = core.Interval
	HistoryOptions = core.HistoryOptions

	FundProfile     = tefas.Fund
	FundSummary     = tefas.FundSummary
	AllocationSlice = tefas.AllocationSlice
	Pair            = btcturk.Pair
	Bond            = bigpara.Bond
	Eurobond        = bigpara.Eurobond
	InflationResult = tcmb.Result
	EconomicEvent   = investing.Event
)

// Period tokens accepted by HistoryOptions.
const (
	Period1D  = core.Period1D
	Period5D  = core.Period5D
	Period1Mo = core.Period1Mo
	Period3Mo = core.Period3Mo
	Period6Mo = core.Period6Mo
	Period1Y  = core.Period1Y
	Period2Y  = core.Period2Y
	Period5Y  = core.Period5Y
	Period10Y = core.Period10Y
	PeriodYTD = core.PeriodYTD
	PeriodMax = core.PeriodMax
)

// Interval tokens accepted by HistoryOptions.
const (
	Interval1m  = core.Interval1m
	Interval5m  = core.Interval5m
	Interval15m = core.Interval15m
	Interval30m = core.Interval30m
	Interval1h  = core.Interval1h
	Interval1d  = core.Interval1d
	Interval1wk = core.Interval1wk
	Interval1mo = core.Interval1mo
)

// The closed error taxonomy. Every error returned by this package
// matches exactly one of these under errors.Is.
var (
	ErrTickerNotFound   = core.ErrTickerNotFound
	ErrDataNotAvailable = core.ErrDataNotAvailable
	ErrAPI              = core.ErrAPI
	ErrAuthentication   = core.ErrAuthentication
	ErrRateLimit        = core.ErrRateLimit
	ErrInvalidPeriod    = core.ErrInvalidPeriod
	ErrInvalidInterval  = core.ErrInvalidInterval
	ErrConfigInvalid    = core.ErrConfigInvalid
)

// ParsePeriod validates a period token such as "1y" or "ytd".
func ParsePeriod(s string) (Period, error) { return core.ParsePeriod(s) }

// ParseInterval validates an interval token such as "1d" or "15m".
func ParseInterval(s string) (Interval, error) { return core.ParseInterval(s) }

// AcceptedPeriods lists the recognized period tokens.
func AcceptedPeriods() []string { return core.AcceptedPeriods() }

// AcceptedIntervals lists the recognized interval tokens.
func AcceptedIntervals() []string { return core.AcceptedIntervals() }
