package core

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// Quote is a point-in-time snapshot of one instrument. Quotes are value
// objects: constructed once by a source and never mutated afterwards.
type Quote struct {
	Symbol        string
	Last          float64
	Open          float64
	High          float64
	Low           float64
	PrevClose     float64
	Volume        float64
	Change        float64
	ChangePercent float64
	Time          time.Time
	Source        string
}

// IsValid checks if the quote has the required fields.
func (q Quote) IsValid() bool {
	return q.Symbol != "" && q.Last > 0
}

// WithDerivedChange returns a copy with Change and ChangePercent computed
// from Last and PrevClose. A zero or unknown previous close yields zero
// change fields instead of Inf/NaN.
func (q Quote) WithDerivedChange() Quote {
	if q.PrevClose == 0 {
		q.Change = 0
		q.ChangePercent = 0
		return q
	}
	q.Change = q.Last - q.PrevClose
	q.ChangePercent = q.Change / q.PrevClose * 100
	return q
}

// Bar is one OHLCV interval of historical price action.
type Bar struct {
	Time   time.Time
	Open   float64
	High   float64
	Low    float64
	Close  float64
	Volume float64
}

// SortBars sorts bars ascending by time and drops duplicate timestamps,
// keeping the last observed value for a given instant. The input slice is
// not modified.
func SortBars(bars []Bar) []Bar {
	if len(bars) == 0 {
		return nil
	}
	out := make([]Bar, len(bars))
	copy(out, bars)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Time.Before(out[j].Time) })

	dedup := out[:1]
	for _, b := range out[1:] {
		if b.Time.Equal(dedup[len(dedup)-1].Time) {
			dedup[len(dedup)-1] = b
			continue
		}
		dedup = append(dedup, b)
	}
	return dedup
}

// TrimBars keeps only bars whose time falls within [start, end]. Sources
// call this when the upstream cannot filter ranges server-side.
func TrimBars(bars []Bar, start, end time.Time) []Bar {
	out := make([]Bar, 0, len(bars))
	for _, b := range bars {
		if b.Time.Before(start) || b.Time.After(end) {
			continue
		}
		out = append(out, b)
	}
	return out
}

// Period is a symbolic lookback window for history requests.
type Period string

const (
	Period1D  Period = "1d"
	Period5D  Period = "5d"
	Period1Mo Period = "1mo"
	Period3Mo Period = "3mo"
	Period6Mo Period = "6mo"
	Period1Y  Period = "1y"
	Period2Y  Period = "2y"
	Period5Y  Period = "5y"
	Period10Y Period = "10y"
	PeriodYTD Period = "ytd"
	PeriodMax Period = "max"
)

var periodDays = map[Period]int{
	Period1D:  1,
	Period5D:  5,
	Period1Mo: 30,
	Period3Mo: 90,
	Period6Mo: 180,
	Period1Y:  365,
	Period2Y:  730,
	Period5Y:  1825,
	Period10Y: 3650,
	PeriodMax: 7300,
}

// AcceptedPeriods returns the recognized period tokens in a stable order.
func AcceptedPeriods() []string {
	return []string{"1d", "5d", "1mo", "3mo", "6mo", "1y", "2y", "5y", "10y", "ytd", "max"}
}

// ParsePeriod validates a period token.
func ParsePeriod(s string) (Period, error) {
	p := Period(strings.ToLower(strings.TrimSpace(s)))
	if p == PeriodYTD {
		return p, nil
	}
	if _, ok := periodDays[p]; !ok {
		return "", InvalidPeriod(s)
	}
	return p, nil
}

// Days returns the lookback in days relative to end. YTD depends on end's
// calendar year.
func (p Period) Days(end time.Time) (int, error) {
	if p == PeriodYTD {
		jan1 := time.Date(end.Year(), time.January, 1, 0, 0, 0, 0, end.Location())
		d := int(end.Sub(jan1).Hours() / 24)
		if d < 1 {
			d = 1
		}
		return d, nil
	}
	d, ok := periodDays[p]
	if !ok {
		return 0, InvalidPeriod(string(p))
	}
	return d, nil
}

// Interval is a bar granularity token.
type Interval string

const (
	Interval1m  Interval = "1m"
	Interval5m  Interval = "5m"
	Interval15m Interval = "15m"
	Interval30m Interval = "30m"
	Interval1h  Interval = "1h"
	Interval1d  Interval = "1d"
	Interval1wk Interval = "1wk"
	Interval1mo Interval = "1mo"
)

var validIntervals = map[Interval]bool{
	Interval1m: true, Interval5m: true, Interval15m: true, Interval30m: true,
	Interval1h: true, Interval1d: true, Interval1wk: true, Interval1mo: true,
}

// AcceptedIntervals returns the recognized interval tokens in a stable order.
func AcceptedIntervals() []string {
	return []string{"1m", "5m", "15m", "30m", "1h", "1d", "1wk", "1mo"}
}

// ParseInterval validates an interval token.
func ParseInterval(s string) (Interval, error) {
	iv := Interval(strings.ToLower(strings.TrimSpace(s)))
	if !validIntervals[iv] {
		return "", InvalidInterval(s)
	}
	return iv, nil
}

// HistoryOptions selects a historical range. An explicit Start wins over
// Period; End defaults to now.
type HistoryOptions struct {
	Period   Period
	Start    time.Time
	End      time.Time
	Interval Interval
}

// Resolve turns the options into concrete [start, end] instants plus the
// effective interval. The resolved bounds are what sources use for cache
// keys and trimming, so two requests share a cache entry only when their
// resolved ranges coincide.
func (o HistoryOptions) Resolve(now time.Time) (start, end time.Time, iv Interval, err error) {
	end = o.End
	if end.IsZero() {
		end = now
	}
	iv = o.Interval
	if iv == "" {
		iv = Interval1d
	} else if !validIntervals[iv] {
		return time.Time{}, time.Time{}, "", InvalidInterval(string(iv))
	}

	if !o.Start.IsZero() {
		start = o.Start
	} else {
		p := o.Period
		if p == "" {
			p = Period1Y
		}
		days, derr := p.Days(end)
		if derr != nil {
			return time.Time{}, time.Time{}, "", derr
		}
		start = end.AddDate(0, 0, -days)
	}

	if start.After(end) {
		return time.Time{}, time.Time{}, "", &Error{
			Code:    CodeInvalidPeriod,
			Message: fmt.Sprintf("start %s is after end %s", start.Format(time.DateOnly), end.Format(time.DateOnly)),
		}
	}
	return start, end, iv, nil
}

// NormalizeSymbol upper-cases and trims an identifier the way every façade
// does before handing it to a source.
func NormalizeSymbol(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}
