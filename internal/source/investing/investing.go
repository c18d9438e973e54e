// Package investing scrapes an economic calendar table. The whole source
// is best-effort enrichment: every failure path yields an empty day, so
// callers never branch on calendar errors.
package investing

import (
	"bytes"
	"context"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"github.com/goborsa/borsa/internal/cache"
	"github.com/goborsa/borsa/internal/locale"
	"github.com/goborsa/borsa/internal/logger"
	"github.com/goborsa/borsa/internal/source"
)

const (
	name           = "investing"
	defaultBaseURL = "https://tr.investing.com"
)

// Event is one economic calendar entry.
type Event struct {
	Time       time.Time
	Country    string
	Importance int // 1..3 stars
	Name       string
	Actual     string
	Forecast   string
	Previous   string
}

// Source scrapes the calendar page.
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

// Events returns the calendar for a day. Best-effort: any transport or
// parse failure logs a warning and returns an empty slice with nil error.
func (s *Source) Events(ctx context.Context, day time.Time) []Event {
	dayKey := day.In(locale.Istanbul).Format(time.DateOnly)
	key := cache.Key(name, "calendar", dayKey)
	if events, ok := cache.Lookup[[]Event](s.deps.Cache, key); ok {
		s.deps.Rec.CacheHit(name)
		return events
	}
	s.deps.Rec.CacheMiss(name)

	started := time.Now()
	events, err := s.fetch(ctx, day)
	s.deps.Rec.Fetch(name, "calendar", err, time.Since(started))
	if err != nil {
		s.log.Warn("calendar unavailable, degrading to empty day",
			zap.String("day", dayKey), zap.Error(err))
		return nil
	}

	s.deps.Cache.Set(key, events, s.deps.TTL.Realtime)
	return events
}

func (s *Source) fetch(ctx context.Context, day time.Time) ([]Event, error) {
	body, err := s.deps.HTTP.GetBytes(ctx, s.baseURL+"/economic-calendar/", nil)
	if err != nil {
		return nil, err
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, err
	}

	base := day.In(locale.Istanbul)
	var events []Event
	doc.Find("table#economicCalendarData tr.js-event-item").Each(func(_ int, tr *goquery.Selection) {
		cells := tr.Find("td")
		if cells.Length() < 7 {
			return
		}
		ev := Event{
			Country:  strings.TrimSpace(cells.Eq(1).Text()),
			Name:     strings.TrimSpace(cells.Eq(3).Text()),
			Actual:   strings.TrimSpace(cells.Eq(4).Text()),
			Forecast: strings.TrimSpace(cells.Eq(5).Text()),
			Previous: strings.TrimSpace(cells.Eq(6).Text()),
		}
		// "14:30" local wall time on the requested day.
		if hm := strings.TrimSpace(cells.Eq(0).Text()); len(hm) == 5 {
			if t, err := time.ParseInLocation("15:04", hm, locale.Istanbul); err == nil {
				ev.Time = time.Date(base.Year(), base.Month(), base.Day(),
					t.Hour(), t.Minute(), 0, 0, locale.Istanbul)
			}
		}
		ev.Importance = tr.Find("i.grayFullBullishIcon").Length()
		if ev.Name == "" {
			return
		}
		events = append(events, ev)
	})
	return events, nil
}
