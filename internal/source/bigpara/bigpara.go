// Package bigpara scrapes bond and eurobond yield tables from HTML
// pages. Tables use display-convention Turkish decimals and month-name
// dates; the first row is a header and malformed rows are tolerated.
package bigpara

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"github.com/goborsa/borsa/internal/cache"
	"github.com/goborsa/borsa/internal/core"
	"github.com/goborsa/borsa/internal/locale"
	"github.com/goborsa/borsa/internal/logger"
	"github.com/goborsa/borsa/internal/source"
)

const (
	name           = "bigpara"
	defaultBaseURL = "https://bigpara.hurriyet.com.tr"
)

// Bond is one row of the government bond yield table.
type Bond struct {
	Name    string
	Yield   float64 // percent
	Change  float64 // percent points
	Updated time.Time
}

// YieldDecimal converts the display percent to a fraction, 42.15 -> 0.4215.
func (b Bond) YieldDecimal() float64 { return b.Yield / 100 }

// Eurobond is one row of the eurobond table.
type Eurobond struct {
	Name     string
	Coupon   float64
	Price    float64
	Yield    float64 // percent
	Maturity time.Time
}

// YieldDecimal converts the display percent to a fraction.
func (b Eurobond) YieldDecimal() float64 { return b.Yield / 100 }

// Source scrapes fixed-income tables.
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

// Bonds returns the government bond table, cached with the realtime TTL.
func (s *Source) Bonds(ctx context.Context) ([]Bond, error) {
	key := cache.Key(name, "bonds")
	if rows, ok := cache.Lookup[[]Bond](s.deps.Cache, key); ok {
		s.deps.Rec.CacheHit(name)
		return rows, nil
	}
	s.deps.Rec.CacheMiss(name)

	started := time.Now()
	doc, err := s.fetchDoc(ctx, s.baseURL+"/tahvil/")
	s.deps.Rec.Fetch(name, "bonds", err, time.Since(started))
	if err != nil {
		return nil, err
	}

	var rows []Bond
	doc.Find("table.bondTable tr").Each(func(i int, tr *goquery.Selection) {
		if i == 0 {
			return // header
		}
		cells := tr.Find("td")
		if cells.Length() < 3 {
			s.log.Debug("skipping short bond row", zap.Int("cells", cells.Length()))
			return
		}
		b := Bond{
			Name:   strings.TrimSpace(cells.Eq(0).Text()),
			Yield:  locale.Number(cells.Eq(1).Text(), locale.StyleDisplay),
			Change: locale.Number(cells.Eq(2).Text(), locale.StyleDisplay),
		}
		if cells.Length() > 3 {
			if d, err := locale.ParseMonthNameDate(cells.Eq(3).Text()); err == nil {
				b.Updated = d
			}
		}
		if b.Name == "" {
			return
		}
		rows = append(rows, b)
	})
	if len(rows) == 0 {
		return nil, core.DataNotAvailable("bond table empty or unrecognized")
	}

	s.deps.Cache.Set(key, rows, s.deps.TTL.Realtime)
	return rows, nil
}

// Bond returns the named row from the bond table.
func (s *Source) Bond(ctx context.Context, id string) (*Bond, error) {
	rows, err := s.Bonds(ctx)
	if err != nil {
		return nil, err
	}
	for i := range rows {
		if strings.EqualFold(rows[i].Name, id) {
			return &rows[i], nil
		}
	}
	return nil, core.TickerNotFound(id)
}

// Eurobonds returns the eurobond table, cached with the realtime TTL.
func (s *Source) Eurobonds(ctx context.Context) ([]Eurobond, error) {
	key := cache.Key(name, "eurobonds")
	if rows, ok := cache.Lookup[[]Eurobond](s.deps.Cache, key); ok {
		s.deps.Rec.CacheHit(name)
		return rows, nil
	}
	s.deps.Rec.CacheMiss(name)

	started := time.Now()
	doc, err := s.fetchDoc(ctx, s.baseURL+"/eurobond/")
	s.deps.Rec.Fetch(name, "eurobonds", err, time.Since(started))
	if err != nil {
		return nil, err
	}

	var rows []Eurobond
	doc.Find("table.eurobondTable tr").Each(func(i int, tr *goquery.Selection) {
		if i == 0 {
			return
		}
		cells := tr.Find("td")
		if cells.Length() < 5 {
			return
		}
		e := Eurobond{
			Name:   strings.TrimSpace(cells.Eq(0).Text()),
			Coupon: locale.Number(cells.Eq(1).Text(), locale.StyleDisplay),
			Price:  locale.Number(cells.Eq(2).Text(), locale.StyleDisplay),
			Yield:  locale.Number(cells.Eq(3).Text(), locale.StyleDisplay),
		}
		if d, err := locale.ParseMonthNameDate(cells.Eq(4).Text()); err == nil {
			e.Maturity = d
		}
		if e.Name == "" {
			return
		}
		rows = append(rows, e)
	})
	if len(rows) == 0 {
		return nil, core.DataNotAvailable("eurobond table empty or unrecognized")
	}

	s.deps.Cache.Set(key, rows, s.deps.TTL.Realtime)
	return rows, nil
}

// Eurobond returns the named row from the eurobond table.
func (s *Source) Eurobond(ctx context.Context, id string) (*Eurobond, error) {
	rows, err := s.Eurobonds(ctx)
	if err != nil {
		return nil, err
	}
	for i := range rows {
		if strings.EqualFold(rows[i].Name, id) {
			return &rows[i], nil
		}
	}
	return nil, core.TickerNotFound(id)
}

func (s *Source) fetchDoc(ctx context.Context, url string) (*goquery.Document, error) {
	body, err := s.deps.HTTP.GetBytes(ctx, url, nil)
	if err != nil {
		return nil, err
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, core.DataNotAvailable(fmt.Sprintf("unparseable page %s", url))
	}
	return doc, nil
}
