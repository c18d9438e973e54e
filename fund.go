package borsa

import (
	"context"
	"sync"
	"time"

	"github.com/goborsa/borsa/internal/core"
)

// Fund is the façade for a TEFAS mutual fund, addressed by its
// three-letter code.
type Fund struct {
	client *Client
	code   string

	mu       sync.Mutex
	snapshot *FundProfile
}

// Fund returns a façade for a fund code such as "AAK".
func (c *Client) Fund(code string) *Fund {
	return &Fund{client: c, code: core.NormalizeSymbol(code)}
}

// Code returns the normalized fund code.
func (f *Fund) Code() string { return f.code }

// Info returns the fund profile, pinned after the first success.
func (f *Fund) Info(ctx context.Context) (*FundProfile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.snapshot != nil {
		return f.snapshot, nil
	}
	p, err := f.client.funds.Fund(ctx, f.code)
	if err != nil {
		return nil, err
	}
	f.snapshot = p
	return p, nil
}

// Price returns the latest unit price.
func (f *Fund) Price(ctx context.Context) (float64, error) {
	p, err := f.Info(ctx)
	if err != nil {
		return 0, err
	}
	return p.Price, nil
}

// Allocation returns the fund's latest portfolio breakdown by asset
// class. Not pinned: weights change daily and the realtime cache already
// bounds fetches.
func (f *Fund) Allocation(ctx context.Context) ([]AllocationSlice, error) {
	return f.client.funds.Allocation(ctx, f.code)
}

// History returns close-only price bars for the resolved range. Funds
// price once per day, so intervals finer than 1d are rejected.
func (f *Fund) History(ctx context.Context, opts HistoryOptions) ([]Bar, error) {
	start, end, iv, err := opts.Resolve(time.Now())
	if err != nil {
		return nil, err
	}
	switch iv {
	case Interval1d, Interval1wk, Interval1mo:
	default:
		return nil, core.InvalidInterval(string(iv))
	}
	return f.client.funds.History(ctx, f.code, start, end, iv)
}

// SearchFunds finds funds whose code or name matches the query.
// Best-effort: an unreachable catalog yields an empty result.
func (c *Client) SearchFunds(ctx context.Context, query string) []FundSummary {
	return c.funds.Search(ctx, query)
}
