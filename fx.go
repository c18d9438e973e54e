package borsa

import (
	"context"
	"fmt"

	"github.com/goborsa/borsa/internal/core"
)

// FX is the façade for a currency or commodity priced in lira, e.g.
// "USD", "EUR" or "gram-altin".
type FX struct {
	instrument
}

// FX returns a façade for a currency symbol.
func (c *Client) FX(symbol string) *FX {
	return &FX{instrument: newInstrument(c.fx, symbol)}
}

func (f *FX) Symbol() string { return f.symbol }

// Info returns the rate snapshot, pinned after the first success.
func (f *FX) Info(ctx context.Context) (*Quote, error) { return f.info(ctx) }

// Rate returns the current selling rate.
func (f *FX) Rate(ctx context.Context) (float64, error) { return f.price(ctx) }

// History returns daily rate bars for the resolved range.
func (f *FX) History(ctx context.Context, opts HistoryOptions) ([]Bar, error) {
	return f.history(ctx, opts)
}

// CrossRate computes base/quote from two lira-denominated rates, e.g.
// CrossRate(ctx, "EUR", "USD") for EURUSD. Both legs go through the
// realtime cache, so the cross costs at most two fetches.
func (c *Client) CrossRate(ctx context.Context, base, quote string) (float64, error) {
	bq, err := c.fx.Quote(ctx, base)
	if err != nil {
		return 0, err
	}
	qq, err := c.fx.Quote(ctx, quote)
	if err != nil {
		return 0, err
	}
	if qq.Last == 0 {
		return 0, core.DataNotAvailable(fmt.Sprintf("zero rate for %s", quote))
	}
	return bq.Last / qq.Last, nil
}
