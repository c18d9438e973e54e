package borsa

import "context"

// Viop is the façade for a derivatives contract, e.g. "XU030D1!" for
// the front-month index future. Contracts stream from the charts
// upstream like indices do.
type Viop struct {
	instrument
}

// Viop returns a façade for a futures or options contract symbol.
func (c *Client) Viop(symbol string) *Viop {
	return &Viop{instrument: newInstrument(c.charts, symbol)}
}

func (v *Viop) Symbol() string { return v.symbol }

// Info returns the contract snapshot, pinned after the first success.
func (v *Viop) Info(ctx context.Context) (*Quote, error) { return v.info(ctx) }

// Price returns the last traded contract price.
func (v *Viop) Price(ctx context.Context) (float64, error) { return v.price(ctx) }

// History returns contract bars for the resolved range.
func (v *Viop) History(ctx context.Context, opts HistoryOptions) ([]Bar, error) {
	return v.history(ctx, opts)
}
