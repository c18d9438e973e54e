package borsa

import "context"

// Ticker is the façade for one BIST equity.
type Ticker struct {
	instrument
}

// Ticker returns a façade for an equity symbol such as "THYAO". Symbols
// are case-insensitive.
func (c *Client) Ticker(symbol string) *Ticker {
	return &Ticker{instrument: newInstrument(c.equities, symbol)}
}

// Symbol returns the normalized symbol.
func (t *Ticker) Symbol() string { return t.symbol }

// Info returns the quote snapshot, pinned after the first success.
// Create a new Ticker to observe fresh data.
func (t *Ticker) Info(ctx context.Context) (*Quote, error) { return t.info(ctx) }

// Price returns the last traded price from the pinned snapshot.
func (t *Ticker) Price(ctx context.Context) (float64, error) { return t.price(ctx) }

// History returns OHLCV bars for the resolved range, ascending by time.
func (t *Ticker) History(ctx context.Context, opts HistoryOptions) ([]Bar, error) {
	return t.history(ctx, opts)
}
