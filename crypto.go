package borsa

import "context"

// Crypto is the façade for an exchange trading pair such as "BTCTRY".
type Crypto struct {
	instrument
}

// Crypto returns a façade for a pair symbol.
func (c *Client) Crypto(symbol string) *Crypto {
	return &Crypto{instrument: newInstrument(c.crypto, symbol)}
}

func (cr *Crypto) Symbol() string { return cr.symbol }

// Info returns the pair snapshot, pinned after the first success.
func (cr *Crypto) Info(ctx context.Context) (*Quote, error) { return cr.info(ctx) }

// Price returns the last traded price.
func (cr *Crypto) Price(ctx context.Context) (float64, error) { return cr.price(ctx) }

// History returns pair bars for the resolved range.
func (cr *Crypto) History(ctx context.Context, opts HistoryOptions) ([]Bar, error) {
	return cr.history(ctx, opts)
}

// SearchPairs finds trading pairs matching a query. Best-effort: an
// unreachable exchange yields an empty result, never an error.
func (c *Client) SearchPairs(ctx context.Context, query string) []Pair {
	return c.crypto.SearchPairs(ctx, query)
}
