package borsa

import "context"

// Index is the façade for a BIST index such as "XU100". Index data is
// served by the streaming charts upstream because the equity API does
// not carry index levels.
type Index struct {
	instrument
}

// Index returns a façade for an index symbol.
func (c *Client) Index(symbol string) *Index {
	return &Index{instrument: newInstrument(c.charts, symbol)}
}

func (i *Index) Symbol() string { return i.symbol }

// Info returns the index snapshot, pinned after the first success.
func (i *Index) Info(ctx context.Context) (*Quote, error) { return i.info(ctx) }

// Level returns the current index level.
func (i *Index) Level(ctx context.Context) (float64, error) { return i.price(ctx) }

// History returns index bars for the resolved range.
func (i *Index) History(ctx context.Context, opts HistoryOptions) ([]Bar, error) {
	return i.history(ctx, opts)
}
