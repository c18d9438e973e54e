package borsa

import (
	"context"
	"sync"
	"time"

	"github.com/goborsa/borsa/internal/core"
	"github.com/goborsa/borsa/internal/source"
)

// instrument is the shared quote/history machinery behind the symbol
// façades. The first successful snapshot is pinned for the façade's
// lifetime so repeated field reads stay mutually consistent; history is
// delegated on every call.
type instrument struct {
	quoter    source.Quoter
	historian source.Historian
	symbol    string
	now       func() time.Time

	mu       sync.Mutex
	snapshot *Quote
}

func newInstrument(src source.Source, symbol string) instrument {
	return instrument{
		quoter:    src,
		historian: src,
		symbol:    core.NormalizeSymbol(symbol),
		now:       time.Now,
	}
}

func (i *instrument) info(ctx context.Context) (*Quote, error) {
	i.mu.Lock()
	defer i.mu.Unlock()
	if i.snapshot != nil {
		return i.snapshot, nil
	}
	q, err := i.quoter.Quote(ctx, i.symbol)
	if err != nil {
		return nil, err
	}
	i.snapshot = q
	return q, nil
}

func (i *instrument) price(ctx context.Context) (float64, error) {
	q, err := i.info(ctx)
	if err != nil {
		return 0, err
	}
	return q.Last, nil
}

func (i *instrument) history(ctx context.Context, opts HistoryOptions) ([]Bar, error) {
	start, end, iv, err := opts.Resolve(i.now())
	if err != nil {
		return nil, err
	}
	return i.historian.History(ctx, i.symbol, start, end, iv)
}
