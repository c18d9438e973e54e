package borsa

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/goborsa/borsa/internal/core"
)

// Download fetches equity history for many symbols concurrently, bounded
// by the configured batch concurrency. Failures are isolated per symbol:
// the result holds only the symbols that succeeded and each failure is
// logged, so one delisted ticker cannot sink a whole batch.
func (c *Client) Download(ctx context.Context, symbols []string, opts HistoryOptions) (map[string][]Bar, error) {
	start, end, iv, err := opts.Resolve(time.Now())
	if err != nil {
		return nil, err
	}

	var mu sync.Mutex
	out := make(map[string][]Bar, len(symbols))

	g := new(errgroup.Group)
	g.SetLimit(c.cfg.Batch.Concurrency)
	for _, raw := range symbols {
		sym := core.NormalizeSymbol(raw)
		g.Go(func() error {
			bars, err := c.equities.History(ctx, sym, start, end, iv)
			if err != nil {
				c.log.Warn("batch download skipping symbol",
					zap.String("symbol", sym), zap.Error(err))
				return nil
			}
			mu.Lock()
			out[sym] = bars
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait() // workers never return errors, failures are logged above
	return out, nil
}
