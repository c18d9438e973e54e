// Package source defines the shared contract for upstream data sources.
// Each source package composes the shared cache, transport and metrics
// through Deps rather than inheriting from a base type.
package source

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/goborsa/borsa/internal/cache"
	"github.com/goborsa/borsa/internal/config"
	"github.com/goborsa/borsa/internal/core"
	"github.com/goborsa/borsa/internal/metrics"
	"github.com/goborsa/borsa/internal/transport"
)

// Deps carries the shared capabilities a source composes. The same cache
// instance is shared across all sources so TTL policy is process-wide.
type Deps struct {
	Cache *cache.Cache
	HTTP  *transport.Client
	Log   *zap.Logger
	Rec   *metrics.Recorder
	TTL   config.TTLConfig
}

// Quoter fetches a point-in-time snapshot for one identifier.
type Quoter interface {
	Name() string
	Quote(ctx context.Context, symbol string) (*core.Quote, error)
}

// Historian fetches bars for a resolved [start, end] range. Output is
// sorted ascending by time with no duplicate timestamps.
type Historian interface {
	Name() string
	History(ctx context.Context, symbol string, start, end time.Time, interval core.Interval) ([]core.Bar, error)
}

// Source is a full quote+history capable upstream.
type Source interface {
	Quoter
	Historian
}
