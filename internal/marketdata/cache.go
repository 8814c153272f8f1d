package marketdata

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"vantage/internal/domain"
	"vantage/internal/store"
)

// Compile-time interface check.
var _ Source = (*CachedSource)(nil)

// edgeSlack is how close a cached series must reach to each window edge to
// count as a hit. Markets close over weekends and holidays, so the first and
// last cached points rarely land exactly on the requested dates.
const edgeSlack = 7 * 24 * time.Hour

// CachedSource wraps a Source with a read-through price cache. Hits are
// served from the store; misses fall through to the inner source and are
// written back best-effort.
type CachedSource struct {
	inner  Source
	prices store.PriceStore
	log    *slog.Logger
}

// NewCachedSource wraps inner with the given price store.
func NewCachedSource(inner Source, prices store.PriceStore) *CachedSource {
	return &CachedSource{
		inner:  inner,
		prices: prices,
		log:    slog.Default().With("source", "cache"),
	}
}

// Fetch serves the window from the cache when it covers both edges, and
// otherwise delegates to the inner source.
func (c *CachedSource) Fetch(ctx context.Context, symbol string, start, end time.Time) (domain.PriceSeries, error) {
	symbol = strings.ToUpper(symbol)

	cached, err := c.prices.ReadSeries(ctx, symbol, start, end)
	if err == nil && covers(cached, start, end) {
		c.log.Debug("cache hit", "symbol", symbol, "points", len(cached))
		return cached, nil
	}

	series, err := c.inner.Fetch(ctx, symbol, start, end)
	if err != nil {
		return nil, err
	}

	if werr := c.prices.WriteSeries(ctx, symbol, series); werr != nil {
		// A failed write-back never fails the fetch.
		c.log.Warn("cache write failed", "symbol", symbol, "error", werr)
	}
	return series, nil
}

// covers reports whether the cached series reaches within edgeSlack of both
// window edges.
func covers(series domain.PriceSeries, start, end time.Time) bool {
	if len(series) == 0 {
		return false
	}
	if series.First().Date.Sub(start) > edgeSlack {
		return false
	}
	if end.Sub(series.Last().Date) > edgeSlack {
		return false
	}
	return true
}
