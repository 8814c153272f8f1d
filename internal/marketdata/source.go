// Package marketdata supplies daily price series and instrument metadata
// from external market-data providers, with optional local caching.
package marketdata

import (
	"context"
	"errors"
	"time"

	"vantage/internal/domain"
)

// ErrSymbolNotFound indicates the provider cannot resolve the symbol.
var ErrSymbolNotFound = errors.New("symbol not found")

// ErrUpstreamUnavailable indicates the provider errored or timed out for
// reasons unrelated to the symbol itself.
var ErrUpstreamUnavailable = errors.New("market data provider unavailable")

// Source supplies an ordered daily closing-price series for a symbol over
// [start, end]. Gaps on non-trading days are expected; dates are strictly
// increasing. Implementations return ErrSymbolNotFound or
// ErrUpstreamUnavailable (possibly wrapped) on failure.
type Source interface {
	Fetch(ctx context.Context, symbol string, start, end time.Time) (domain.PriceSeries, error)
}

// Resolver looks up display metadata for a symbol.
type Resolver interface {
	Resolve(ctx context.Context, symbol string) (domain.Instrument, error)
}
