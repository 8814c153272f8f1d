package marketdata

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/alpacahq/alpaca-trade-api-go/v3/alpaca"
	"github.com/alpacahq/alpaca-trade-api-go/v3/marketdata"

	"vantage/internal/domain"
	"vantage/internal/util"
)

// Compile-time interface checks.
var _ Source = (*AlpacaSource)(nil)
var _ Resolver = (*AlpacaSource)(nil)

// AlpacaSource fetches daily closing prices and asset metadata from the
// Alpaca APIs. Calls are rate limited and retried with backoff.
type AlpacaSource struct {
	data    *marketdata.Client
	trading *alpaca.Client
	limiter *util.RateLimiter
	log     *slog.Logger
}

// NewAlpacaSource creates an AlpacaSource with the given credentials.
// dataURL and baseURL may be empty to use the SDK defaults. rateLimitPerMin
// and rateLimitBurst cap outgoing API calls.
func NewAlpacaSource(apiKey, apiSecret, dataURL, baseURL string, rateLimitPerMin, rateLimitBurst int) *AlpacaSource {
	dataOpts := marketdata.ClientOpts{
		APIKey:    apiKey,
		APISecret: apiSecret,
	}
	if dataURL != "" {
		dataOpts.BaseURL = dataURL
	}

	tradingOpts := alpaca.ClientOpts{
		APIKey:    apiKey,
		APISecret: apiSecret,
	}
	if baseURL != "" {
		tradingOpts.BaseURL = baseURL
	}

	return &AlpacaSource{
		data:    marketdata.NewClient(dataOpts),
		trading: alpaca.NewClient(tradingOpts),
		limiter: util.NewRateLimiter(rateLimitPerMin, rateLimitBurst),
		log:     slog.Default().With("source", "alpaca"),
	}
}

// Fetch returns the daily close series for symbol over [start, end]. An
// empty bar response maps to ErrSymbolNotFound; transport failures map to
// ErrUpstreamUnavailable.
func (s *AlpacaSource) Fetch(ctx context.Context, symbol string, start, end time.Time) (domain.PriceSeries, error) {
	symbol = strings.ToUpper(symbol)

	if err := s.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	var bars []marketdata.Bar
	err := util.Retry(ctx, 3, 500*time.Millisecond, func() error {
		var ferr error
		bars, ferr = s.data.GetBars(symbol, marketdata.GetBarsRequest{
			TimeFrame: marketdata.OneDay,
			Start:     start,
			End:       end,
		})
		return ferr
	})
	if err != nil {
		if isNotFound(err) {
			return nil, fmt.Errorf("%w: %s", ErrSymbolNotFound, symbol)
		}
		return nil, fmt.Errorf("%w: GetBars %s: %v", ErrUpstreamUnavailable, symbol, err)
	}

	if len(bars) == 0 {
		// Alpaca answers unknown symbols with an empty bar set.
		return nil, fmt.Errorf("%w: %s", ErrSymbolNotFound, symbol)
	}

	series := make(domain.PriceSeries, 0, len(bars))
	for _, b := range bars {
		series = append(series, domain.PricePoint{
			Date:  b.Timestamp.UTC().Truncate(24 * time.Hour),
			Close: b.Close,
		})
	}
	return series, nil
}

// Resolve looks up display metadata for a symbol via the assets API.
func (s *AlpacaSource) Resolve(ctx context.Context, symbol string) (domain.Instrument, error) {
	symbol = strings.ToUpper(symbol)

	if err := s.limiter.Wait(ctx); err != nil {
		return domain.Instrument{}, err
	}

	asset, err := s.trading.GetAsset(symbol)
	if err != nil {
		if isNotFound(err) {
			return domain.Instrument{}, fmt.Errorf("%w: %s", ErrSymbolNotFound, symbol)
		}
		return domain.Instrument{}, fmt.Errorf("%w: GetAsset %s: %v", ErrUpstreamUnavailable, symbol, err)
	}

	return domain.Instrument{
		Symbol:   asset.Symbol,
		Name:     asset.Name,
		Exchange: asset.Exchange,
	}, nil
}

// isNotFound reports whether the Alpaca API rejected the symbol itself, as
// opposed to failing for transport or auth reasons.
func isNotFound(err error) bool {
	var apiErr *alpaca.APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == 404 || apiErr.StatusCode == 422
	}
	return false
}
