package backtest

import (
	"context"
	"log/slog"
	"math"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"vantage/internal/domain"
	"vantage/internal/marketdata"
)

// Defaults for the per-symbol fetch fan-out.
const (
	DefaultMaxFetches   = 8
	DefaultFetchTimeout = 30 * time.Second
)

// SymbolError annotates a per-symbol failure inside an otherwise successful
// run.
type SymbolError struct {
	Symbol string
	Err    error
}

func (e SymbolError) Error() string { return e.Symbol + ": " + e.Err.Error() }

// Unwrap exposes the underlying error for errors.Is matching.
func (e SymbolError) Unwrap() error { return e.Err }

// Report is the outcome of a multi-symbol backtest run. Results preserves
// the requested symbol order. A symbol appears in exactly one of Results or
// Errors; Comparison covers Results only.
type Report struct {
	Results    []domain.BacktestResult
	Errors     []SymbolError
	Comparison domain.ComparisonSummary
}

// AllFailed reports whether no symbol produced a result.
func (r *Report) AllFailed() bool { return len(r.Results) == 0 }

// Runner orchestrates backtests across symbols: it fetches price series
// concurrently with a bounded fan-out, runs the strategy simulator and
// metrics per symbol, and aggregates the cross-symbol comparison.
type Runner struct {
	source       marketdata.Source
	resolver     marketdata.Resolver // optional; nil means symbol-as-name
	maxFetches   int
	fetchTimeout time.Duration
	log          *slog.Logger
}

// NewRunner creates a Runner reading prices from the given source. resolver
// may be nil, in which case results carry the symbol as their display name.
func NewRunner(source marketdata.Source, resolver marketdata.Resolver) *Runner {
	return &Runner{
		source:       source,
		resolver:     resolver,
		maxFetches:   DefaultMaxFetches,
		fetchTimeout: DefaultFetchTimeout,
		log:          slog.Default().With("component", "backtest"),
	}
}

// SetFanOut overrides the fetch concurrency cap and per-fetch timeout.
// Non-positive arguments keep the current values.
func (r *Runner) SetFanOut(maxFetches int, fetchTimeout time.Duration) {
	if maxFetches > 0 {
		r.maxFetches = maxFetches
	}
	if fetchTimeout > 0 {
		r.fetchTimeout = fetchTimeout
	}
}

// Run executes the strategy over every requested symbol within [start, end].
//
// Validation errors (ErrInvalidRange, and ErrInvalidInvestment surfaced by
// strategy construction upstream) abort the whole run before any fetch.
// Per-symbol failures do not: each failing symbol becomes a SymbolError in
// the report and the remaining symbols still produce results. Callers decide
// how to treat a report whose symbols all failed.
func (r *Runner) Run(ctx context.Context, symbols []string, start, end time.Time, strat Strategy) (*Report, error) {
	if err := ValidateWindow(start, end); err != nil {
		return nil, err
	}

	type outcome struct {
		result *domain.BacktestResult
		err    error
	}
	outcomes := make([]outcome, len(symbols))

	// Bounded fan-out over symbols; no shared state below the aggregation
	// point, so each slot is written by exactly one goroutine.
	sem := make(chan struct{}, r.maxFetches)
	g, gctx := errgroup.WithContext(ctx)

	started := time.Now()
	for i, sym := range symbols {
		i, sym := i, strings.ToUpper(strings.TrimSpace(sym))
		g.Go(func() error {
			sem <- struct{}{}
			defer func() { <-sem }()

			res, err := r.runSymbol(gctx, sym, start, end, strat)
			if err != nil {
				r.log.Warn("symbol failed", "symbol", sym, "error", err)
				outcomes[i] = outcome{err: err}
				return nil // per-symbol failures never abort the group
			}
			outcomes[i] = outcome{result: res}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	report := &Report{}
	for i, o := range outcomes {
		switch {
		case o.result != nil:
			report.Results = append(report.Results, *o.result)
		case o.err != nil:
			report.Errors = append(report.Errors, SymbolError{Symbol: strings.ToUpper(strings.TrimSpace(symbols[i])), Err: o.err})
		}
	}
	report.Comparison = Compare(report.Results)

	r.log.Info("run complete",
		"symbols", len(symbols),
		"ok", len(report.Results),
		"failed", len(report.Errors),
		"strategy", strat.Name(),
		"elapsed", time.Since(started).Round(time.Millisecond),
	)
	return report, nil
}

// runSymbol fetches, aligns, simulates, and measures a single symbol.
func (r *Runner) runSymbol(ctx context.Context, symbol string, start, end time.Time, strat Strategy) (*domain.BacktestResult, error) {
	fetchCtx, cancel := context.WithTimeout(ctx, r.fetchTimeout)
	defer cancel()

	raw, err := r.source.Fetch(fetchCtx, symbol, start, end)
	if err != nil {
		return nil, err
	}

	series, err := AlignSeries(raw, start, end)
	if err != nil {
		return nil, err
	}

	traj, invested, err := strat.Simulate(series)
	if err != nil {
		return nil, err
	}

	result := assembleResult(symbol, series, traj, invested)
	result.Name = r.displayName(ctx, symbol)
	return result, nil
}

// displayName resolves a human-readable name, falling back to the symbol.
// Resolution failures are cosmetic and never fail the symbol.
func (r *Runner) displayName(ctx context.Context, symbol string) string {
	if r.resolver == nil {
		return symbol
	}
	inst, err := r.resolver.Resolve(ctx, symbol)
	if err != nil || inst.Name == "" {
		return symbol
	}
	return inst.Name
}

// assembleResult computes the metric set for one simulated trajectory and
// converts to the percentage-scaled, 2-decimal result convention.
//
// Volatility and Sharpe are computed from the price series' daily returns:
// identical to trajectory returns for lump sum, and free of contribution-day
// jumps for DCA.
func assembleResult(symbol string, series domain.PriceSeries, traj domain.PortfolioTrajectory, invested float64) *domain.BacktestResult {
	values := traj.Values()
	finalValue := values[len(values)-1]

	years := Years(series.First().Date, series.Last().Date)
	returns := DailyReturns(series.Closes())

	return &domain.BacktestResult{
		Symbol:           symbol,
		TotalReturn:      round2(TotalReturn(finalValue, invested) * 100),
		CAGR:             round2(CAGR(firstNonZero(values), finalValue, years) * 100),
		MaxDrawdown:      round2(MaxDrawdown(values) * 100),
		Volatility:       round2(Volatility(returns) * 100),
		SharpeRatio:      round2(SharpeRatio(returns, DefaultRiskFreeRate)),
		FinalValue:       round2(finalValue),
		TotalInvested:    round2(invested),
		PortfolioHistory: traj,
	}
}

// firstNonZero returns the first positive value, or 0 when there is none.
// Simulators always purchase on day one, so this is the day-one value in
// practice.
func firstNonZero(values []float64) float64 {
	for _, v := range values {
		if v > 0 {
			return v
		}
	}
	return 0
}

func round2(x float64) float64 {
	return math.Round(x*100) / 100
}
