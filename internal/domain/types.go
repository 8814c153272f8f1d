// Package domain defines the core data model shared across the vantage
// backtest engine: price series, investment plans, portfolio trajectories,
// and backtest results.
package domain

import "time"

// ---------------------------------------------------------------------------
// Price data
// ---------------------------------------------------------------------------

// PricePoint is a single daily closing price for an instrument.
type PricePoint struct {
	Date  time.Time
	Close float64
}

// PriceSeries is an ordered sequence of daily price points for one
// instrument. Dates are strictly increasing; non-trading days are absent.
type PriceSeries []PricePoint

// First returns the earliest point in the series. The series must be
// non-empty.
func (s PriceSeries) First() PricePoint { return s[0] }

// Last returns the latest point in the series. The series must be non-empty.
func (s PriceSeries) Last() PricePoint { return s[len(s)-1] }

// Closes returns the closing prices in series order.
func (s PriceSeries) Closes() []float64 {
	closes := make([]float64, len(s))
	for i, p := range s {
		closes[i] = p.Close
	}
	return closes
}

// ---------------------------------------------------------------------------
// Investment plans
// ---------------------------------------------------------------------------

// Frequency identifies a periodic contribution schedule.
type Frequency string

// FrequencyMonthly contributes on the first trading day of each calendar
// month. It is the only frequency currently supported.
const FrequencyMonthly Frequency = "monthly"

// StrategyKind names an investment strategy as it appears on the wire.
type StrategyKind string

const (
	StrategyLumpSum StrategyKind = "lump_sum"
	StrategyDCA     StrategyKind = "dca"
)

// ---------------------------------------------------------------------------
// Simulation output
// ---------------------------------------------------------------------------

// PortfolioPoint is the portfolio value on a single trading day.
type PortfolioPoint struct {
	Date  time.Time
	Value float64
}

// PortfolioTrajectory is the day-by-day portfolio value over an aligned
// price series. It covers every date of the series that produced it and is
// read-only once built.
type PortfolioTrajectory []PortfolioPoint

// Values returns the portfolio values in trajectory order.
func (t PortfolioTrajectory) Values() []float64 {
	values := make([]float64, len(t))
	for i, p := range t {
		values[i] = p.Value
	}
	return values
}

// ---------------------------------------------------------------------------
// Results
// ---------------------------------------------------------------------------

// BacktestResult is the per-instrument outcome of a backtest run.
// TotalReturn, CAGR, MaxDrawdown, and Volatility are percentage-scaled
// (20.0 means 20%); SharpeRatio is unitless. MaxDrawdown is always <= 0.
type BacktestResult struct {
	Symbol           string
	Name             string
	TotalReturn      float64
	CAGR             float64
	MaxDrawdown      float64
	Volatility       float64
	SharpeRatio      float64
	FinalValue       float64
	TotalInvested    float64
	PortfolioHistory PortfolioTrajectory
}

// ComparisonSummary ranks a set of backtest results against one another.
// LowestRisk is empty when no result has positive volatility. Ties resolve
// to the earliest result in input order.
type ComparisonSummary struct {
	BestPerformer string
	HighestReturn float64
	LowestRisk    string
	BestSharpe    string
}

// ---------------------------------------------------------------------------
// Instruments
// ---------------------------------------------------------------------------

// Instrument describes a tradable symbol for search and display purposes.
type Instrument struct {
	Symbol   string
	Name     string
	Exchange string
}
