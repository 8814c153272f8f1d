package backtest

import (
	"fmt"
	"time"

	"vantage/internal/domain"
)

// Strategy simulates an investment plan over an aligned price series and
// produces the day-by-day portfolio value plus the total capital invested.
// Implementations are pure: the same series always yields the same
// trajectory.
type Strategy interface {
	// Name returns the wire identifier for this strategy.
	Name() domain.StrategyKind

	// Simulate walks the series and returns one portfolio point per price
	// point, together with the total amount invested.
	Simulate(series domain.PriceSeries) (domain.PortfolioTrajectory, float64, error)
}

// Compile-time interface checks.
var _ Strategy = (*LumpSum)(nil)
var _ Strategy = (*DCA)(nil)

// NewStrategy resolves a strategy kind and plan parameters into a Strategy.
// This is the single dispatch point; nothing downstream branches on the
// kind string. Returns ErrInvalidInvestment for a non-positive amount, a
// DCA plan without a supported frequency, or an unknown kind.
func NewStrategy(kind domain.StrategyKind, amount float64, freq domain.Frequency) (Strategy, error) {
	if amount <= 0 {
		return nil, fmt.Errorf("%w: amount %.2f must be positive", ErrInvalidInvestment, amount)
	}
	switch kind {
	case domain.StrategyLumpSum:
		return &LumpSum{Amount: amount}, nil
	case domain.StrategyDCA:
		if freq != domain.FrequencyMonthly {
			return nil, fmt.Errorf("%w: unsupported frequency %q", ErrInvalidInvestment, freq)
		}
		return &DCA{AmountPerPeriod: amount, Frequency: freq}, nil
	default:
		return nil, fmt.Errorf("%w: unknown strategy %q", ErrInvalidInvestment, kind)
	}
}

// ---------------------------------------------------------------------------
// Lump sum
// ---------------------------------------------------------------------------

// LumpSum invests the full amount at the first date of the series.
// Fractional shares are allowed: this models continuous capital allocation,
// not discrete share lots.
type LumpSum struct {
	Amount float64
}

// Name returns "lump_sum".
func (s *LumpSum) Name() domain.StrategyKind { return domain.StrategyLumpSum }

// Simulate buys Amount/close[0] shares on the first day and marks the
// position to market on every subsequent day.
func (s *LumpSum) Simulate(series domain.PriceSeries) (domain.PortfolioTrajectory, float64, error) {
	if s.Amount <= 0 {
		return nil, 0, fmt.Errorf("%w: amount %.2f must be positive", ErrInvalidInvestment, s.Amount)
	}
	if len(series) == 0 {
		return nil, 0, fmt.Errorf("%w: empty series", ErrInsufficientData)
	}

	shares := s.Amount / series.First().Close
	traj := make(domain.PortfolioTrajectory, len(series))
	for i, p := range series {
		traj[i] = domain.PortfolioPoint{Date: p.Date, Value: shares * p.Close}
	}
	return traj, s.Amount, nil
}

// ---------------------------------------------------------------------------
// Dollar-cost averaging
// ---------------------------------------------------------------------------

// DCA invests AmountPerPeriod on the first trading day of each calendar
// month. The first purchase always happens on the first date of the series,
// even mid-month; afterwards a purchase triggers on the first point whose
// (year, month) differs from the previous purchase's. A month whose trading
// days all fall outside the series is simply skipped.
type DCA struct {
	AmountPerPeriod float64
	Frequency       domain.Frequency
}

// Name returns "dca".
func (s *DCA) Name() domain.StrategyKind { return domain.StrategyDCA }

// Simulate walks the series, accumulating shares at each monthly purchase,
// and marks the cumulative position to market on every day.
func (s *DCA) Simulate(series domain.PriceSeries) (domain.PortfolioTrajectory, float64, error) {
	if s.AmountPerPeriod <= 0 {
		return nil, 0, fmt.Errorf("%w: amount %.2f must be positive", ErrInvalidInvestment, s.AmountPerPeriod)
	}
	if s.Frequency != domain.FrequencyMonthly {
		return nil, 0, fmt.Errorf("%w: unsupported frequency %q", ErrInvalidInvestment, s.Frequency)
	}
	if len(series) == 0 {
		return nil, 0, fmt.Errorf("%w: empty series", ErrInsufficientData)
	}

	var (
		shares    float64
		purchases int
		lastYear  int
		lastMonth time.Month
	)

	traj := make(domain.PortfolioTrajectory, len(series))
	for i, p := range series {
		year, month := p.Date.Year(), p.Date.Month()
		if purchases == 0 || year != lastYear || month != lastMonth {
			shares += s.AmountPerPeriod / p.Close
			purchases++
			lastYear, lastMonth = year, month
		}
		traj[i] = domain.PortfolioPoint{Date: p.Date, Value: shares * p.Close}
	}

	return traj, s.AmountPerPeriod * float64(purchases), nil
}
