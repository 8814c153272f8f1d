package backtest

import "errors"

// Request-level validation errors. These are detected before any simulation
// runs and abort the whole request.
var (
	// ErrInvalidRange indicates start_date >= end_date or a window longer
	// than MaxRangeYears.
	ErrInvalidRange = errors.New("invalid date range")

	// ErrInvalidInvestment indicates a non-positive amount, or a DCA plan
	// without a supported frequency.
	ErrInvalidInvestment = errors.New("invalid investment")
)

// ErrInsufficientData indicates an aligned series shorter than
// MinSeriesPoints. It is scoped to a single symbol.
var ErrInsufficientData = errors.New("insufficient price data")
