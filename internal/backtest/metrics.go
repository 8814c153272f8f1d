package backtest

import (
	"math"
	"time"
)

// TradingDaysPerYear is the annualization factor for daily return series.
const TradingDaysPerYear = 252

// DefaultRiskFreeRate is the annualized risk-free rate used by the Sharpe
// ratio, as a fraction (0.02 = 2%).
const DefaultRiskFreeRate = 0.02

// All functions in this file work in fractional scale (0.2 = 20%).
// Percentage scaling happens once, when the orchestrator assembles a
// BacktestResult.

// TotalReturn returns (final - invested) / invested, or 0 when invested is
// not positive.
func TotalReturn(finalValue, totalInvested float64) float64 {
	if totalInvested <= 0 {
		return 0
	}
	return (finalValue - totalInvested) / totalInvested
}

// Years returns the elapsed time between two dates in 365.25-day years.
func Years(first, last time.Time) float64 {
	return last.Sub(first).Hours() / 24 / 365.25
}

// CAGR returns the compound annual growth rate as a fraction. It returns 0
// when initialValue or years is not positive, and -1 (total loss) when
// finalValue is not positive.
func CAGR(initialValue, finalValue, years float64) float64 {
	if years <= 0 || initialValue <= 0 {
		return 0
	}
	if finalValue <= 0 {
		return -1
	}
	return math.Pow(finalValue/initialValue, 1/years) - 1
}

// DailyReturns computes value[i]/value[i-1] - 1 for i >= 1. The result has
// len(values)-1 entries, or is empty for fewer than 2 values.
func DailyReturns(values []float64) []float64 {
	if len(values) < 2 {
		return nil
	}
	returns := make([]float64, 0, len(values)-1)
	for i := 1; i < len(values); i++ {
		returns = append(returns, values[i]/values[i-1]-1)
	}
	return returns
}

// MaxDrawdown returns the largest peak-to-trough decline in the value
// series as a fraction <= 0. A non-decreasing (or empty) series yields 0.
func MaxDrawdown(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	peak := values[0]
	maxDD := 0.0
	for _, v := range values {
		if v > peak {
			peak = v
		}
		dd := (v - peak) / peak
		if dd < maxDD {
			maxDD = dd
		}
	}
	return maxDD
}

// Volatility returns the annualized sample standard deviation of the daily
// return series (stdev × √252) as a fraction. Fewer than 2 observations
// yield 0.
func Volatility(returns []float64) float64 {
	sd := sampleStdev(returns)
	if sd < 1e-10 {
		// Guard against floating-point dust on flat series.
		return 0
	}
	return sd * math.Sqrt(TradingDaysPerYear)
}

// SharpeRatio returns (annualized mean return - riskFreeRate) / volatility.
// It returns 0 when volatility is 0 (flat or too-short series).
func SharpeRatio(returns []float64, riskFreeRate float64) float64 {
	vol := Volatility(returns)
	if vol == 0 {
		return 0
	}
	annualReturn := mean(returns) * TradingDaysPerYear
	return (annualReturn - riskFreeRate) / vol
}

func mean(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	sum := 0.0
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}

// sampleStdev computes the n-1 denominator standard deviation.
func sampleStdev(xs []float64) float64 {
	if len(xs) < 2 {
		return 0
	}
	m := mean(xs)
	variance := 0.0
	for _, x := range xs {
		d := x - m
		variance += d * d
	}
	variance /= float64(len(xs) - 1)
	return math.Sqrt(variance)
}
