package backtest

import (
	"math"
	"testing"
	"time"
)

func approx(t *testing.T, name string, got, want, tol float64) {
	t.Helper()
	if math.Abs(got-want) > tol {
		t.Errorf("%s = %v, want %v (±%v)", name, got, want, tol)
	}
}

func TestTotalReturn(t *testing.T) {
	approx(t, "TotalReturn(12000, 10000)", TotalReturn(12000, 10000), 0.2, 1e-12)
	approx(t, "TotalReturn(9000, 10000)", TotalReturn(9000, 10000), -0.1, 1e-12)

	if got := TotalReturn(12000, 0); got != 0 {
		t.Errorf("TotalReturn with zero invested = %v, want 0", got)
	}
	if got := TotalReturn(12000, -5); got != 0 {
		t.Errorf("TotalReturn with negative invested = %v, want 0", got)
	}
}

func TestYears(t *testing.T) {
	first := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	last := first.AddDate(0, 0, 365)
	approx(t, "Years(365 days)", Years(first, last), 365.0/365.25, 1e-9)
}

func TestCAGR(t *testing.T) {
	// Doubling over exactly 2 years: (2)^(1/2) - 1.
	approx(t, "CAGR(100, 200, 2)", CAGR(100, 200, 2), math.Sqrt2-1, 1e-12)

	// Sentinels.
	if got := CAGR(0, 200, 2); got != 0 {
		t.Errorf("CAGR with zero initial = %v, want 0", got)
	}
	if got := CAGR(100, 200, 0); got != 0 {
		t.Errorf("CAGR with zero years = %v, want 0", got)
	}
	if got := CAGR(100, 0, 2); got != -1 {
		t.Errorf("CAGR with zero final = %v, want -1 (total loss)", got)
	}
}

func TestDailyReturns(t *testing.T) {
	returns := DailyReturns([]float64{100, 110, 99})
	if len(returns) != 2 {
		t.Fatalf("DailyReturns returned %d entries, want 2", len(returns))
	}
	approx(t, "returns[0]", returns[0], 0.1, 1e-12)
	approx(t, "returns[1]", returns[1], -0.1, 1e-12)

	if got := DailyReturns([]float64{100}); got != nil {
		t.Errorf("DailyReturns(1 value) = %v, want nil", got)
	}
}

func TestMaxDrawdown(t *testing.T) {
	// Peak 110, trough 90: (90-110)/110 = -18.18%.
	approx(t, "MaxDrawdown", MaxDrawdown([]float64{100, 110, 90, 120}), -20.0/110.0, 1e-12)

	// Non-decreasing series has zero drawdown.
	if got := MaxDrawdown([]float64{100, 100, 120, 150}); got != 0 {
		t.Errorf("MaxDrawdown(non-decreasing) = %v, want 0", got)
	}
	if got := MaxDrawdown(nil); got != 0 {
		t.Errorf("MaxDrawdown(empty) = %v, want 0", got)
	}

	// Never positive.
	if got := MaxDrawdown([]float64{50, 200, 30, 500}); got > 0 {
		t.Errorf("MaxDrawdown = %v, want <= 0", got)
	}
}

func TestVolatility(t *testing.T) {
	// Sample stdev of {0.1, -0.1} is 0.1*sqrt(2), annualized by sqrt(252).
	want := math.Sqrt(0.02) * math.Sqrt(252)
	approx(t, "Volatility", Volatility([]float64{0.1, -0.1}), want, 1e-9)

	if got := Volatility([]float64{0.05}); got != 0 {
		t.Errorf("Volatility(1 observation) = %v, want 0", got)
	}
	if got := Volatility([]float64{0.01, 0.01, 0.01}); got != 0 {
		t.Errorf("Volatility(flat returns) = %v, want 0", got)
	}
	if got := Volatility([]float64{0.2, -0.3, 0.1}); got < 0 {
		t.Errorf("Volatility = %v, want >= 0", got)
	}
}

func TestSharpeRatio(t *testing.T) {
	// Zero volatility short-circuits to 0.
	if got := SharpeRatio([]float64{0.01, 0.01}, DefaultRiskFreeRate); got != 0 {
		t.Errorf("SharpeRatio(flat) = %v, want 0", got)
	}
	if got := SharpeRatio(nil, DefaultRiskFreeRate); got != 0 {
		t.Errorf("SharpeRatio(empty) = %v, want 0", got)
	}

	// Hand-computed: returns {0.1, -0.1, 0.1} → mean 1/30, stdev n-1 of
	// {0.1,-0.1,0.1}; sharpe = (mean*252 - 0.02) / (stdev*sqrt(252)).
	returns := []float64{0.1, -0.1, 0.1}
	m := (0.1 - 0.1 + 0.1) / 3
	variance := ((0.1-m)*(0.1-m) + (-0.1-m)*(-0.1-m) + (0.1-m)*(0.1-m)) / 2
	want := (m*252 - 0.02) / (math.Sqrt(variance) * math.Sqrt(252))
	approx(t, "SharpeRatio", SharpeRatio(returns, DefaultRiskFreeRate), want, 1e-9)
}
