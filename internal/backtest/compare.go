package backtest

import "vantage/internal/domain"

// Compare ranks successful backtest results against one another. Only
// results with positive volatility compete for LowestRisk; LowestRisk is
// empty when none qualify. Strict comparisons mean ties resolve to the
// earliest result in input order. An empty input yields a zero summary.
func Compare(results []domain.BacktestResult) domain.ComparisonSummary {
	if len(results) == 0 {
		return domain.ComparisonSummary{}
	}

	best := results[0]
	bestSharpe := results[0]
	var lowestRisk *domain.BacktestResult

	for i := range results {
		r := results[i]
		if r.TotalReturn > best.TotalReturn {
			best = r
		}
		if r.SharpeRatio > bestSharpe.SharpeRatio {
			bestSharpe = r
		}
		if r.Volatility > 0 && (lowestRisk == nil || r.Volatility < lowestRisk.Volatility) {
			lowestRisk = &results[i]
		}
	}

	summary := domain.ComparisonSummary{
		BestPerformer: best.Symbol,
		HighestReturn: best.TotalReturn,
		BestSharpe:    bestSharpe.Symbol,
	}
	if lowestRisk != nil {
		summary.LowestRisk = lowestRisk.Symbol
	}
	return summary
}
