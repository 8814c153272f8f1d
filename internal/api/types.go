package api

import (
	"time"

	"vantage/internal/domain"
)

// maxHistoryPoints caps the portfolio history returned per symbol. Longer
// trajectories are downsampled to month ends.
const maxHistoryPoints = 100

// ---------------------------------------------------------------------------
// Request types
// ---------------------------------------------------------------------------

// BacktestRequest is the POST /api/backtest body.
type BacktestRequest struct {
	Symbols    []string       `json:"symbols"`
	StartDate  string         `json:"start_date"` // YYYY-MM-DD
	EndDate    string         `json:"end_date"`   // YYYY-MM-DD
	Strategy   string         `json:"strategy"`   // lump_sum | dca
	Investment InvestmentJSON `json:"investment"`
}

// InvestmentJSON is the plan parameters of a backtest request.
type InvestmentJSON struct {
	Amount    float64 `json:"amount"`
	Frequency string  `json:"frequency,omitempty"` // dca only, defaults to monthly
}

// ---------------------------------------------------------------------------
// Response types
// ---------------------------------------------------------------------------

// HealthResponse reports service liveness.
type HealthResponse struct {
	Status string `json:"status"`
	Time   string `json:"time"`
}

// InstrumentJSON is one searchable instrument.
type InstrumentJSON struct {
	Symbol   string `json:"symbol"`
	Name     string `json:"name"`
	Exchange string `json:"exchange,omitempty"`
}

// SymbolDetailJSON extends InstrumentJSON with the most recent close, when
// the price source can supply one.
type SymbolDetailJSON struct {
	Symbol    string   `json:"symbol"`
	Name      string   `json:"name"`
	Exchange  string   `json:"exchange,omitempty"`
	LastClose *float64 `json:"last_close,omitempty"`
	AsOf      string   `json:"as_of,omitempty"`
}

// SearchResponse lists instruments matching a query.
type SearchResponse struct {
	Results []InstrumentJSON `json:"results"`
}

// PortfolioPointJSON is one dated portfolio value.
type PortfolioPointJSON struct {
	Date  string  `json:"date"`
	Value float64 `json:"value"`
}

// ResultJSON is the per-symbol backtest outcome.
type ResultJSON struct {
	Symbol           string               `json:"symbol"`
	Name             string               `json:"name"`
	TotalReturn      float64              `json:"total_return"`
	CAGR             float64              `json:"cagr"`
	MaxDrawdown      float64              `json:"max_drawdown"`
	Volatility       float64              `json:"volatility"`
	SharpeRatio      float64              `json:"sharpe_ratio"`
	FinalValue       float64              `json:"final_value"`
	TotalInvested    float64              `json:"total_invested"`
	PortfolioHistory []PortfolioPointJSON `json:"portfolio_history"`
}

// SymbolErrorJSON annotates a symbol that failed during a run.
type SymbolErrorJSON struct {
	Symbol string `json:"symbol"`
	Error  string `json:"error"`
}

// ComparisonJSON summarizes the cross-symbol ranking.
type ComparisonJSON struct {
	BestPerformer string  `json:"best_performer"`
	HighestReturn float64 `json:"highest_return"`
	LowestRisk    string  `json:"lowest_risk"`
	BestSharpe    string  `json:"best_sharpe"`
}

// BacktestResponse is the POST /api/backtest reply.
type BacktestResponse struct {
	Results    []ResultJSON      `json:"results"`
	Errors     []SymbolErrorJSON `json:"errors,omitempty"`
	Comparison *ComparisonJSON   `json:"comparison,omitempty"`
}

// RunJSON is one recorded backtest run.
type RunJSON struct {
	ID            int64   `json:"id"`
	CreatedAt     string  `json:"created_at"`
	Symbols       string  `json:"symbols"`
	Strategy      string  `json:"strategy"`
	StartDate     string  `json:"start_date"`
	EndDate       string  `json:"end_date"`
	Amount        float64 `json:"amount"`
	BestPerformer string  `json:"best_performer"`
	ResultCount   int     `json:"result_count"`
	ErrorCount    int     `json:"error_count"`
}

// RunsResponse lists recent runs, newest first.
type RunsResponse struct {
	Runs []RunJSON `json:"runs"`
}

// ---------------------------------------------------------------------------
// Converters
// ---------------------------------------------------------------------------

func convertResult(res domain.BacktestResult) ResultJSON {
	return ResultJSON{
		Symbol:           res.Symbol,
		Name:             res.Name,
		TotalReturn:      res.TotalReturn,
		CAGR:             res.CAGR,
		MaxDrawdown:      res.MaxDrawdown,
		Volatility:       res.Volatility,
		SharpeRatio:      res.SharpeRatio,
		FinalValue:       res.FinalValue,
		TotalInvested:    res.TotalInvested,
		PortfolioHistory: convertHistory(SamplePortfolioHistory(res.PortfolioHistory, maxHistoryPoints)),
	}
}

func convertHistory(traj domain.PortfolioTrajectory) []PortfolioPointJSON {
	out := make([]PortfolioPointJSON, 0, len(traj))
	for _, p := range traj {
		out = append(out, PortfolioPointJSON{
			Date:  p.Date.Format("2006-01-02"),
			Value: p.Value,
		})
	}
	return out
}

// SamplePortfolioHistory reduces a trajectory to at most max points. Short
// trajectories pass through untouched; longer ones keep the first point, the
// last trading day of each month, and the final point. If month ends alone
// still exceed max, the sample is thinned by a fixed stride.
func SamplePortfolioHistory(traj domain.PortfolioTrajectory, max int) domain.PortfolioTrajectory {
	if max <= 0 || len(traj) <= max {
		return traj
	}
	if max == 1 {
		return domain.PortfolioTrajectory{traj[len(traj)-1]}
	}

	sampled := domain.PortfolioTrajectory{traj[0]}
	for i := 1; i < len(traj)-1; i++ {
		if isMonthEnd(traj[i].Date, traj[i+1].Date) {
			sampled = append(sampled, traj[i])
		}
	}
	sampled = append(sampled, traj[len(traj)-1])

	if len(sampled) <= max {
		return sampled
	}

	// Stride over everything but the final point, which is appended
	// unconditionally, so size against max-1.
	stride := (len(sampled)-2)/(max-1) + 1
	thinned := make(domain.PortfolioTrajectory, 0, max)
	for i := 0; i < len(sampled)-1; i += stride {
		thinned = append(thinned, sampled[i])
	}
	return append(thinned, sampled[len(sampled)-1])
}

// isMonthEnd reports whether cur is the last trading day of its month, given
// the next trading day in the series.
func isMonthEnd(cur, next time.Time) bool {
	return cur.Month() != next.Month() || cur.Year() != next.Year()
}
