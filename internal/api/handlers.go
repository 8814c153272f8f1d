package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"vantage/internal/backtest"
	"vantage/internal/domain"
	"vantage/internal/marketdata"
	"vantage/internal/store"
)

// maxSymbolsPerRequest caps a single backtest request.
const maxSymbolsPerRequest = 10

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, HealthResponse{
		Status: "ok",
		Time:   time.Now().UTC().Format(time.RFC3339),
	})
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")

	matches := s.catalog.Search(q)
	results := make([]InstrumentJSON, 0, len(matches))
	for _, inst := range matches {
		results = append(results, InstrumentJSON{
			Symbol:   inst.Symbol,
			Name:     inst.Name,
			Exchange: inst.Exchange,
		})
	}
	writeJSON(w, SearchResponse{Results: results})
}

func (s *Server) handleSymbolDetail(w http.ResponseWriter, r *http.Request) {
	symbol := strings.ToUpper(r.PathValue("symbol"))
	if symbol == "" {
		writeError(w, http.StatusBadRequest, "symbol required")
		return
	}

	inst, ok := s.catalog.Lookup(symbol)
	if !ok {
		if s.resolver == nil {
			writeError(w, http.StatusNotFound, fmt.Sprintf("symbol %s not found", symbol))
			return
		}
		var err error
		inst, err = s.resolver.Resolve(r.Context(), symbol)
		if err != nil {
			if errors.Is(err, marketdata.ErrSymbolNotFound) {
				writeError(w, http.StatusNotFound, fmt.Sprintf("symbol %s not found", symbol))
				return
			}
			writeError(w, http.StatusBadGateway, "upstream data source unavailable")
			return
		}
	}

	detail := SymbolDetailJSON{Symbol: inst.Symbol, Name: inst.Name, Exchange: inst.Exchange}
	if p, ok := s.latestClose(r, inst.Symbol); ok {
		detail.LastClose = &p.Close
		detail.AsOf = p.Date.Format("2006-01-02")
	}
	writeJSON(w, detail)
}

// latestClose fetches the most recent close over the trailing month. A miss
// is cosmetic and never fails the detail request.
func (s *Server) latestClose(r *http.Request, symbol string) (domain.PricePoint, bool) {
	if s.source == nil {
		return domain.PricePoint{}, false
	}
	end := time.Now().UTC()
	series, err := s.source.Fetch(r.Context(), symbol, end.AddDate(0, -1, 0), end)
	if err != nil || len(series) == 0 {
		return domain.PricePoint{}, false
	}
	return series.Last(), true
}

func (s *Server) handleBacktest(w http.ResponseWriter, r *http.Request) {
	var req BacktestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	if len(req.Symbols) == 0 {
		writeError(w, http.StatusBadRequest, "at least one symbol is required")
		return
	}
	if len(req.Symbols) > maxSymbolsPerRequest {
		writeError(w, http.StatusBadRequest,
			fmt.Sprintf("at most %d symbols per request", maxSymbolsPerRequest))
		return
	}

	start, err := time.Parse("2006-01-02", req.StartDate)
	if err != nil {
		writeError(w, http.StatusBadRequest, "start_date must be YYYY-MM-DD")
		return
	}
	end, err := time.Parse("2006-01-02", req.EndDate)
	if err != nil {
		writeError(w, http.StatusBadRequest, "end_date must be YYYY-MM-DD")
		return
	}

	freq := domain.Frequency(req.Investment.Frequency)
	if req.Strategy == string(domain.StrategyDCA) && freq == "" {
		freq = domain.FrequencyMonthly
	}

	strat, err := backtest.NewStrategy(domain.StrategyKind(req.Strategy), req.Investment.Amount, freq)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	report, err := s.runner.Run(r.Context(), req.Symbols, start, end, strat)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if report.AllFailed() {
		status := http.StatusBadGateway
		msg := "all symbols failed"
		if allNotFoundOrShort(report.Errors) {
			status = http.StatusNotFound
			msg = "no usable data for requested symbols"
		}
		writeError(w, status, msg)
		return
	}

	s.recordRun(r, &req, report)

	resp := BacktestResponse{
		Results: make([]ResultJSON, 0, len(report.Results)),
	}
	for _, res := range report.Results {
		resp.Results = append(resp.Results, convertResult(res))
	}
	for _, se := range report.Errors {
		resp.Errors = append(resp.Errors, SymbolErrorJSON{Symbol: se.Symbol, Error: se.Err.Error()})
	}
	if len(report.Results) > 0 {
		resp.Comparison = &ComparisonJSON{
			BestPerformer: report.Comparison.BestPerformer,
			HighestReturn: report.Comparison.HighestReturn,
			LowestRisk:    report.Comparison.LowestRisk,
			BestSharpe:    report.Comparison.BestSharpe,
		}
	}
	writeJSON(w, resp)
}

// allNotFoundOrShort reports whether every per-symbol failure was the
// symbol's own fault rather than an upstream outage.
func allNotFoundOrShort(errs []backtest.SymbolError) bool {
	for _, se := range errs {
		if !errors.Is(se, marketdata.ErrSymbolNotFound) && !errors.Is(se, backtest.ErrInsufficientData) {
			return false
		}
	}
	return len(errs) > 0
}

// recordRun persists the run best-effort; failures only log.
func (s *Server) recordRun(r *http.Request, req *BacktestRequest, report *backtest.Report) {
	if s.runs == nil {
		return
	}

	symbols := make([]string, 0, len(req.Symbols))
	for _, sym := range req.Symbols {
		symbols = append(symbols, strings.ToUpper(strings.TrimSpace(sym)))
	}

	rec := store.RunRecord{
		Symbols:       strings.Join(symbols, ","),
		Strategy:      req.Strategy,
		StartDate:     req.StartDate,
		EndDate:       req.EndDate,
		Amount:        req.Investment.Amount,
		BestPerformer: report.Comparison.BestPerformer,
		ResultCount:   len(report.Results),
		ErrorCount:    len(report.Errors),
	}
	if err := s.runs.RecordRun(r.Context(), &rec); err != nil {
		s.log.Warn("recording run", "error", err)
	}
}

func (s *Server) handleRuns(w http.ResponseWriter, r *http.Request) {
	limit := 20
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 || n > 500 {
			writeError(w, http.StatusBadRequest, "limit must be between 1 and 500")
			return
		}
		limit = n
	}

	resp := RunsResponse{Runs: []RunJSON{}}
	if s.runs == nil {
		writeJSON(w, resp)
		return
	}

	records, err := s.runs.ListRuns(r.Context(), limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list runs")
		return
	}
	for _, rec := range records {
		resp.Runs = append(resp.Runs, RunJSON{
			ID:            rec.ID,
			CreatedAt:     rec.CreatedAt.UTC().Format(time.RFC3339),
			Symbols:       rec.Symbols,
			Strategy:      rec.Strategy,
			StartDate:     rec.StartDate,
			EndDate:       rec.EndDate,
			Amount:        rec.Amount,
			BestPerformer: rec.BestPerformer,
			ResultCount:   rec.ResultCount,
			ErrorCount:    rec.ErrorCount,
		})
	}
	writeJSON(w, resp)
}
