// Package vantage provides a Go SDK for the vantage-server HTTP API.
package vantage

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

// Client talks to a vantage-server instance.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a new API client for the server at baseURL.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 60 * time.Second},
	}
}

// ---------------------------------------------------------------------------
// Wire types (mirror the server's JSON surface)
// ---------------------------------------------------------------------------

// BacktestRequest is the POST /api/backtest body.
type BacktestRequest struct {
	Symbols    []string   `json:"symbols"`
	StartDate  string     `json:"start_date"`
	EndDate    string     `json:"end_date"`
	Strategy   string     `json:"strategy"`
	Investment Investment `json:"investment"`
}

// Investment is the plan parameters of a backtest request.
type Investment struct {
	Amount    float64 `json:"amount"`
	Frequency string  `json:"frequency,omitempty"`
}

// PortfolioPoint is one dated portfolio value.
type PortfolioPoint struct {
	Date  string  `json:"date"`
	Value float64 `json:"value"`
}

// Result is the per-symbol backtest outcome.
type Result struct {
	Symbol           string           `json:"symbol"`
	Name             string           `json:"name"`
	TotalReturn      float64          `json:"total_return"`
	CAGR             float64          `json:"cagr"`
	MaxDrawdown      float64          `json:"max_drawdown"`
	Volatility       float64          `json:"volatility"`
	SharpeRatio      float64          `json:"sharpe_ratio"`
	FinalValue       float64          `json:"final_value"`
	TotalInvested    float64          `json:"total_invested"`
	PortfolioHistory []PortfolioPoint `json:"portfolio_history"`
}

// SymbolError annotates a symbol that failed during a run.
type SymbolError struct {
	Symbol string `json:"symbol"`
	Error  string `json:"error"`
}

// Comparison summarizes the cross-symbol ranking.
type Comparison struct {
	BestPerformer string  `json:"best_performer"`
	HighestReturn float64 `json:"highest_return"`
	LowestRisk    string  `json:"lowest_risk"`
	BestSharpe    string  `json:"best_sharpe"`
}

// BacktestResponse is the POST /api/backtest reply.
type BacktestResponse struct {
	Results    []Result      `json:"results"`
	Errors     []SymbolError `json:"errors,omitempty"`
	Comparison *Comparison   `json:"comparison,omitempty"`
}

// Instrument is one searchable instrument.
type Instrument struct {
	Symbol   string `json:"symbol"`
	Name     string `json:"name"`
	Exchange string `json:"exchange,omitempty"`
}

// Run is one recorded backtest run.
type Run struct {
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

// APIError is a non-2xx response from the server.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("vantage: %d %s", e.StatusCode, e.Message)
}

// ---------------------------------------------------------------------------
// Operations
// ---------------------------------------------------------------------------

// Health checks server liveness.
func (c *Client) Health(ctx context.Context) error {
	var out struct {
		Status string `json:"status"`
	}
	if err := c.get(ctx, "/api/health", &out); err != nil {
		return err
	}
	if out.Status != "ok" {
		return fmt.Errorf("vantage: unexpected health status %q", out.Status)
	}
	return nil
}

// SearchSymbols returns instruments matching the query.
func (c *Client) SearchSymbols(ctx context.Context, query string) ([]Instrument, error) {
	var out struct {
		Results []Instrument `json:"results"`
	}
	path := "/api/symbols/search?q=" + url.QueryEscape(query)
	if err := c.get(ctx, path, &out); err != nil {
		return nil, err
	}
	return out.Results, nil
}

// SymbolDetail is Instrument plus the most recent close, when available.
type SymbolDetail struct {
	Symbol    string   `json:"symbol"`
	Name      string   `json:"name"`
	Exchange  string   `json:"exchange,omitempty"`
	LastClose *float64 `json:"last_close,omitempty"`
	AsOf      string   `json:"as_of,omitempty"`
}

// GetSymbol returns detail for one symbol.
func (c *Client) GetSymbol(ctx context.Context, symbol string) (SymbolDetail, error) {
	var out SymbolDetail
	if err := c.get(ctx, "/api/symbols/"+url.PathEscape(symbol), &out); err != nil {
		return SymbolDetail{}, err
	}
	return out, nil
}

// RunBacktest runs a backtest for the given request.
func (c *Client) RunBacktest(ctx context.Context, req BacktestRequest) (*BacktestResponse, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/api/backtest", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")

	var out BacktestResponse
	if err := c.do(httpReq, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListRuns returns the most recent recorded runs.
func (c *Client) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	var out struct {
		Runs []Run `json:"runs"`
	}
	path := "/api/runs"
	if limit > 0 {
		path += "?limit=" + strconv.Itoa(limit)
	}
	if err := c.get(ctx, path, &out); err != nil {
		return nil, err
	}
	return out.Runs, nil
}

func (c *Client) get(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return err
	}
	return c.do(req, out)
}

func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var apiErr struct {
			Error string `json:"error"`
		}
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		msg := resp.Status
		if json.Unmarshal(data, &apiErr) == nil && apiErr.Error != "" {
			msg = apiErr.Error
		}
		return &APIError{StatusCode: resp.StatusCode, Message: msg}
	}

	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
