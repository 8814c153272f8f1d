// Package store persists daily price history and completed backtest runs.
package store

import (
	"context"
	"time"

	"vantage/internal/domain"
)

// PriceStore persists and retrieves daily closing-price series.
type PriceStore interface {
	// WriteSeries persists a symbol's daily closes, merging with any data
	// already on disk.
	WriteSeries(ctx context.Context, symbol string, series domain.PriceSeries) error

	// ReadSeries returns the cached closes for symbol within [start, end].
	ReadSeries(ctx context.Context, symbol string, start, end time.Time) (domain.PriceSeries, error)

	// ListSymbols returns all symbols with cached price data.
	ListSymbols(ctx context.Context) ([]string, error)
}

// RunRecord is one completed backtest run.
type RunRecord struct {
	ID            int64
	CreatedAt     time.Time
	Symbols       string // comma-joined, request order
	Strategy      string
	StartDate     string // YYYY-MM-DD
	EndDate       string // YYYY-MM-DD
	Amount        float64
	BestPerformer string
	ResultCount   int
	ErrorCount    int
}

// RunStore records completed backtest runs for later inspection.
type RunStore interface {
	// RecordRun inserts a run record and fills in its ID and CreatedAt.
	RecordRun(ctx context.Context, run *RunRecord) error

	// ListRuns returns the most recent runs, newest first, up to limit.
	ListRuns(ctx context.Context, limit int) ([]RunRecord, error)
}
