package store

import (
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"vantage/internal/domain"
)

func TestParquetStorePath(t *testing.T) {
	ps := NewParquetStore("/data")

	p := ps.seriesPath("aapl", 2024)
	want := filepath.Join("/data", "us", "daily", "AAPL", "2024.parquet")
	if p != want {
		t.Errorf("seriesPath mismatch:\n  got  %s\n  want %s", p, want)
	}
	if !strings.Contains(p, "AAPL") {
		t.Errorf("seriesPath should upper-case the symbol: %s", p)
	}
}

func TestParquetStoreWriteReadSeries(t *testing.T) {
	dir := t.TempDir()
	ps := NewParquetStore(dir)
	ctx := context.Background()

	series := domain.PriceSeries{
		{Date: time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC), Close: 185.5},
		{Date: time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC), Close: 186.0},
	}

	if err := ps.WriteSeries(ctx, "AAPL", series); err != nil {
		t.Fatalf("WriteSeries: %v", err)
	}

	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC)
	got, err := ps.ReadSeries(ctx, "AAPL", start, end)
	if err != nil {
		t.Fatalf("ReadSeries: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("ReadSeries returned %d points, want 2", len(got))
	}
	if got[0].Close != 185.5 {
		t.Errorf("first point Close = %v, want 185.5", got[0].Close)
	}
	if got[1].Close != 186.0 {
		t.Errorf("second point Close = %v, want 186.0", got[1].Close)
	}
}

func TestParquetStoreMergeSeries(t *testing.T) {
	dir := t.TempDir()
	ps := NewParquetStore(dir)
	ctx := context.Background()

	first := domain.PriceSeries{
		{Date: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), Close: 403.0},
	}
	if err := ps.WriteSeries(ctx, "MSFT", first); err != nil {
		t.Fatalf("WriteSeries (first): %v", err)
	}

	// Second write for the same symbol+year merges, and a re-write of the
	// same date replaces the old close.
	second := domain.PriceSeries{
		{Date: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), Close: 404.0},
		{Date: time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC), Close: 408.0},
	}
	if err := ps.WriteSeries(ctx, "MSFT", second); err != nil {
		t.Fatalf("WriteSeries (second): %v", err)
	}

	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC)
	got, err := ps.ReadSeries(ctx, "MSFT", start, end)
	if err != nil {
		t.Fatalf("ReadSeries: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("ReadSeries returned %d points after merge, want 2", len(got))
	}
	if got[0].Close != 404.0 {
		t.Errorf("merged Close = %v, want 404.0 (new record wins)", got[0].Close)
	}
}

func TestParquetStoreSpansYears(t *testing.T) {
	dir := t.TempDir()
	ps := NewParquetStore(dir)
	ctx := context.Background()

	series := domain.PriceSeries{
		{Date: time.Date(2023, 12, 29, 0, 0, 0, 0, time.UTC), Close: 100},
		{Date: time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC), Close: 101},
	}
	if err := ps.WriteSeries(ctx, "SPY", series); err != nil {
		t.Fatalf("WriteSeries: %v", err)
	}

	got, err := ps.ReadSeries(ctx, "SPY",
		time.Date(2023, 12, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("ReadSeries: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("ReadSeries across year boundary returned %d points, want 2", len(got))
	}
	if !got[0].Date.Before(got[1].Date) {
		t.Error("ReadSeries results not sorted by date")
	}
}

func TestParquetStoreListSymbols(t *testing.T) {
	dir := t.TempDir()
	ps := NewParquetStore(dir)
	ctx := context.Background()

	day := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	if err := ps.WriteSeries(ctx, "AAPL", domain.PriceSeries{{Date: day, Close: 185.5}}); err != nil {
		t.Fatalf("WriteSeries: %v", err)
	}
	if err := ps.WriteSeries(ctx, "GOOGL", domain.PriceSeries{{Date: day, Close: 140.5}}); err != nil {
		t.Fatalf("WriteSeries: %v", err)
	}

	symbols, err := ps.ListSymbols(ctx)
	if err != nil {
		t.Fatalf("ListSymbols: %v", err)
	}
	if len(symbols) != 2 {
		t.Fatalf("ListSymbols returned %d symbols, want 2", len(symbols))
	}
	if symbols[0] != "AAPL" || symbols[1] != "GOOGL" {
		t.Errorf("ListSymbols = %v, want [AAPL GOOGL]", symbols)
	}
}

func TestSQLiteRunStoreRecordAndList(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "test.db")

	rs, err := NewSQLiteRunStore(dbPath)
	if err != nil {
		t.Fatalf("NewSQLiteRunStore(%q): %v", dbPath, err)
	}
	defer func() {
		if cerr := rs.Close(); cerr != nil {
			t.Errorf("Close() returned error: %v", cerr)
		}
	}()

	ctx := context.Background()
	runs := []RunRecord{
		{
			CreatedAt: time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC),
			Symbols:   "AAPL,MSFT", Strategy: "lump_sum",
			StartDate: "2020-01-01", EndDate: "2024-01-01",
			Amount: 10000, BestPerformer: "MSFT",
			ResultCount: 2, ErrorCount: 0,
		},
		{
			CreatedAt: time.Date(2025, 6, 2, 10, 0, 0, 0, time.UTC),
			Symbols:   "QQQ", Strategy: "dca",
			StartDate: "2021-01-01", EndDate: "2024-01-01",
			Amount: 500, BestPerformer: "QQQ",
			ResultCount: 1, ErrorCount: 1,
		},
	}
	for i := range runs {
		if err := rs.RecordRun(ctx, &runs[i]); err != nil {
			t.Fatalf("RecordRun: %v", err)
		}
		if runs[i].ID == 0 {
			t.Error("RecordRun did not assign an ID")
		}
	}

	got, err := rs.ListRuns(ctx, 10)
	if err != nil {
		t.Fatalf("ListRuns: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("ListRuns returned %d records, want 2", len(got))
	}
	// Newest first.
	if got[0].Symbols != "QQQ" || got[1].Symbols != "AAPL,MSFT" {
		t.Errorf("ListRuns order = [%s %s], want newest first", got[0].Symbols, got[1].Symbols)
	}
	if got[0].Strategy != "dca" || got[0].ErrorCount != 1 {
		t.Errorf("ListRuns record = %+v, want strategy dca, error count 1", got[0])
	}

	// Limit applies.
	one, err := rs.ListRuns(ctx, 1)
	if err != nil {
		t.Fatalf("ListRuns(1): %v", err)
	}
	if len(one) != 1 {
		t.Errorf("ListRuns(1) returned %d records, want 1", len(one))
	}
}
