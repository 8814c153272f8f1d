package store

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/parquet-go/parquet-go"

	"vantage/internal/domain"
)

// Compile-time interface check.
var _ PriceStore = (*ParquetStore)(nil)

// ParquetStore implements PriceStore using Parquet files on disk.
type ParquetStore struct {
	DataDir string
}

// NewParquetStore creates a new ParquetStore rooted at the given data directory.
func NewParquetStore(dataDir string) *ParquetStore {
	return &ParquetStore{DataDir: dataDir}
}

// PriceRecord is the Parquet schema for daily close data.
type PriceRecord struct {
	Symbol    string  `parquet:"symbol"`
	Timestamp int64   `parquet:"timestamp,timestamp(millisecond)"` // Unix ms
	Close     float64 `parquet:"close"`
}

// WriteSeries writes a symbol's daily closes to Parquet files organized by
// year. Each year produces a separate file at:
//
//	<DataDir>/us/daily/<SYMBOL>/<YYYY>.parquet
func (s *ParquetStore) WriteSeries(_ context.Context, symbol string, series domain.PriceSeries) error {
	if len(series) == 0 {
		return nil
	}
	symbol = strings.ToUpper(symbol)

	// Group points by year.
	groups := make(map[int][]PriceRecord)
	for _, p := range series {
		y := p.Date.Year()
		groups[y] = append(groups[y], PriceRecord{
			Symbol:    symbol,
			Timestamp: p.Date.UnixMilli(),
			Close:     p.Close,
		})
	}

	for year, records := range groups {
		path := s.seriesPath(symbol, year)

		// Read existing records to merge.
		existing, _ := readParquetFile[PriceRecord](path)
		merged := mergePriceRecords(existing, records)

		if err := writeParquetFile(path, merged); err != nil {
			return fmt.Errorf("writing prices for %s/%d: %w", symbol, year, err)
		}
	}
	return nil
}

// ReadSeries reads cached closes for the given symbol and time range.
func (s *ParquetStore) ReadSeries(_ context.Context, symbol string, start, end time.Time) (domain.PriceSeries, error) {
	symbol = strings.ToUpper(symbol)

	var series domain.PriceSeries
	for year := start.Year(); year <= end.Year(); year++ {
		path := s.seriesPath(symbol, year)

		records, err := readParquetFile[PriceRecord](path)
		if err != nil {
			// File doesn't exist for this year — skip.
			continue
		}

		for _, r := range records {
			ts := time.UnixMilli(r.Timestamp).UTC()
			if (ts.Equal(start) || ts.After(start)) && (ts.Equal(end) || ts.Before(end)) {
				series = append(series, domain.PricePoint{Date: ts, Close: r.Close})
			}
		}
	}
	sort.Slice(series, func(i, j int) bool { return series[i].Date.Before(series[j].Date) })
	return series, nil
}

// ListSymbols lists all symbols that have cached price data.
func (s *ParquetStore) ListSymbols(_ context.Context) ([]string, error) {
	dir := filepath.Join(s.DataDir, "us", "daily")
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var symbols []string
	for _, e := range entries {
		if e.IsDir() {
			symbols = append(symbols, e.Name())
		}
	}
	sort.Strings(symbols)
	return symbols, nil
}

// seriesPath returns the filesystem path for a symbol's year file.
// Layout: <dataDir>/us/daily/<SYMBOL>/<YYYY>.parquet
func (s *ParquetStore) seriesPath(symbol string, year int) string {
	return filepath.Join(s.DataDir, "us", "daily", strings.ToUpper(symbol), fmt.Sprintf("%d.parquet", year))
}

// ---------------------------------------------------------------------------
// Parquet file helpers
// ---------------------------------------------------------------------------

func writeParquetFile[T any](path string, records []T) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return parquet.WriteFile(path, records)
}

func readParquetFile[T any](path string) ([]T, error) {
	rows, err := parquet.ReadFile[T](path)
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// mergePriceRecords deduplicates records by timestamp, preferring new records
// over existing ones. Results are sorted by timestamp.
func mergePriceRecords(existing, incoming []PriceRecord) []PriceRecord {
	seen := make(map[int64]PriceRecord, len(existing)+len(incoming))
	for _, r := range existing {
		seen[r.Timestamp] = r
	}
	for _, r := range incoming {
		seen[r.Timestamp] = r
	}

	merged := make([]PriceRecord, 0, len(seen))
	for _, r := range seen {
		merged = append(merged, r)
	}
	sort.Slice(merged, func(i, j int) bool {
		return merged[i].Timestamp < merged[j].Timestamp
	})
	return merged
}
