// Package backtest implements the vantage simulation engine: price-series
// alignment, investment strategy simulators, risk/return metrics, and the
// orchestrator that runs multi-symbol comparisons.
package backtest

import (
	"fmt"
	"sort"
	"time"

	"vantage/internal/domain"
)

// MinSeriesPoints is the minimum number of trading days an aligned series
// must contain. Ratios and annualization are meaningless below this.
const MinSeriesPoints = 20

// MaxRangeYears caps the requested window length.
const MaxRangeYears = 20

// ValidateWindow checks a requested [start, end) window before any data is
// fetched. It returns ErrInvalidRange when start is not strictly before end
// or when the window exceeds MaxRangeYears.
func ValidateWindow(start, end time.Time) error {
	if !start.Before(end) {
		return fmt.Errorf("%w: start %s is not before end %s",
			ErrInvalidRange, start.Format("2006-01-02"), end.Format("2006-01-02"))
	}
	if end.After(start.AddDate(MaxRangeYears, 0, 0)) {
		return fmt.Errorf("%w: window exceeds %d years", ErrInvalidRange, MaxRangeYears)
	}
	return nil
}

// AlignSeries restricts a raw price series to [start, end], sorts it by
// date, and deduplicates by date (later entries win, matching the merge
// behavior of the price store). Missing trading days are left as gaps;
// nothing is interpolated.
//
// Returns ErrInvalidRange for a bad window and ErrInsufficientData when
// fewer than MinSeriesPoints points survive.
func AlignSeries(raw domain.PriceSeries, start, end time.Time) (domain.PriceSeries, error) {
	if err := ValidateWindow(start, end); err != nil {
		return nil, err
	}

	byDate := make(map[time.Time]domain.PricePoint, len(raw))
	for _, p := range raw {
		d := p.Date.UTC().Truncate(24 * time.Hour)
		if d.Before(start) || d.After(end) {
			continue
		}
		byDate[d] = domain.PricePoint{Date: d, Close: p.Close}
	}

	aligned := make(domain.PriceSeries, 0, len(byDate))
	for _, p := range byDate {
		aligned = append(aligned, p)
	}
	sort.Slice(aligned, func(i, j int) bool {
		return aligned[i].Date.Before(aligned[j].Date)
	})

	if len(aligned) < MinSeriesPoints {
		return nil, fmt.Errorf("%w: %d points in window, need %d",
			ErrInsufficientData, len(aligned), MinSeriesPoints)
	}
	return aligned, nil
}
