package marketdata

import (
	"strings"

	"vantage/internal/domain"
)

// Catalog is an in-memory list of commonly requested US instruments. It backs
// symbol search without touching the upstream API; symbols outside the
// catalog still resolve through a Resolver.
type Catalog struct {
	instruments []domain.Instrument
}

// NewCatalog returns a catalog seeded with the default instrument list.
func NewCatalog() *Catalog {
	return &Catalog{instruments: defaultInstruments}
}

// Search returns instruments whose symbol or name contains q,
// case-insensitively. An empty query returns the full catalog.
func (c *Catalog) Search(q string) []domain.Instrument {
	q = strings.ToUpper(strings.TrimSpace(q))
	if q == "" {
		out := make([]domain.Instrument, len(c.instruments))
		copy(out, c.instruments)
		return out
	}

	var out []domain.Instrument
	for _, inst := range c.instruments {
		if strings.Contains(inst.Symbol, q) || strings.Contains(strings.ToUpper(inst.Name), q) {
			out = append(out, inst)
		}
	}
	return out
}

// Lookup returns the catalog entry for symbol, if present.
func (c *Catalog) Lookup(symbol string) (domain.Instrument, bool) {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	for _, inst := range c.instruments {
		if inst.Symbol == symbol {
			return inst, true
		}
	}
	return domain.Instrument{}, false
}

var defaultInstruments = []domain.Instrument{
	{Symbol: "SPY", Name: "SPDR S&P 500 ETF Trust", Exchange: "ARCA"},
	{Symbol: "VOO", Name: "Vanguard S&P 500 ETF", Exchange: "ARCA"},
	{Symbol: "VTI", Name: "Vanguard Total Stock Market ETF", Exchange: "ARCA"},
	{Symbol: "VT", Name: "Vanguard Total World Stock ETF", Exchange: "ARCA"},
	{Symbol: "QQQ", Name: "Invesco QQQ Trust", Exchange: "NASDAQ"},
	{Symbol: "VGT", Name: "Vanguard Information Technology ETF", Exchange: "ARCA"},
	{Symbol: "ARKK", Name: "ARK Innovation ETF", Exchange: "ARCA"},
	{Symbol: "AAPL", Name: "Apple Inc.", Exchange: "NASDAQ"},
	{Symbol: "MSFT", Name: "Microsoft Corporation", Exchange: "NASDAQ"},
	{Symbol: "GOOGL", Name: "Alphabet Inc. Class A", Exchange: "NASDAQ"},
	{Symbol: "AMZN", Name: "Amazon.com Inc.", Exchange: "NASDAQ"},
	{Symbol: "NVDA", Name: "NVIDIA Corporation", Exchange: "NASDAQ"},
	{Symbol: "TSLA", Name: "Tesla Inc.", Exchange: "NASDAQ"},
	{Symbol: "META", Name: "Meta Platforms Inc.", Exchange: "NASDAQ"},
	{Symbol: "TSM", Name: "Taiwan Semiconductor Manufacturing", Exchange: "NYSE"},
}
