package dataflows

import (
	"context"
	"log/slog"

	"github.com/dyike/FinAgentGo/models"
)

// LookupStocks quotes each ticker and, when the provider supports it, adds
// valuation metrics. A failing fundamentals call keeps the price.
func (f *Fetcher) LookupStocks(ctx context.Context, symbols []string) []models.ItemResult {
	fp, hasFundamentals := f.provider.(FundamentalsProvider)

	results := make([]models.ItemResult, len(symbols))
	fanOut(ctx, len(symbols), f.concurrency, func(ctx context.Context, i int) {
		symbol := NormalizeSymbol(symbols[i])
		results[i] = models.ItemResult{Key: symbol}
		if err := ValidateSymbol(symbol); err != nil {
			results[i].Error = err.Error()
			return
		}

		q, err := f.fetchQuote(ctx, "stock", symbol)
		if err != nil {
			results[i].Error = err.Error()
			return
		}
		rec := q.Record(models.GroupEquity, "")

		if hasFundamentals {
			fctx, cancel := context.WithTimeout(ctx, f.timeout)
			fund, err := fp.Fundamentals(fctx, symbol)
			cancel()
			switch {
			case err != nil:
				slog.Debug("fundamentals unavailable", "symbol", symbol, "err", err)
			case fund != nil:
				fund.apply(&rec)
			}
		}
		results[i].Record = &rec
	})
	return results
}
