package dataflows

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/sync/errgroup"
)

const maxSymbolLen = 16

// ValidateSymbol checks if a provider symbol is in a plausible format
func ValidateSymbol(symbol string) error {
	symbol = NormalizeSymbol(symbol)
	if len(symbol) == 0 {
		return fmt.Errorf("symbol cannot be empty")
	}
	if len(symbol) > maxSymbolLen {
		return fmt.Errorf("symbol too long: %s", symbol)
	}
	if strings.ContainsAny(symbol, " \t\n/") {
		return fmt.Errorf("symbol contains invalid characters: %q", symbol)
	}
	return nil
}

// NormalizeSymbol converts symbol to standard format
func NormalizeSymbol(symbol string) string {
	return strings.TrimSpace(strings.ToUpper(symbol))
}

// fanOut runs fn for every index with at most limit calls in flight. fn
// reports its own failures; one failing item never cancels the others.
func fanOut(ctx context.Context, n, limit int, fn func(ctx context.Context, i int)) {
	g, gctx := errgroup.WithContext(ctx)
	if limit > 0 {
		g.SetLimit(limit)
	}
	for i := 0; i < n; i++ {
		g.Go(func() error {
			fn(gctx, i)
			return nil
		})
	}
	_ = g.Wait()
}

