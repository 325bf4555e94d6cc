package dataflows

import (
	"context"
	"time"
)

// QuoteProvider returns the latest quote for a provider symbol.
// A nil quote with a nil error means the provider has no data for it.
type QuoteProvider interface {
	Name() string
	Quote(ctx context.Context, symbol string) (*Quote, error)
}

// FundamentalsProvider is implemented by providers that also expose valuation
// data. Callers detect it with a type assertion.
type FundamentalsProvider interface {
	Fundamentals(ctx context.Context, symbol string) (*Fundamentals, error)
}

// Observer receives timing and outcome of outbound calls.
type Observer interface {
	ObserveScrape(d time.Duration, err error)
	ObserveFetch(kind string, err error)
}

type nopObserver struct{}

func (nopObserver) ObserveScrape(time.Duration, error) {}

func (nopObserver) ObserveFetch(string, error) {}
