package dataflows

import (
	"context"
	"errors"
	"fmt"
	"time"
)

const defaultFetchConcurrency = 4

// Fetcher runs batched quote lookups against a QuoteProvider. Every item gets
// its own timeout and its own outcome; a failing item never aborts the batch.
type Fetcher struct {
	provider    QuoteProvider
	timeout     time.Duration
	concurrency int
	observer    Observer
}

type FetcherOption func(*Fetcher)

func WithFetchTimeout(d time.Duration) FetcherOption {
	return func(f *Fetcher) {
		if d > 0 {
			f.timeout = d
		}
	}
}

func WithConcurrency(n int) FetcherOption {
	return func(f *Fetcher) {
		if n > 0 {
			f.concurrency = n
		}
	}
}

func WithFetchObserver(o Observer) FetcherOption {
	return func(f *Fetcher) {
		if o != nil {
			f.observer = o
		}
	}
}

func NewFetcher(provider QuoteProvider, opts ...FetcherOption) *Fetcher {
	f := &Fetcher{
		provider:    provider,
		timeout:     15 * time.Second,
		concurrency: defaultFetchConcurrency,
		observer:    nopObserver{},
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

func (f *Fetcher) Provider() QuoteProvider {
	return f.provider
}

// fetchQuote maps provider outcomes onto ErrTransport and ErrNoData.
func (f *Fetcher) fetchQuote(ctx context.Context, kind, symbol string) (q *Quote, err error) {
	defer func() { f.observer.ObserveFetch(kind, err) }()

	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	q, err = f.provider.Quote(ctx, symbol)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrTransport, symbol, err)
	}
	if q == nil {
		return nil, fmt.Errorf("%w for %s", ErrNoData, symbol)
	}
	return q, nil
}

// ErrorKind names the failure class of err for reporting.
func ErrorKind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrUnknownCommodity):
		return "unknown_commodity"
	case errors.Is(err, ErrNoData):
		return "no_data"
	case errors.Is(err, ErrTransport):
		return "transport"
	case errors.Is(err, ErrNetworkFailure):
		return "network_failure"
	case errors.Is(err, ErrStructureNotFound):
		return "structure_not_found"
	default:
		return "other"
	}
}
