package dataflows

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	finance "github.com/piquette/finance-go"
	"github.com/piquette/finance-go/equity"
	"github.com/piquette/finance-go/quote"
	"github.com/shopspring/decimal"
)

var yahooHTTPOnce sync.Once

// YahooFinanceClient handles Yahoo Finance data operations
type YahooFinanceClient struct {
	timeout time.Duration
}

// NewYahooFinanceClient creates a new Yahoo Finance client
func NewYahooFinanceClient(config *Config) *YahooFinanceClient {
	timeout := config.FetchTimeout()
	// finance-go keeps a package level client; the first caller decides its timeout.
	yahooHTTPOnce.Do(func() {
		finance.SetHTTPClient(&http.Client{Timeout: timeout})
	})
	return &YahooFinanceClient{timeout: timeout}
}

func (yf *YahooFinanceClient) Name() string { return "yahoo" }

// Quote gets current quote data for a symbol
func (yf *YahooFinanceClient) Quote(ctx context.Context, symbol string) (*Quote, error) {
	if err := ValidateSymbol(symbol); err != nil {
		return nil, err
	}
	symbol = NormalizeSymbol(symbol)

	q, err := callWithContext(ctx, yf.timeout, func() (*finance.Quote, error) {
		return quote.Get(symbol)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get quote for %s: %w", symbol, err)
	}
	if q == nil {
		return nil, nil
	}
	return quoteFromYahoo(symbol, q), nil
}

// Fundamentals gets valuation data for an equity symbol
func (yf *YahooFinanceClient) Fundamentals(ctx context.Context, symbol string) (*Fundamentals, error) {
	if err := ValidateSymbol(symbol); err != nil {
		return nil, err
	}
	symbol = NormalizeSymbol(symbol)

	eq, err := callWithContext(ctx, yf.timeout, func() (*finance.Equity, error) {
		return equity.Get(symbol)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get equity for %s: %w", symbol, err)
	}
	if eq == nil {
		return nil, nil
	}
	return &Fundamentals{
		TrailingPE:       nonZero(eq.TrailingPE),
		EPS:              nonZero(eq.EpsTrailingTwelveMonths),
		MarketCap:        eq.MarketCap,
		FiftyTwoWeekHigh: nonZero(eq.FiftyTwoWeekHigh),
		FiftyTwoWeekLow:  nonZero(eq.FiftyTwoWeekLow),
	}, nil
}

func quoteFromYahoo(symbol string, q *finance.Quote) *Quote {
	out := &Quote{
		Symbol:    symbol,
		Name:      q.ShortName,
		Currency:  q.CurrencyID,
		Exchange:  q.FullExchangeName,
		Price:     nonZero(q.RegularMarketPrice),
		Volume:    int64(q.RegularMarketVolume),
		AvgVolume: int64(q.AverageDailyVolume3Month),
	}
	if out.Price.Valid {
		out.Change = decimal.NewNullDecimal(decimal.NewFromFloat(q.RegularMarketChange))
		out.ChangePercent = decimal.NewNullDecimal(decimal.NewFromFloat(q.RegularMarketChangePercent))
	}
	if q.RegularMarketTime > 0 {
		out.MarketTime = time.Unix(int64(q.RegularMarketTime), 0)
	}
	return out
}

// callWithContext runs fn, which cannot be cancelled, and stops waiting when
// ctx is done or timeout elapses.
func callWithContext[T any](ctx context.Context, timeout time.Duration, fn func() (T, error)) (T, error) {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	type result struct {
		v   T
		err error
	}
	ch := make(chan result, 1)
	go func() {
		v, err := fn()
		ch <- result{v: v, err: err}
	}()

	select {
	case r := <-ch:
		return r.v, r.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}
