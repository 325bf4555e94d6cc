package dataflows

import (
	"context"
	"log/slog"
	"time"

	"github.com/dyike/FinAgentGo/pkg/cache"
)

// CachedProvider serves repeated lookups from a cache. Misses and provider
// "no data" answers are never stored.
type CachedProvider struct {
	inner QuoteProvider
	store cache.Store
	ttl   time.Duration
}

func NewCachedProvider(inner QuoteProvider, store cache.Store, ttl time.Duration) *CachedProvider {
	return &CachedProvider{inner: inner, store: store, ttl: ttl}
}

func (c *CachedProvider) Name() string { return c.inner.Name() }

func (c *CachedProvider) Quote(ctx context.Context, symbol string) (*Quote, error) {
	key := "quote:" + c.inner.Name() + ":" + NormalizeSymbol(symbol)

	var cached Quote
	if ok, err := c.store.Get(ctx, key, &cached); err != nil {
		slog.Warn("quote cache read failed", "key", key, "err", err)
	} else if ok {
		return &cached, nil
	}

	q, err := c.inner.Quote(ctx, symbol)
	if err != nil || q == nil {
		return q, err
	}
	if err := c.store.Set(ctx, key, q, c.ttl); err != nil {
		slog.Warn("quote cache write failed", "key", key, "err", err)
	}
	return q, nil
}

// Fundamentals passes through to the wrapped provider when it supports them.
func (c *CachedProvider) Fundamentals(ctx context.Context, symbol string) (*Fundamentals, error) {
	fp, ok := c.inner.(FundamentalsProvider)
	if !ok {
		return nil, nil
	}
	key := "fundamentals:" + c.inner.Name() + ":" + NormalizeSymbol(symbol)

	var cached Fundamentals
	if ok, err := c.store.Get(ctx, key, &cached); err == nil && ok {
		return &cached, nil
	}
	f, err := fp.Fundamentals(ctx, symbol)
	if err != nil || f == nil {
		return f, err
	}
	if err := c.store.Set(ctx, key, f, c.ttl); err != nil {
		slog.Warn("fundamentals cache write failed", "key", key, "err", err)
	}
	return f, nil
}
