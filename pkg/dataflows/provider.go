package dataflows

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/dyike/FinAgentGo/pkg/cache"
)

// NewProvider builds the configured quote provider, wrapped in a cache when
// caching is enabled. The returned close func releases the cache.
func NewProvider(cfg *Config) (QuoteProvider, func() error, error) {
	var base QuoteProvider
	switch cfg.QuoteProvider {
	case "", "yahoo":
		base = NewYahooFinanceClient(cfg)
	case "longport":
		lp, err := NewLongportClient(cfg)
		if err != nil {
			return nil, nil, fmt.Errorf("longport provider: %w", err)
		}
		base = lp
	default:
		return nil, nil, fmt.Errorf("unknown quote provider %q", cfg.QuoteProvider)
	}

	noop := func() error { return nil }
	store, err := cache.New(cfg)
	if err != nil {
		if !errors.Is(err, cache.ErrDisabled) {
			slog.Warn("quote cache unavailable, continuing without it", "backend", cfg.CacheBackend, "err", err)
		}
		return base, noop, nil
	}
	return NewCachedProvider(base, store, cfg.CacheTTL()), store.Close, nil
}
