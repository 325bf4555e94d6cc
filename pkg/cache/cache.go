// Package cache stores JSON-encodable values with a time to live.
package cache

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/dyike/FinAgentGo/config"
)

// Store is a key/value cache. Get reports whether a live entry was found and
// decoded into dst.
type Store interface {
	Get(ctx context.Context, key string, dst any) (bool, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Close() error
}

var ErrDisabled = errors.New("cache disabled")

// New builds the store selected by cfg.CacheBackend.
func New(cfg *config.Config) (Store, error) {
	if !cfg.CacheEnabled {
		return nil, ErrDisabled
	}
	switch cfg.CacheBackend {
	case "", "file":
		return NewFileStore(filepath.Join(cfg.DataCacheDir, "quotes")), nil
	case "redis":
		return NewRedisStore(RedisOptions{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
	default:
		return nil, fmt.Errorf("unknown cache backend %q", cfg.CacheBackend)
	}
}
