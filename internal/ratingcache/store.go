package ratingcache

import (
	"context"
	"fmt"
	"log/slog"

	"cinerate/internal/config"
	"cinerate/internal/ratings"
	"cinerate/internal/services"
)

// Record is the persisted value for one cache key. A nil Data is a cached
// "no data" outcome. Timestamp is epoch milliseconds.
type Record struct {
	Data      *ratings.Result `json:"data"`
	Timestamp int64           `json:"timestamp"`
}

// Store is the key-value backend behind a Cache. Implementations must be
// safe for concurrent use.
type Store interface {
	Load(ctx context.Context, key string) (Record, bool, error)
	Save(ctx context.Context, key string, record Record) error
	Delete(ctx context.Context, keys ...string) (int, error)
	All(ctx context.Context) (map[string]Record, error)
	Close() error
}

// OpenStore builds the store selected by cfg.Cache.Backend.
func OpenStore(cfg *config.Config, logger *slog.Logger) (Store, error) {
	if cfg == nil {
		return nil, services.Wrap(services.ErrConfiguration, "ratingcache", "open store", "config is nil", nil)
	}
	switch cfg.Cache.Backend {
	case config.CacheBackendMemory:
		return NewMemoryStore(), nil
	case config.CacheBackendJSON:
		return NewFileStore(cfg.Cache.Path, logger)
	case config.CacheBackendSQLite, "":
		return OpenSQLiteStore(cfg.Cache.Path)
	default:
		return nil, services.Wrap(services.ErrConfiguration, "ratingcache", "open store", fmt.Sprintf("unknown backend %q", cfg.Cache.Backend), nil)
	}
}
