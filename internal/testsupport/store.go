package testsupport

import (
	"testing"

	"cinerate/internal/config"
	"cinerate/internal/ratingcache"
)

// MustOpenCache opens the cache configured in cfg and registers cleanup.
func MustOpenCache(t testing.TB, cfg *config.Config) *ratingcache.Cache {
	t.Helper()

	store, err := ratingcache.OpenStore(cfg, nil)
	if err != nil {
		t.Fatalf("ratingcache.OpenStore: %v", err)
	}
	cache := ratingcache.New(store, nil, ratingcache.WithKeyPrefix(cfg.Cache.KeyPrefix))
	t.Cleanup(func() {
		_ = cache.Close()
	})
	return cache
}
