package testsupport

import (
	"path/filepath"
	"testing"

	"cinerate/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// The cache defaults to the in-memory backend and the API binds an ephemeral
// port.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.DataDir = filepath.Join(base, "data")
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")
	cfgVal.Paths.APIBind = "127.0.0.1:0"
	cfgVal.Detail.APIKey = "test"
	cfgVal.Cache.Backend = config.CacheBackendMemory
	cfgVal.Cache.Path = ""

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	if err := builder.cfg.EnsureDirectories(); err != nil {
		t.Fatalf("ensure directories: %v", err)
	}
	return builder.cfg
}

// WithCacheBackend switches the cache backend and points it at a file in the
// test data directory.
func WithCacheBackend(backend string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Cache.Backend = backend
		switch backend {
		case config.CacheBackendJSON:
			b.cfg.Cache.Path = filepath.Join(b.cfg.Paths.DataDir, "ratings.json")
		case config.CacheBackendSQLite:
			b.cfg.Cache.Path = filepath.Join(b.cfg.Paths.DataDir, "ratings.db")
		default:
			b.cfg.Cache.Path = ""
		}
	}
}

// WithUpstream points the lookup and detail endpoints at fake services.
func WithUpstream(u *Upstream) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Lookup.BaseURL = u.LookupURL()
		b.cfg.Detail.BaseURL = u.DetailURL()
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.DataDir)
}
