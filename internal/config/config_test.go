package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"cinerate/internal/config"
)

func TestLoadDefaultConfigExpandsPaths(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)
	t.Setenv("OMDB_API_KEY", "")

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if resolved == "" {
		t.Fatal("expected resolved path")
	}
	if exists {
		t.Fatal("expected config file to be absent in temp HOME")
	}

	wantData := filepath.Join(tempHome, ".local", "share", "cinerate")
	if cfg.Paths.DataDir != wantData {
		t.Fatalf("unexpected data dir: got %q want %q", cfg.Paths.DataDir, wantData)
	}
	if cfg.Paths.LogDir != filepath.Join(wantData, "logs") {
		t.Fatalf("unexpected log dir: %q", cfg.Paths.LogDir)
	}
	if cfg.Paths.APIBind != "127.0.0.1:7488" {
		t.Fatalf("unexpected api bind: %q", cfg.Paths.APIBind)
	}
	if cfg.Cache.Backend != config.CacheBackendSQLite {
		t.Fatalf("expected sqlite backend by default, got %q", cfg.Cache.Backend)
	}
	if cfg.Cache.Path != filepath.Join(wantData, "ratings.db") {
		t.Fatalf("unexpected cache path: %q", cfg.Cache.Path)
	}
	if cfg.Cache.KeyPrefix != "imdb_rating_" {
		t.Fatalf("unexpected key prefix: %q", cfg.Cache.KeyPrefix)
	}
	if cfg.Lookup.BaseURL != config.Default().Lookup.BaseURL {
		t.Fatalf("unexpected lookup base url: %q", cfg.Lookup.BaseURL)
	}
	if cfg.Detail.APIKey != "trilogy" {
		t.Fatalf("expected public detail token by default, got %q", cfg.Detail.APIKey)
	}
	if cfg.Logging.Format != "console" || cfg.Logging.Level != "info" {
		t.Fatalf("unexpected logging defaults: %+v", cfg.Logging)
	}
}

func TestLoadUsesEnvDetailKey(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("OMDB_API_KEY", " env-key ")

	cfg, _, _, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Detail.APIKey != "env-key" {
		t.Fatalf("expected detail key from env, got %q", cfg.Detail.APIKey)
	}
}

func TestLoadCustomPath(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	dir := t.TempDir()
	configPath := filepath.Join(dir, "custom.toml")

	cfgVal := config.Default()
	cfgVal.Paths.DataDir = filepath.Join(dir, "data")
	cfgVal.Paths.APIBind = "127.0.0.1:9999"
	cfgVal.Lookup.BaseURL = "http://lookup.local/"
	cfgVal.Detail.APIKey = "file-key"
	cfgVal.Cache.Backend = "JSON"
	cfgVal.Logging.Format = "JSON"

	encoded, err := toml.Marshal(cfgVal)
	if err != nil {
		t.Fatalf("marshal config: %v", err)
	}
	if err := os.WriteFile(configPath, encoded, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, resolved, exists, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists || resolved != configPath {
		t.Fatalf("expected custom config to be used, got %q exists=%v", resolved, exists)
	}
	if cfg.Paths.APIBind != "127.0.0.1:9999" {
		t.Fatalf("unexpected api bind: %q", cfg.Paths.APIBind)
	}
	if cfg.Lookup.BaseURL != "http://lookup.local" {
		t.Fatalf("expected trailing slash trimmed, got %q", cfg.Lookup.BaseURL)
	}
	if cfg.Detail.APIKey != "file-key" {
		t.Fatalf("unexpected detail key: %q", cfg.Detail.APIKey)
	}
	if cfg.Cache.Backend != config.CacheBackendJSON {
		t.Fatalf("expected json backend, got %q", cfg.Cache.Backend)
	}
	if cfg.Cache.Path != filepath.Join(dir, "data", "ratings.json") {
		t.Fatalf("unexpected cache path: %q", cfg.Cache.Path)
	}
	if cfg.Logging.Format != "json" {
		t.Fatalf("expected json logging, got %q", cfg.Logging.Format)
	}
}

func TestLoadRejectsUnknownBackend(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	configPath := filepath.Join(t.TempDir(), "bad.toml")
	content := "[cache]\nbackend = \"redis\"\n"
	if err := os.WriteFile(configPath, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	_, _, _, err := config.Load(configPath)
	if err == nil || !strings.Contains(err.Error(), "cache.backend") {
		t.Fatalf("expected cache.backend error, got %v", err)
	}
}

func TestMemoryBackendClearsPath(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	configPath := filepath.Join(t.TempDir(), "mem.toml")
	content := "[cache]\nbackend = \"memory\"\npath = \"/tmp/ignored.db\"\n"
	if err := os.WriteFile(configPath, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	cfg, _, _, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Cache.Path != "" {
		t.Fatalf("expected memory backend to clear path, got %q", cfg.Cache.Path)
	}
}

func TestValidateRejectsBadEndpoint(t *testing.T) {
	cfg := config.Default()
	cfg.Detail.APIKey = "key"
	cfg.Cache.Path = "/tmp/ratings.db"
	cfg.Lookup.BaseURL = "ftp://example.com"
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected validation error for non-http lookup url")
	}
}

func TestValidateRejectsBadBind(t *testing.T) {
	cfg := config.Default()
	cfg.Detail.APIKey = "key"
	cfg.Cache.Path = "/tmp/ratings.db"
	cfg.Paths.APIBind = "not-an-address"
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected validation error for api bind")
	}
}

func TestCreateSampleIsLoadable(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	target := filepath.Join(t.TempDir(), "nested", "config.toml")
	if err := config.CreateSample(target); err != nil {
		t.Fatalf("CreateSample returned error: %v", err)
	}
	cfg, _, exists, err := config.Load(target)
	if err != nil {
		t.Fatalf("Load sample returned error: %v", err)
	}
	if !exists {
		t.Fatal("expected sample config to exist")
	}
	if cfg.Cache.Backend != config.CacheBackendSQLite {
		t.Fatalf("unexpected sample backend: %q", cfg.Cache.Backend)
	}
}

func TestEnsureDirectoriesCreatesCacheParent(t *testing.T) {
	base := t.TempDir()
	cfg := config.Default()
	cfg.Paths.DataDir = filepath.Join(base, "data")
	cfg.Paths.LogDir = filepath.Join(base, "logs")
	cfg.Cache.Path = filepath.Join(base, "cache", "ratings.db")
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories returned error: %v", err)
	}
	for _, dir := range []string{cfg.Paths.DataDir, cfg.Paths.LogDir, filepath.Dir(cfg.Cache.Path)} {
		if info, err := os.Stat(dir); err != nil || !info.IsDir() {
			t.Fatalf("expected directory %s: %v", dir, err)
		}
	}
}
