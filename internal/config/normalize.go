package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeLookup()
	c.normalizeDetail()
	if err := c.normalizeCache(); err != nil {
		return err
	}
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.DataDir) == "" {
		c.Paths.DataDir = defaultDataDir
	}
	if c.Paths.DataDir, err = expandPath(c.Paths.DataDir); err != nil {
		return fmt.Errorf("paths.data_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = filepath.Join(c.Paths.DataDir, "logs")
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	c.Paths.APIBind = strings.TrimSpace(c.Paths.APIBind)
	if c.Paths.APIBind == "" {
		c.Paths.APIBind = defaultAPIBind
	}
	return nil
}

func (c *Config) normalizeLookup() {
	c.Lookup.BaseURL = strings.TrimRight(strings.TrimSpace(c.Lookup.BaseURL), "/")
	if c.Lookup.BaseURL == "" {
		c.Lookup.BaseURL = defaultLookupBaseURL
	}
}

func (c *Config) normalizeDetail() {
	c.Detail.BaseURL = strings.TrimRight(strings.TrimSpace(c.Detail.BaseURL), "/")
	if c.Detail.BaseURL == "" {
		c.Detail.BaseURL = defaultDetailBaseURL
	}
	c.Detail.APIKey = strings.TrimSpace(c.Detail.APIKey)
	if c.Detail.APIKey == "" {
		if value, ok := os.LookupEnv("OMDB_API_KEY"); ok {
			c.Detail.APIKey = strings.TrimSpace(value)
		}
	}
	if c.Detail.APIKey == "" {
		c.Detail.APIKey = defaultDetailAPIKey
	}
}

func (c *Config) normalizeCache() error {
	c.Cache.Backend = strings.ToLower(strings.TrimSpace(c.Cache.Backend))
	if c.Cache.Backend == "" {
		c.Cache.Backend = defaultCacheBackend
	}
	if c.Cache.KeyPrefix == "" {
		c.Cache.KeyPrefix = defaultCacheKeyPrefix
	}
	if c.Cache.Backend == CacheBackendMemory {
		c.Cache.Path = ""
		return nil
	}
	if strings.TrimSpace(c.Cache.Path) == "" {
		name := "ratings.db"
		if c.Cache.Backend == CacheBackendJSON {
			name = "ratings.json"
		}
		c.Cache.Path = filepath.Join(c.Paths.DataDir, name)
	}
	var err error
	if c.Cache.Path, err = expandPath(c.Cache.Path); err != nil {
		return fmt.Errorf("cache.path: %w", err)
	}
	return nil
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "", "console":
		c.Logging.Format = "console"
	case "json":
	default:
		c.Logging.Format = "console"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
