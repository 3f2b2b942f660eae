package config

import (
	"fmt"
	"net"
	"net/url"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateEndpoints(); err != nil {
		return err
	}
	if err := c.validateCache(); err != nil {
		return err
	}
	if err := c.validatePaths(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateEndpoints() error {
	for key, value := range map[string]string{
		"lookup.base_url": c.Lookup.BaseURL,
		"detail.base_url": c.Detail.BaseURL,
	} {
		parsed, err := url.Parse(value)
		if err != nil {
			return fmt.Errorf("%s: %w", key, err)
		}
		if parsed.Scheme != "http" && parsed.Scheme != "https" {
			return fmt.Errorf("%s must be an http(s) URL, got %q", key, value)
		}
		if parsed.Host == "" {
			return fmt.Errorf("%s must include a host, got %q", key, value)
		}
	}
	if strings.TrimSpace(c.Detail.APIKey) == "" {
		return fmt.Errorf("detail.api_key is required. Set OMDB_API_KEY env var or edit the config file")
	}
	return nil
}

func (c *Config) validateCache() error {
	switch c.Cache.Backend {
	case CacheBackendSQLite, CacheBackendJSON:
		if strings.TrimSpace(c.Cache.Path) == "" {
			return fmt.Errorf("cache.path must be set when cache.backend is %q", c.Cache.Backend)
		}
	case CacheBackendMemory:
	default:
		return fmt.Errorf("cache.backend: unsupported value %q (want sqlite, json, or memory)", c.Cache.Backend)
	}
	if strings.ContainsAny(c.Cache.KeyPrefix, " \t\n") {
		return fmt.Errorf("cache.key_prefix must not contain whitespace")
	}
	return nil
}

func (c *Config) validatePaths() error {
	if _, _, err := net.SplitHostPort(c.Paths.APIBind); err != nil {
		return fmt.Errorf("paths.api_bind: %w", err)
	}
	return nil
}
