package app

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"cinerate/internal/config"
	"cinerate/internal/gateway"
	"cinerate/internal/imdbot"
	"cinerate/internal/omdb"
	"cinerate/internal/ratingcache"
	"cinerate/internal/resolver"
)

// Stack is the fully wired rating pipeline for one configuration.
type Stack struct {
	Config   *config.Config
	Cache    *ratingcache.Cache
	Resolver *resolver.Resolver
	Gateway  *gateway.Gateway
}

// StackOption customizes OpenStack.
type StackOption func(*stackOptions)

type stackOptions struct {
	httpClient *http.Client
}

// WithHTTPClient sets the client used for both outbound services.
func WithHTTPClient(client *http.Client) StackOption {
	return func(o *stackOptions) {
		o.httpClient = client
	}
}

// OpenStack opens the configured cache store and wires clients, resolver,
// and gateway on top of it. Callers must Close the stack.
func OpenStack(cfg *config.Config, logger *slog.Logger, opts ...StackOption) (*Stack, error) {
	if cfg == nil {
		return nil, errors.New("config is required")
	}
	var options stackOptions
	for _, opt := range opts {
		opt(&options)
	}

	store, err := ratingcache.OpenStore(cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("open cache store: %w", err)
	}
	cache := ratingcache.New(store, logger, ratingcache.WithKeyPrefix(cfg.Cache.KeyPrefix))

	search := imdbot.New(cfg.Lookup.BaseURL, imdbot.WithHTTPClient(options.httpClient))
	details := omdb.New(cfg.Detail.BaseURL, cfg.Detail.APIKey, omdb.WithHTTPClient(options.httpClient))
	res := resolver.New(search, details, logger)

	return &Stack{
		Config:   cfg,
		Cache:    cache,
		Resolver: res,
		Gateway:  gateway.New(cache, res, logger),
	}, nil
}

// Close releases the cache store.
func (s *Stack) Close() error {
	if s == nil || s.Cache == nil {
		return nil
	}
	return s.Cache.Close()
}
