package gateway

import (
	"context"
	"log/slog"

	"cinerate/internal/logging"
	"cinerate/internal/ratings"
	"cinerate/internal/services"
	"cinerate/internal/titles"
)

// Cache is the TTL-aware rating cache.
type Cache interface {
	Key(primary string) string
	Get(ctx context.Context, key string) (*ratings.Result, bool, error)
	Put(ctx context.Context, key string, value *ratings.Result) error
}

// Resolver performs the network resolution for a raw title. settled is false
// when the outcome came from a failure and must not be cached.
type Resolver interface {
	Resolve(ctx context.Context, raw string) (result *ratings.Result, settled bool)
}

// Gateway answers GET_RATINGS requests: cache first, then resolution.
type Gateway struct {
	cache    Cache
	resolver Resolver
	logger   *slog.Logger
}

// New constructs a Gateway.
func New(cache Cache, resolver Resolver, logger *slog.Logger) *Gateway {
	return &Gateway{
		cache:    cache,
		resolver: resolver,
		logger:   logging.NewComponentLogger(logger, "gateway"),
	}
}

// GetRatings returns the rating for a raw listing title, or nil when there is
// no data. Fresh cache entries, including cached nils, are served without
// network traffic. Storage failures degrade to uncached resolution, and
// outcomes left by a lookup failure or cancellation are returned uncached so
// the next request retries.
func (g *Gateway) GetRatings(ctx context.Context, raw string) *ratings.Result {
	primary := titles.Primary(raw)
	if primary == "" {
		return nil
	}
	ctx = services.WithTitle(ctx, raw)
	logger := logging.WithContext(ctx, g.logger)
	key := g.cache.Key(primary)

	cached, hit, err := g.cache.Get(ctx, key)
	if err != nil {
		logging.WarnWithContext(logger, "cache read failed; resolving without cache", "cache_read_failed",
			logging.String("cache_key", key),
			logging.String(logging.FieldErrorKind, services.Kind(err)),
			logging.String(logging.FieldErrorHint, "check cache backend path and permissions"),
			logging.String(logging.FieldImpact, "result will not be cached"),
			logging.Error(err),
		)
		result, _ := g.resolver.Resolve(ctx, raw)
		return result
	}
	if hit {
		logger.Debug("cache hit", logging.String("cache_key", key), logging.Bool("has_rating", cached.HasRating()))
		return cached
	}

	logger.Debug("cache miss", logging.String("cache_key", key))
	result, settled := g.resolver.Resolve(ctx, raw)
	if !settled {
		logger.Debug("resolution not final; skipping cache write",
			logging.String("cache_key", key),
			logging.Bool("has_result", result != nil),
		)
		return result
	}
	if err := g.cache.Put(ctx, key, result); err != nil {
		logging.WarnWithContext(logger, "cache write failed", "cache_write_failed",
			logging.String("cache_key", key),
			logging.String(logging.FieldErrorKind, services.Kind(err)),
			logging.String(logging.FieldErrorHint, "check cache backend path and permissions"),
			logging.String(logging.FieldImpact, "title will be resolved again on next request"),
			logging.Error(err),
		)
	}
	return result
}
