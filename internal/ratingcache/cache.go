package ratingcache

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"cinerate/internal/logging"
	"cinerate/internal/ratings"
	"cinerate/internal/services"
)

// TTL is the freshness window for every entry.
const TTL = 72 * time.Hour

// DefaultKeyPrefix namespaces rating entries inside a shared store.
const DefaultKeyPrefix = "imdb_rating_"

// Entry describes one stored record for maintenance listings.
type Entry struct {
	Key      string
	Result   *ratings.Result
	CachedAt time.Time
	Age      time.Duration
	Expired  bool
}

// Cache applies the TTL policy on top of a Store.
type Cache struct {
	store  Store
	prefix string
	now    func() time.Time
	logger *slog.Logger
}

// Option configures a Cache.
type Option func(*Cache)

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(c *Cache) {
		if now != nil {
			c.now = now
		}
	}
}

// WithKeyPrefix overrides DefaultKeyPrefix.
func WithKeyPrefix(prefix string) Option {
	return func(c *Cache) {
		if prefix = strings.TrimSpace(prefix); prefix != "" {
			c.prefix = prefix
		}
	}
}

// New wraps store with the TTL policy.
func New(store Store, logger *slog.Logger, opts ...Option) *Cache {
	c := &Cache{
		store:  store,
		prefix: DefaultKeyPrefix,
		now:    time.Now,
		logger: logging.NewComponentLogger(logger, "ratingcache"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Key returns the storage key for a primary normalized title.
func (c *Cache) Key(primary string) string {
	return c.prefix + primary
}

// Prefix returns the key namespace in use.
func (c *Cache) Prefix() string {
	return c.prefix
}

// Get returns the cached value for key. The bool is false on a miss: the key
// is absent or its age is at least TTL. A hit may carry a nil result.
func (c *Cache) Get(ctx context.Context, key string) (*ratings.Result, bool, error) {
	record, ok, err := c.store.Load(ctx, key)
	if err != nil {
		return nil, false, services.Wrap(services.ErrStorage, "ratingcache", "get", key, err)
	}
	if !ok {
		return nil, false, nil
	}
	if c.age(record) >= TTL {
		return nil, false, nil
	}
	return record.Data, true, nil
}

// Put stores value under key, stamped with the current time. Existing entries
// are overwritten.
func (c *Cache) Put(ctx context.Context, key string, value *ratings.Result) error {
	record := Record{Data: value.Clone(), Timestamp: c.now().UnixMilli()}
	if err := c.store.Save(ctx, key, record); err != nil {
		return services.Wrap(services.ErrStorage, "ratingcache", "put", key, err)
	}
	return nil
}

// EvictExpired removes prefixed entries older than TTL and returns how many
// were deleted. Entries outside the prefix are left alone.
func (c *Cache) EvictExpired(ctx context.Context) (int, error) {
	records, err := c.store.All(ctx)
	if err != nil {
		return 0, services.Wrap(services.ErrStorage, "ratingcache", "evict expired", "list entries", err)
	}
	var expired []string
	for key, record := range records {
		if !strings.HasPrefix(key, c.prefix) {
			continue
		}
		if c.age(record) > TTL {
			expired = append(expired, key)
		}
	}
	if len(expired) == 0 {
		return 0, nil
	}
	removed, err := c.store.Delete(ctx, expired...)
	if err != nil {
		return removed, services.Wrap(services.ErrStorage, "ratingcache", "evict expired", "delete entries", err)
	}
	c.logger.Info("evicted expired ratings",
		logging.Int("removed", removed),
		logging.Int("scanned", len(records)),
	)
	return removed, nil
}

// Entries lists prefixed entries, newest first.
func (c *Cache) Entries(ctx context.Context) ([]Entry, error) {
	records, err := c.store.All(ctx)
	if err != nil {
		return nil, services.Wrap(services.ErrStorage, "ratingcache", "list", "", err)
	}
	entries := make([]Entry, 0, len(records))
	for key, record := range records {
		if !strings.HasPrefix(key, c.prefix) {
			continue
		}
		age := c.age(record)
		entries = append(entries, Entry{
			Key:      key,
			Result:   record.Data,
			CachedAt: time.UnixMilli(record.Timestamp),
			Age:      age,
			Expired:  age >= TTL,
		})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].CachedAt.Equal(entries[j].CachedAt) {
			return entries[i].Key < entries[j].Key
		}
		return entries[i].CachedAt.After(entries[j].CachedAt)
	})
	return entries, nil
}

// Count returns the number of prefixed entries, expired ones included.
func (c *Cache) Count(ctx context.Context) (int, error) {
	entries, err := c.Entries(ctx)
	if err != nil {
		return 0, err
	}
	return len(entries), nil
}

// Remove deletes a single key. A key that is not present yields
// services.ErrNotFound.
func (c *Cache) Remove(ctx context.Context, key string) error {
	key = strings.TrimSpace(key)
	if key == "" {
		return services.Wrap(services.ErrValidation, "ratingcache", "remove", "key must not be empty", nil)
	}
	removed, err := c.store.Delete(ctx, key)
	if err != nil {
		return services.Wrap(services.ErrStorage, "ratingcache", "remove", key, err)
	}
	if removed == 0 {
		return services.Wrap(services.ErrNotFound, "ratingcache", "remove", fmt.Sprintf("key %q not in cache", key), nil)
	}
	return nil
}

// Clear deletes every prefixed entry and returns how many were removed.
func (c *Cache) Clear(ctx context.Context) (int, error) {
	records, err := c.store.All(ctx)
	if err != nil {
		return 0, services.Wrap(services.ErrStorage, "ratingcache", "clear", "list entries", err)
	}
	keys := make([]string, 0, len(records))
	for key := range records {
		if strings.HasPrefix(key, c.prefix) {
			keys = append(keys, key)
		}
	}
	if len(keys) == 0 {
		return 0, nil
	}
	removed, err := c.store.Delete(ctx, keys...)
	if err != nil {
		return removed, services.Wrap(services.ErrStorage, "ratingcache", "clear", "delete entries", err)
	}
	return removed, nil
}

// Close releases the underlying store.
func (c *Cache) Close() error {
	return c.store.Close()
}

func (c *Cache) age(record Record) time.Duration {
	return time.Duration(c.now().UnixMilli()-record.Timestamp) * time.Millisecond
}
