// Package cache is a thin cache-aside helper over Redis. Every operation
// degrades to a miss or a no-op when Redis is unreachable or unconfigured, so
// callers never fail because the cache did.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	// DefaultTTL keeps entries fresh enough that readers tolerate the
	// staleness window between a write elsewhere and expiry here.
	DefaultTTL = 60 * time.Second

	// scanBatch bounds how many keys one SCAN step touches.
	scanBatch = 100
)

// Cache namespaces keys and stores values as JSON.
type Cache struct {
	client    *redis.Client
	namespace string
	ttl       time.Duration
	logger    *slog.Logger
}

// Option configures a Cache.
type Option func(*Cache)

// WithTTL overrides the default entry lifetime.
func WithTTL(ttl time.Duration) Option {
	return func(c *Cache) {
		if ttl > 0 {
			c.ttl = ttl
		}
	}
}

// WithLogger attaches a logger for degradation events.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Cache) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// New builds a namespaced cache. A nil client yields a cache where every read
// misses and every write is dropped.
func New(client *redis.Client, namespace string, opts ...Option) *Cache {
	c := &Cache{
		client:    client,
		namespace: namespace,
		ttl:       DefaultTTL,
		logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get loads and unmarshals the entry into dest, reporting whether it hit.
// Unreadable or corrupt entries count as misses.
func (c *Cache) Get(ctx context.Context, key string, dest any) bool {
	if c == nil || c.client == nil {
		return false
	}
	raw, err := c.client.Get(ctx, c.fullKey(key)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.logger.Warn("cache read failed", slog.String("key", key), slog.String("error", err.Error()))
		}
		return false
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		c.logger.Warn("cache entry corrupt, treating as miss", slog.String("key", key), slog.String("error", err.Error()))
		return false
	}
	return true
}

// Set stores the value as JSON. A non-positive ttl falls back to the cache
// default. Reports whether the write landed.
func (c *Cache) Set(ctx context.Context, key string, value any, ttl time.Duration) bool {
	if c == nil || c.client == nil {
		return false
	}
	raw, err := json.Marshal(value)
	if err != nil {
		c.logger.Warn("cache value not serializable", slog.String("key", key), slog.String("error", err.Error()))
		return false
	}
	if ttl <= 0 {
		ttl = c.ttl
	}
	if err := c.client.Set(ctx, c.fullKey(key), raw, ttl).Err(); err != nil {
		c.logger.Warn("cache write failed", slog.String("key", key), slog.String("error", err.Error()))
		return false
	}
	return true
}

// Delete removes a single entry.
func (c *Cache) Delete(ctx context.Context, key string) {
	if c == nil || c.client == nil {
		return
	}
	if err := c.client.Del(ctx, c.fullKey(key)).Err(); err != nil {
		c.logger.Warn("cache delete failed", slog.String("key", key), slog.String("error", err.Error()))
	}
}

// DeletePattern removes every entry matching the glob pattern, walking the
// keyspace with SCAN instead of KEYS. Returns how many entries went away.
func (c *Cache) DeletePattern(ctx context.Context, pattern string) int {
	if c == nil || c.client == nil {
		return 0
	}
	// Collect every match before issuing any DEL. Deleting while the
	// cursor is still walking shifts the keyspace under SCAN and keys
	// get skipped.
	var keys []string
	iter := c.client.Scan(ctx, 0, c.fullKey(pattern), scanBatch).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		c.logger.Warn("cache scan failed", slog.String("pattern", pattern), slog.String("error", err.Error()))
	}

	var removed int
	for start := 0; start < len(keys); start += scanBatch {
		end := start + scanBatch
		if end > len(keys) {
			end = len(keys)
		}
		n, err := c.client.Del(ctx, keys[start:end]...).Result()
		if err != nil {
			c.logger.Warn("cache pattern delete failed", slog.String("pattern", pattern), slog.String("error", err.Error()))
		}
		removed += int(n)
	}
	return removed
}

func (c *Cache) fullKey(key string) string {
	if c.namespace == "" {
		return key
	}
	return c.namespace + ":" + key
}
