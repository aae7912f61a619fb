package cache

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/amishk599/jobpipe/internal/model"
)

// PageCache stores retrieved pages keyed by URL.
type PageCache interface {
	Get(ctx context.Context, url string) (*model.Page, bool)
	Set(ctx context.Context, url string, page *model.Page) error
}

// RedisCache is a Redis-backed PageCache.
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisCache connects to Redis at redisURL (redis://host:6379/0) and
// returns a cache whose entries expire after ttl.
func NewRedisCache(ctx context.Context, redisURL string, ttl time.Duration) (*RedisCache, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("cache: invalid redis URL: %w", err)
	}

	client := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("cache: redis ping failed: %w", err)
	}

	return &RedisCache{client: client, ttl: ttl}, nil
}

// Get returns the cached page for url, or false on a miss or decode error.
func (c *RedisCache) Get(ctx context.Context, url string) (*model.Page, bool) {
	data, err := c.client.Get(ctx, buildKey(url)).Bytes()
	if err != nil {
		return nil, false
	}

	var page model.Page
	if err := json.Unmarshal(data, &page); err != nil {
		return nil, false
	}
	return &page, true
}

// Set stores page under url with the configured TTL.
func (c *RedisCache) Set(ctx context.Context, url string, page *model.Page) error {
	data, err := json.Marshal(page)
	if err != nil {
		return fmt.Errorf("cache: marshal error: %w", err)
	}
	return c.client.Set(ctx, buildKey(url), data, c.ttl).Err()
}

// Close closes the Redis connection.
func (c *RedisCache) Close() error {
	return c.client.Close()
}

func buildKey(url string) string {
	hash := sha256.Sum256([]byte(strings.TrimSpace(url)))
	return fmt.Sprintf("jobpipe:page:%x", hash[:12])
}

// CachedFetcher serves pages from a PageCache and falls through to the
// wrapped fetcher on a miss. Only successful fetches are cached.
type CachedFetcher struct {
	inner  model.PageFetcher
	cache  PageCache
	logger *slog.Logger
}

// NewCachedFetcher wraps inner with cache.
func NewCachedFetcher(inner model.PageFetcher, cache PageCache, logger *slog.Logger) *CachedFetcher {
	return &CachedFetcher{inner: inner, cache: cache, logger: logger}
}

func (f *CachedFetcher) Fetch(ctx context.Context, url string) (*model.Page, error) {
	if page, ok := f.cache.Get(ctx, url); ok {
		f.logger.Debug("page cache hit", "url", url)
		return page, nil
	}

	page, err := f.inner.Fetch(ctx, url)
	if err != nil {
		return nil, err
	}

	if err := f.cache.Set(ctx, url, page); err != nil {
		f.logger.Warn("page cache write failed", "url", url, "error", err)
	}
	return page, nil
}
