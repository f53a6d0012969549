package common

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/patrickmn/go-cache"
)

// Cache is the backend used by the read path. Implementations may fail; callers treat any
// failure as a miss.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// MemoryCache keeps entries in process memory.
type MemoryCache struct {
	c *cache.Cache
}

func NewMemoryCache(expirationTime, cleanupTime time.Duration) *MemoryCache {
	return &MemoryCache{c: cache.New(expirationTime, cleanupTime)}
}

func (m *MemoryCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	v, ok := m.c.Get(key)
	if !ok {
		return nil, false, nil
	}

	b, ok := v.([]byte)
	if !ok {
		return nil, false, fmt.Errorf("cache: unexpected value type %T for key %q", v, key)
	}

	return b, true, nil
}

func (m *MemoryCache) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = cache.DefaultExpiration
	}
	m.c.Set(key, value, ttl)
	return nil
}

func (m *MemoryCache) Delete(_ context.Context, key string) error {
	m.c.Delete(key)
	return nil
}

func (m *MemoryCache) Flush() {
	m.c.Flush()
}

// NoopCache always misses. It is used when caching is disabled.
type NoopCache struct{}

func (NoopCache) Get(context.Context, string) ([]byte, bool, error) { return nil, false, nil }

func (NoopCache) Set(context.Context, string, []byte, time.Duration) error { return nil }

func (NoopCache) Delete(context.Context, string) error { return nil }

// NewCache returns the memory cache when enabled and the no-op cache otherwise.
func NewCache(enabled bool, expirationTime, cleanupTime time.Duration) Cache {
	if !enabled {
		return NoopCache{}
	}

	return NewMemoryCache(expirationTime, cleanupTime)
}

// GetOrCompute returns the cached value stored under key, computing and storing it on a miss.
// Cache failures and undecodable entries fall through to compute.
func GetOrCompute[T any](ctx context.Context, c Cache, key string, ttl time.Duration, compute func(ctx context.Context) (T, error)) (T, error) {
	if b, ok, err := c.Get(ctx, key); err == nil && ok {
		var cached T
		if err := json.Unmarshal(b, &cached); err == nil {
			return cached, nil
		}
	}

	value, err := compute(ctx)
	if err != nil {
		var zero T
		return zero, err
	}

	if b, err := json.Marshal(value); err == nil {
		_ = c.Set(ctx, key, b, ttl)
	}

	return value, nil
}

func CacheKeyDashboard(userID int) string {
	return "analytics:dashboard:user:" + strconv.Itoa(userID)
}

func CacheKeyGlobalDashboard() string {
	return "analytics:dashboard:global"
}

func CacheKeyPopularPosts(limit int, timeframe string) string {
	return "analytics:popular:" + strconv.Itoa(limit) + ":" + timeframe
}

func CacheKeyEngagement(userID int) string {
	return "analytics:engagement:user:" + strconv.Itoa(userID)
}

func CacheKeyCategories() string {
	return "analytics:categories"
}
