// Package cache caches search results in Redis, keyed by the normalized
// query and its paging parameters. Identical queries in flight at the same
// time are collapsed into a single index search.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/Adithya-Monish-Kumar-K/Blog-Search-Platform/internal/search"
	"github.com/Adithya-Monish-Kumar-K/Blog-Search-Platform/pkg/config"
	"github.com/Adithya-Monish-Kumar-K/Blog-Search-Platform/pkg/metrics"
	pkgredis "github.com/Adithya-Monish-Kumar-K/Blog-Search-Platform/pkg/redis"
	"golang.org/x/sync/singleflight"
)

const keyPrefix = "blogsearch:"

// Key identifies one cacheable search.
type Key struct {
	Query  string
	Limit  int
	Offset int
	Sort   search.Sort
}

type QueryCache struct {
	client  *pkgredis.Client
	cfg     config.RedisConfig
	metrics *metrics.Metrics
	group   singleflight.Group
	logger  *slog.Logger
}

// New builds a QueryCache. m may be nil when metrics are disabled.
func New(client *pkgredis.Client, cfg config.RedisConfig, m *metrics.Metrics) *QueryCache {
	return &QueryCache{
		client:  client,
		cfg:     cfg,
		metrics: m,
		logger:  slog.Default().With("component", "query-cache"),
	}
}

// Get returns the cached result for key, if present.
func (c *QueryCache) Get(ctx context.Context, key Key) (*search.Result, bool) {
	redisKey := c.buildKey(key)
	data, err := c.client.Get(ctx, redisKey)
	if err != nil {
		if !pkgredis.IsNilError(err) {
			c.logger.Error("cache get failed", "key", redisKey, "error", err)
		}
		c.countMiss()
		return nil, false
	}
	var result search.Result
	if err := json.Unmarshal([]byte(data), &result); err != nil {
		c.logger.Error("cache unmarshal failed", "key", redisKey, "error", err)
		c.countMiss()
		return nil, false
	}
	c.countHit()
	return &result, true
}

// Set stores a result under key with the configured TTL.
func (c *QueryCache) Set(ctx context.Context, key Key, result *search.Result) {
	redisKey := c.buildKey(key)
	data, err := json.Marshal(result)
	if err != nil {
		c.logger.Error("cache marshal failed", "key", redisKey, "error", err)
		return
	}
	if err := c.client.Set(ctx, redisKey, data, c.cfg.CacheTTL); err != nil {
		c.logger.Error("cache set failed", "key", redisKey, "error", err)
	}
}

// GetOrCompute returns the cached result or runs computeFn and caches its
// output. Concurrent callers with the same key share one computeFn call.
// The bool reports whether the result came from the cache.
func (c *QueryCache) GetOrCompute(
	ctx context.Context,
	key Key,
	computeFn func() (*search.Result, error),
) (*search.Result, bool, error) {
	if result, ok := c.Get(ctx, key); ok {
		return result, true, nil
	}
	redisKey := c.buildKey(key)
	val, err, _ := c.group.Do(redisKey, func() (interface{}, error) {
		if result, ok := c.Get(ctx, key); ok {
			return result, nil
		}
		result, err := computeFn()
		if err != nil {
			return nil, err
		}
		c.Set(ctx, key, result)
		return result, nil
	})
	if err != nil {
		return nil, false, err
	}
	return val.(*search.Result), false, nil
}

// Invalidate removes every cached search result. It is called after the
// index changes.
func (c *QueryCache) Invalidate(ctx context.Context) error {
	deleted, err := c.client.FlushByPattern(ctx, keyPrefix+"*")
	if err != nil {
		return fmt.Errorf("invalidating cache: %w", err)
	}
	c.logger.Info("cache invalidated", "keys_deleted", deleted)
	return nil
}

func (c *QueryCache) buildKey(key Key) string {
	normalized := strings.Join(strings.Fields(key.Query), " ")
	raw := fmt.Sprintf("%s|limit=%d|offset=%d|sort=%s", normalized, key.Limit, key.Offset, key.Sort)
	hash := sha256.Sum256([]byte(raw))
	return fmt.Sprintf("%s%x", keyPrefix, hash[:16])
}

func (c *QueryCache) countHit() {
	if c.metrics != nil {
		c.metrics.CacheHitsTotal.Inc()
	}
}

func (c *QueryCache) countMiss() {
	if c.metrics != nil {
		c.metrics.CacheMissesTotal.Inc()
	}
}
