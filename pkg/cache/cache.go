package cache

import (
	"context"
	"encoding/json"
	"time"

	"pos-service/pkg/config"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

const (
	ProductListKey   = "pos:products"
	SummaryKeyPrefix = "pos:summary:"

	TTLShort  = 1 * time.Minute
	TTLMedium = 5 * time.Minute
)

// Cache is a thin JSON cache on top of redis. A nil *Cache is valid and
// turns every operation into a no-op, so callers never need to branch on
// whether caching is enabled.
type Cache struct {
	rdb *redis.Client
	log *zap.Logger
}

// New connects to redis and returns a cache, or nil when disabled or
// unreachable. Cache misses are always safe, so a failed connection only
// costs the caching.
func New(cfg config.RedisConfig, log *zap.Logger) *Cache {
	if !cfg.Enabled {
		return nil
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr(),
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     10,
		MinIdleConns: 5,
		MaxRetries:   3,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		log.Warn("Redis unreachable, caching disabled", zap.String("addr", cfg.Addr()), zap.Error(err))
		return nil
	}

	log.Info("Redis connected", zap.String("addr", cfg.Addr()))
	return &Cache{rdb: rdb, log: log}
}

// GetJSON loads key into dest, reporting whether it was a hit
func (c *Cache) GetJSON(ctx context.Context, key string, dest interface{}) bool {
	if c == nil {
		return false
	}
	raw, err := c.rdb.Get(ctx, key).Bytes()
	if err != nil {
		return false
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		c.log.Warn("Dropping corrupt cache entry", zap.String("key", key), zap.Error(err))
		c.rdb.Del(ctx, key)
		return false
	}
	return true
}

// SetJSON stores v under key with the given TTL
func (c *Cache) SetJSON(ctx context.Context, key string, v interface{}, ttl time.Duration) {
	if c == nil {
		return
	}
	raw, err := json.Marshal(v)
	if err != nil {
		c.log.Warn("Failed to marshal cache entry", zap.String("key", key), zap.Error(err))
		return
	}
	if err := c.rdb.Set(ctx, key, raw, ttl).Err(); err != nil {
		c.log.Warn("Failed to write cache entry", zap.String("key", key), zap.Error(err))
	}
}

// Invalidate removes keys; prefixed keys are expanded with a scan
func (c *Cache) Invalidate(ctx context.Context, keys ...string) {
	if c == nil || len(keys) == 0 {
		return
	}
	for _, key := range keys {
		if err := c.rdb.Del(ctx, key).Err(); err != nil {
			c.log.Warn("Failed to invalidate cache key", zap.String("key", key), zap.Error(err))
		}
	}
}

// InvalidatePrefix removes every key under the given prefix
func (c *Cache) InvalidatePrefix(ctx context.Context, prefix string) {
	if c == nil {
		return
	}
	iter := c.rdb.Scan(ctx, 0, prefix+"*", 0).Iterator()
	for iter.Next(ctx) {
		c.rdb.Del(ctx, iter.Val())
	}
	if err := iter.Err(); err != nil {
		c.log.Warn("Cache prefix scan failed", zap.String("prefix", prefix), zap.Error(err))
	}
}
