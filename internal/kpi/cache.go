package kpi

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/pienissimo/opsdash/internal/config"
	"github.com/pienissimo/opsdash/internal/pkg/logger"
)

const cachePrefix = "dashboard:"

// Cache stores serialized snapshots in Redis. Cache failures are logged and
// swallowed: the dashboard must keep working when Redis is down, just slower.
type Cache struct {
	rdb *redis.Client
	ttl time.Duration
	log *logger.Logger
}

// NewCache connects to Redis and verifies the connection.
func NewCache(ctx context.Context, cfg config.RedisConfig) (*Cache, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return &Cache{rdb: rdb, ttl: cfg.TTL(), log: logger.Component("kpi-cache")}, nil
}

// NewCacheWithClient wraps an existing client, used by tests with miniredis.
func NewCacheWithClient(rdb *redis.Client, ttl time.Duration) *Cache {
	return &Cache{rdb: rdb, ttl: ttl, log: logger.Component("kpi-cache")}
}

func (c *Cache) Close() error { return c.rdb.Close() }

// Client exposes the underlying Redis client so other components, like the
// distributed lock, can share the connection.
func (c *Cache) Client() *redis.Client { return c.rdb }

func cacheKey(p Period) string {
	return fmt.Sprintf("%s%s:%s", cachePrefix, p.Timeframe, p.Start.Format("2006-01-02"))
}

// Get returns a cached snapshot, or false on miss or any cache error.
func (c *Cache) Get(ctx context.Context, key string) (*Snapshot, bool) {
	data, err := c.rdb.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return nil, false
	}
	if err != nil {
		c.log.Warn("cache read failed", "key", key, "error", err)
		return nil, false
	}

	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		c.log.Warn("cache entry corrupt", "key", key, "error", err)
		return nil, false
	}
	return &snap, true
}

// Set stores a snapshot under its period key.
func (c *Cache) Set(ctx context.Context, key string, snap *Snapshot) {
	data, err := json.Marshal(snap)
	if err != nil {
		return
	}
	if err := c.rdb.Set(ctx, key, data, c.ttl).Err(); err != nil {
		c.log.Warn("cache write failed", "key", key, "error", err)
	}
}

// Flush drops every cached snapshot. Runs after imports and syncs so stale
// aggregates never outlive new data.
func (c *Cache) Flush(ctx context.Context) {
	var cursor uint64
	for {
		keys, next, err := c.rdb.Scan(ctx, cursor, cachePrefix+"*", 100).Result()
		if err != nil {
			c.log.Warn("cache flush scan failed", "error", err)
			return
		}
		if len(keys) > 0 {
			if err := c.rdb.Del(ctx, keys...).Err(); err != nil {
				c.log.Warn("cache flush delete failed", "error", err)
				return
			}
		}
		cursor = next
		if cursor == 0 {
			return
		}
	}
}
