// internal/cache/redis.go
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
)

// KeyPrefix namespaces every key this service writes.
const KeyPrefix = "anima:"

// ConnectRedis opens a client and pings it once.
func ConnectRedis(ctx context.Context, addr string, db int) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr: addr,
		DB:   db,
	})

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("failed to connect to Redis at %s: %w", addr, err)
	}
	return rdb, nil
}

// JSONCache stores JSON-encoded values with a fixed TTL.
// A nil client (or nil *JSONCache) turns every call into a miss.
type JSONCache struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewJSONCache(rdb *redis.Client, ttl time.Duration) *JSONCache {
	return &JSONCache{rdb: rdb, ttl: ttl}
}

// Enabled reports whether a backing client is configured.
func (c *JSONCache) Enabled() bool {
	return c != nil && c.rdb != nil
}

// Get decodes the value under key into dst. hit is false on a miss or when disabled.
func (c *JSONCache) Get(ctx context.Context, key string, dst any) (hit bool, err error) {
	if !c.Enabled() {
		return false, nil
	}
	data, err := c.rdb.Get(ctx, KeyPrefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("redis GET %s: %w", key, err)
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return false, fmt.Errorf("decode cached %s: %w", key, err)
	}
	return true, nil
}

// Set encodes v under key with the cache TTL.
func (c *JSONCache) Set(ctx context.Context, key string, v any) error {
	if !c.Enabled() {
		return nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", key, err)
	}
	if err := c.rdb.Set(ctx, KeyPrefix+key, data, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis SET %s: %w", key, err)
	}
	return nil
}

// Remember returns the cached value for key, or calls load, caches its result and returns it.
// Cache errors are logged and never fail the call.
func Remember[T any](ctx context.Context, c *JSONCache, key string, load func(context.Context) (T, error)) (T, error) {
	var cached T
	hit, err := c.Get(ctx, key, &cached)
	if err != nil {
		log.WithError(err).WithField("key", key).Warn("cache read failed")
	}
	if hit {
		return cached, nil
	}

	v, err := load(ctx)
	if err != nil {
		return v, err
	}
	if err := c.Set(ctx, key, v); err != nil {
		log.WithError(err).WithField("key", key).Warn("cache write failed")
	}
	return v, nil
}
