// Package cache is a JSON read-through cache over Redis. A nil *Store, or one
// whose server went away, behaves as a permanent miss so callers never need a
// second code path.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/shashiranjanraj/medcart/config"
	"github.com/shashiranjanraj/medcart/pkg/logger"
	"github.com/shashiranjanraj/medcart/pkg/metrics"
)

const keyPrefix = "medcart:"

type Store struct {
	rdb *redis.Client
	ttl time.Duration
}

// Connect initialises the Redis client and verifies the connection with a ping.
func Connect(ctx context.Context, addr, password string, ttl time.Duration) (*Store, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       0,
	})

	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("cache: redis ping: %w", err)
	}
	return &Store{rdb: rdb, ttl: ttl}, nil
}

// FromConfig connects when REDIS_ADDR is set. It returns a nil Store (caching
// disabled) when the address is empty or Redis is unreachable.
func FromConfig(ctx context.Context) *Store {
	addr := config.RedisAddr()
	if addr == "" {
		return nil
	}
	s, err := Connect(ctx, addr, config.RedisPassword(), config.CacheTTL())
	if err != nil {
		logger.Warn("cache disabled", "error", err)
		return nil
	}
	return s
}

// Get unmarshals the value at key into dest. Returns true on a cache hit,
// false on miss or error.
func (s *Store) Get(ctx context.Context, key string, dest interface{}) bool {
	if s == nil {
		return false
	}

	val, err := s.rdb.Get(ctx, keyPrefix+key).Bytes()
	if err != nil {
		if err != redis.Nil {
			logger.WithCtx(ctx).Debug("cache get failed", "key", key, "error", err)
		}
		metrics.CacheMisses.Inc()
		return false
	}

	if err := json.Unmarshal(val, dest); err != nil {
		metrics.CacheMisses.Inc()
		return false
	}
	metrics.CacheHits.Inc()
	return true
}

// Set stores value under key for the store's TTL. Redis errors are logged
// and dropped.
func (s *Store) Set(ctx context.Context, key string, value interface{}) {
	if s == nil {
		return
	}

	data, err := json.Marshal(value)
	if err != nil {
		return
	}
	if err := s.rdb.Set(ctx, keyPrefix+key, data, s.ttl).Err(); err != nil {
		logger.WithCtx(ctx).Debug("cache set failed", "key", key, "error", err)
	}
}

// Key returns key scoped to the current generation of namespace ns. A reader
// that raced a writer can only fill a key of a generation Bump has already
// retired, so stale entries are never served. ok is false when caching is
// off or the generation cannot be read; callers then skip the cache.
func (s *Store) Key(ctx context.Context, ns, key string) (scoped string, ok bool) {
	if s == nil {
		return "", false
	}
	gen, err := s.rdb.Get(ctx, keyPrefix+ns+":gen").Int64()
	if err != nil && err != redis.Nil {
		logger.WithCtx(ctx).Debug("cache generation read failed", "namespace", ns, "error", err)
		return "", false
	}
	return fmt.Sprintf("%s:%d:%s", ns, gen, key), true
}

// Bump retires every key of namespace ns. Retired entries expire with the TTL.
func (s *Store) Bump(ctx context.Context, ns string) {
	if s == nil {
		return
	}
	if err := s.rdb.Incr(ctx, keyPrefix+ns+":gen").Err(); err != nil {
		logger.WithCtx(ctx).Warn("cache bump failed", "namespace", ns, "error", err)
	}
}

// Ping reports whether Redis is reachable. A nil Store is always healthy.
func (s *Store) Ping(ctx context.Context) error {
	if s == nil {
		return nil
	}
	return s.rdb.Ping(ctx).Err()
}

func (s *Store) Close() error {
	if s == nil {
		return nil
	}
	return s.rdb.Close()
}
