// Package cachestore provides the cache.Store engine adapters: a Redis
// adapter for production and an in-process adapter for tests and fallback.
package cachestore

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/goliatone/go-bus-catalog/cache"
)

// RedisStore implements cache.Store on a Redis engine. Eviction is owned by
// Redis: the constructor requests a memory ceiling and the allkeys-lru
// policy, and the adapter itself never evicts.
type RedisStore struct {
	client *redis.Client
	log    *slog.Logger
}

var _ cache.Store = (*RedisStore)(nil)

// NewRedisStore connects to the engine, verifies it with a ping, and pushes
// the eviction configuration. Managed Redis offerings often reject CONFIG
// SET; that is logged and tolerated because the operator configures the
// ceiling out of band there.
func NewRedisStore(ctx context.Context, cfg cache.Config, log *slog.Logger) (*RedisStore, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     10,
		MinIdleConns: 5,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("connect to redis at %s: %w", cfg.Addr, err)
	}

	s := &RedisStore{client: client, log: log}
	s.configureEviction(ctx, cfg)
	return s, nil
}

func (s *RedisStore) configureEviction(ctx context.Context, cfg cache.Config) {
	maxMemory := fmt.Sprintf("%dmb", cfg.MaxMemoryMB)
	if err := s.client.ConfigSet(ctx, "maxmemory", maxMemory).Err(); err != nil {
		s.log.Warn("redis maxmemory not applied", "value", maxMemory, "error", err)
		return
	}
	if err := s.client.ConfigSet(ctx, "maxmemory-policy", cache.EvictionPolicy).Err(); err != nil {
		s.log.Warn("redis eviction policy not applied", "policy", cache.EvictionPolicy, "error", err)
		return
	}
	s.log.Info("redis eviction configured", "maxmemory", maxMemory, "policy", cache.EvictionPolicy)
}

// Get retrieves the raw value for key; redis.Nil is a plain miss.
func (s *RedisStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	data, err := s.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("redis get %q: %w", key, err)
	}
	return data, true, nil
}

// Put stores value under key with a per-entry TTL.
func (s *RedisStore) Put(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	ttl = cache.NormalizeTTL(ttl)
	if err := s.client.Set(ctx, key, value, ttl).Err(); err != nil {
		return fmt.Errorf("redis set %q: %w", key, err)
	}
	return nil
}

// Delete removes key; removing an absent key is not an error in Redis.
func (s *RedisStore) Delete(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("redis del %q: %w", key, err)
	}
	return nil
}

// Invalidate deletes key and leaves an audit trail of the removal.
func (s *RedisStore) Invalidate(ctx context.Context, key string) error {
	s.log.Info("cache invalidate", "key", key)
	return s.Delete(ctx, key)
}

// Exists reports whether key holds a live entry.
func (s *RedisStore) Exists(ctx context.Context, key string) (bool, error) {
	n, err := s.client.Exists(ctx, key).Result()
	if err != nil {
		return false, fmt.Errorf("redis exists %q: %w", key, err)
	}
	return n > 0, nil
}

// Size returns the number of live keys in the selected database.
func (s *RedisStore) Size(ctx context.Context) (int64, error) {
	n, err := s.client.DBSize(ctx).Result()
	if err != nil {
		return 0, fmt.Errorf("redis dbsize: %w", err)
	}
	return n, nil
}

// Clear flushes the selected database. Maintenance and tests only.
func (s *RedisStore) Clear(ctx context.Context) error {
	if err := s.client.FlushDB(ctx).Err(); err != nil {
		return fmt.Errorf("redis flushdb: %w", err)
	}
	return nil
}

// Close releases the connection pool.
func (s *RedisStore) Close() error {
	return s.client.Close()
}

// Ping reports engine reachability, for health checks.
func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}
