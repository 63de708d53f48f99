// Package cache provides the key-value cache in front of the relational
// store. The cache is an optimization, never the source of truth: callers
// fall back to the store on a miss and repopulate the cache.
package cache

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// Store is the cache surface the services depend on. Values are stored as
// JSON strings.
type Store interface {
	GetJSON(ctx context.Context, key string, target interface{}) (bool, error)
	SetJSON(ctx context.Context, key string, value interface{}) error
	Del(ctx context.Context, key string) error
}

// RedisStore 基于 Redis 的缓存实现
type RedisStore struct {
	client *redis.Client
	logger *logrus.Logger
}

// NewRedisStore connects to Redis and verifies connectivity before returning,
// so a misconfigured cache fails at startup instead of on first use.
func NewRedisStore(ctx context.Context, host string, port int, password string, db int, logger *logrus.Logger) (*RedisStore, error) {
	if logger == nil {
		logger = logrus.New()
	}

	addr := fmt.Sprintf("%s:%d", host, port)
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("connect to redis at %s: %w", addr, err)
	}
	logger.Infof("Connected to Redis at %s", addr)

	return &RedisStore{client: client, logger: logger}, nil
}

// Close closes the underlying Redis connection.
func (s *RedisStore) Close() error {
	return s.client.Close()
}

// HealthCheck pings Redis; used by the health endpoint.
func (s *RedisStore) HealthCheck(ctx context.Context) error {
	if err := s.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping: %w", err)
	}
	return nil
}

// GetJSON reads key and unmarshals into target. A miss is (false, nil), not
// an error.
func (s *RedisStore) GetJSON(ctx context.Context, key string, target interface{}) (bool, error) {
	val, err := s.client.Get(ctx, key).Result()
	if err == redis.Nil {
		s.logger.Debugf("Cache miss: %s", key)
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("redis get %s: %w", key, err)
	}
	if err := json.Unmarshal([]byte(val), target); err != nil {
		return false, fmt.Errorf("unmarshal cached %s: %w", key, err)
	}
	s.logger.Debugf("Cache hit: %s", key)
	return true, nil
}

// SetJSON marshals value and stores it under key with no expiry; sync jobs
// overwrite the full value on every run.
func (s *RedisStore) SetJSON(ctx context.Context, key string, value interface{}) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", key, err)
	}
	if err := s.client.Set(ctx, key, data, 0).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}

// Del removes a key.
func (s *RedisStore) Del(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("redis del %s: %w", key, err)
	}
	return nil
}
