// Package idempotency guards non-idempotent requests against duplicate
// submission using a client supplied Idempotency-Key.
package idempotency

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const defaultKeyPrefix = "zayana:idempotency:"

// Store reserves keys for a limited time.
type Store interface {
	// Reserve marks key as in use. It reports false when the key is
	// already reserved.
	Reserve(ctx context.Context, key string, ttl time.Duration) (bool, error)
	// Release frees key so the client may retry.
	Release(ctx context.Context, key string) error
}

// RedisStore shares reservations across instances.
type RedisStore struct {
	client    *redis.Client
	keyPrefix string
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// NewRedisStore connects and pings Redis.
func NewRedisStore(ctx context.Context, cfg RedisConfig) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return NewRedisStoreWithClient(client, ""), nil
}

func NewRedisStoreWithClient(client *redis.Client, keyPrefix string) *RedisStore {
	if keyPrefix == "" {
		keyPrefix = defaultKeyPrefix
	}
	return &RedisStore{client: client, keyPrefix: keyPrefix}
}

// Reserve uses SET NX with expiry in one round trip.
func (s *RedisStore) Reserve(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	ok, err := s.client.SetNX(ctx, s.keyPrefix+key, "1", ttl).Result()
	if err != nil {
		return false, fmt.Errorf("failed to reserve idempotency key: %w", err)
	}
	return ok, nil
}

func (s *RedisStore) Release(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, s.keyPrefix+key).Err(); err != nil {
		return fmt.Errorf("failed to release idempotency key: %w", err)
	}
	return nil
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}

// NoopStore accepts every key. It is used when Redis is not configured.
type NoopStore struct{}

func (NoopStore) Reserve(context.Context, string, time.Duration) (bool, error) { return true, nil }
func (NoopStore) Release(context.Context, string) error                       { return nil }

var (
	_ Store = (*RedisStore)(nil)
	_ Store = NoopStore{}
)
