// Package cache is a small read-through cache for public catalog
// responses. It is optional: a nil-address config yields the no-op
// implementation and every lookup misses.
package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

type Cache interface {
	Set(ctx context.Context, key string, value string, ttl time.Duration) error
	// Get returns "" on a miss; errors are reserved for transport
	// failures.
	Get(ctx context.Context, key string) (string, error)
	Delete(ctx context.Context, keys ...string) error
	Key(operation, variant string) string
}

type redisCache struct {
	client *redis.Client
	prefix string
}

func NewRedisCache(addr, prefix string) Cache {
	return &redisCache{
		client: redis.NewClient(&redis.Options{Addr: addr}),
		prefix: prefix,
	}
}

func (r *redisCache) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	return r.client.Set(ctx, key, value, ttl).Err()
}

func (r *redisCache) Get(ctx context.Context, key string) (string, error) {
	value, err := r.client.Get(ctx, key).Result()
	if err == redis.Nil {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return value, nil
}

func (r *redisCache) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	return r.client.Del(ctx, keys...).Err()
}

func (r *redisCache) Key(operation, variant string) string {
	return fmt.Sprintf("%s:%s:%s", r.prefix, operation, variant)
}

type noopCache struct{}

// NewNoop returns a cache that never hits.
func NewNoop() Cache {
	return noopCache{}
}

func (noopCache) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	return nil
}

func (noopCache) Get(ctx context.Context, key string) (string, error) {
	return "", nil
}

func (noopCache) Delete(ctx context.Context, keys ...string) error {
	return nil
}

func (noopCache) Key(operation, variant string) string {
	return operation + ":" + variant
}
