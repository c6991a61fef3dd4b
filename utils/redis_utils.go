package utils

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/go-redis/redis/v8"
)

// RedisCacheStore is a thin wrapper over the redis client exposing the
// best-effort cache surface the feed pipeline needs. Safe for concurrent
// use. A missing key reads back as the empty string with a nil error; the
// pipeline never caches empty payloads, so the ambiguity is harmless.
type RedisCacheStore struct {
	inner *redis.Client
}

// GetRedisCacheStore connects to the redis instance specified by env.
func GetRedisCacheStore() (*RedisCacheStore, error) {
	return GetRedisCacheStoreWithAddr(
		fmt.Sprintf("%s:%s", os.Getenv("REDIS_HOST"), os.Getenv("REDIS_PORT")),
		os.Getenv("REDIS_PASSWD"),
	)
}

// GetRedisCacheStoreWithAddr connects to an explicit address. Used by tests
// to point the store at a miniredis instance.
func GetRedisCacheStoreWithAddr(addr, password string) (*RedisCacheStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       0, // use default DB
	})
	if _, err := client.Ping(context.Background()).Result(); err != nil {
		return nil, err
	}
	return &RedisCacheStore{inner: client}, nil
}

func (r *RedisCacheStore) Get(ctx context.Context, key string) (string, error) {
	val, err := r.inner.Get(ctx, key).Result()
	if err == redis.Nil {
		return "", nil
	}
	return val, err
}

func (r *RedisCacheStore) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	return r.inner.Set(ctx, key, value, ttl).Err()
}

func (r *RedisCacheStore) Del(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	return r.inner.Del(ctx, keys...).Err()
}
