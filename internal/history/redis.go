package history

import (
	"context"
	"errors"

	"github.com/redis/go-redis/v9"

	apierrors "github.com/diogo/pulsechat/internal/errors"
)

// redisKeyPrefix namespaces pulsechat keys in a shared Redis.
const redisKeyPrefix = "pulsechat:"

// RedisBackend stores keys in Redis without expiry.
type RedisBackend struct {
	client *redis.Client
}

// NewRedisBackend wraps an existing client
func NewRedisBackend(client *redis.Client) *RedisBackend {
	return &RedisBackend{client: client}
}

func (r *RedisBackend) key(k string) string {
	return redisKeyPrefix + k
}

// Get implements Backend.
func (r *RedisBackend) Get(ctx context.Context, key string) (string, bool, error) {
	val, err := r.client.Get(ctx, r.key(key)).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, apierrors.NewStorageError("get", key, err)
	}
	return val, true, nil
}

// Set implements Backend.
func (r *RedisBackend) Set(ctx context.Context, key, value string) error {
	if err := r.client.Set(ctx, r.key(key), value, 0).Err(); err != nil {
		return apierrors.NewStorageError("set", key, err)
	}
	return nil
}

// Delete implements Backend.
func (r *RedisBackend) Delete(ctx context.Context, key string) error {
	if err := r.client.Del(ctx, r.key(key)).Err(); err != nil {
		return apierrors.NewStorageError("delete", key, err)
	}
	return nil
}

// Close implements Backend.
func (r *RedisBackend) Close() error {
	return r.client.Close()
}
