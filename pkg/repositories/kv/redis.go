package kv

import (
	"context"
	"errors"

	"github.com/redis/go-redis/v9"
)

type redisRepository struct {
	rdb    *redis.Client
	prefix string
}

func (r *redisRepository) Get(ctx context.Context, key string) (string, error) {
	v, err := r.rdb.Get(ctx, r.prefix+key).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrNotFound
	}
	return v, err
}

func (r *redisRepository) Set(ctx context.Context, key, value string) error {
	return r.rdb.Set(ctx, r.prefix+key, value, 0).Err()
}

func (r *redisRepository) Remove(ctx context.Context, key string) error {
	return r.rdb.Del(ctx, r.prefix+key).Err()
}

// NewRedisRepository namespaces every key with prefix.
func NewRedisRepository(rdb *redis.Client, prefix string) Repository {
	return &redisRepository{
		rdb:    rdb,
		prefix: prefix,
	}
}
