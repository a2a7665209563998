package kv

import (
	"context"
	"time"

	"iframe-generator/pkg/cache"
)

type cacheMiddleware struct {
	repo  Repository
	cache *cache.SimpleCache
}

func (c *cacheMiddleware) Get(ctx context.Context, key string) (string, error) {
	if v, ok := c.cache.Get(key); ok {
		return v.(string), nil
	}

	value, err := c.repo.Get(ctx, key)
	if err == nil {
		c.cache.Set(key, value)
	}

	return value, err
}

func (c *cacheMiddleware) Set(ctx context.Context, key, value string) (err error) {
	err = c.repo.Set(ctx, key, value)
	if err != nil {
		c.cache.Release(key)
		return
	}

	c.cache.Set(key, value)
	return
}

func (c *cacheMiddleware) Remove(ctx context.Context, key string) (err error) {
	c.cache.Release(key)
	return c.repo.Remove(ctx, key)
}

// NewCache keeps read values for ttl. Writes through this decorator update
// the cached copy, so it must wrap every writer of repo.
func NewCache(repo Repository, ttl time.Duration) Repository {
	return &cacheMiddleware{
		repo:  repo,
		cache: cache.NewSimpleCache(ttl),
	}
}
