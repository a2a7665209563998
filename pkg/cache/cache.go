// Package cache provides a small TTL cache for repository and service decorators.
package cache

import (
	"sync"
	"time"
)

type item struct {
	value     any
	expiresAt time.Time
}

type SimpleCache struct {
	mu    sync.RWMutex
	items map[string]item
	ttl   time.Duration
	now   func() time.Time
}

func (c *SimpleCache) Get(key string) (any, bool) {
	c.mu.RLock()
	it, ok := c.items[key]
	c.mu.RUnlock()

	if !ok {
		return nil, false
	}
	if !c.now().After(it.expiresAt) {
		return it.value, true
	}

	// The key may have been refreshed since the read lock was dropped.
	c.mu.Lock()
	defer c.mu.Unlock()

	it, ok = c.items[key]
	if !ok {
		return nil, false
	}
	if c.now().After(it.expiresAt) {
		delete(c.items, key)
		return nil, false
	}

	return it.value, true
}

func (c *SimpleCache) Set(key string, value any) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.items[key] = item{value: value, expiresAt: c.now().Add(c.ttl)}
}

func (c *SimpleCache) Release(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.items, key)
}

// Purge drops expired items and returns how many were removed.
func (c *SimpleCache) Purge() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	removed := 0
	for k, it := range c.items {
		if now.After(it.expiresAt) {
			delete(c.items, k)
			removed++
		}
	}

	return removed
}

func NewSimpleCache(ttl time.Duration) *SimpleCache {
	return &SimpleCache{
		items: make(map[string]item),
		ttl:   ttl,
		now:   time.Now,
	}
}
