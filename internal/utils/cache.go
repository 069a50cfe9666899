package utils

import (
	"fmt"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
)

type cacheItem struct {
	data      any
	expiresAt time.Time
}

// Cache is a bounded LRU whose entries also expire after a TTL.
type Cache struct {
	lruCache *lru.Cache[string, cacheItem]
	now      func() time.Time
}

func NewCache(size int) (*Cache, error) {
	l, err := lru.New[string, cacheItem](size)
	if err != nil {
		return nil, fmt.Errorf("create lru cache: %w", err)
	}
	return &Cache{lruCache: l, now: time.Now}, nil
}

func (c *Cache) Set(key string, data any, ttl time.Duration) {
	c.lruCache.Add(key, cacheItem{
		data:      data,
		expiresAt: c.now().Add(ttl),
	})
}

// Get returns nil when the key is absent or expired.
func (c *Cache) Get(key string) any {
	val, ok := c.lruCache.Get(key)
	if !ok {
		return nil
	}

	if c.now().After(val.expiresAt) {
		c.lruCache.Remove(key)
		return nil
	}

	return val.data
}

func (c *Cache) Delete(key string) {
	c.lruCache.Remove(key)
}

func (c *Cache) Len() int {
	return c.lruCache.Len()
}
