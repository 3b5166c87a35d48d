package cache

import (
	"strings"
	"sync"
	"time"
)

// maxLocalEntries caps the in-process cache.
const maxLocalEntries = 4096

type item struct {
	val     []byte
	expires time.Time // zero means no expiry
}

func (it item) expired(now time.Time) bool {
	return !it.expires.IsZero() && now.After(it.expires)
}

// TTLCache is the in-process BytesCache used when Redis is disabled.
type TTLCache struct {
	mu    sync.Mutex
	items map[string]item
	now   func() time.Time
}

func NewTTLCache() *TTLCache {
	return &TTLCache{items: make(map[string]item), now: time.Now}
}

func (c *TTLCache) GetBytes(key string) ([]byte, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	it, ok := c.items[key]
	if !ok {
		return nil, false, nil
	}
	if it.expired(c.now()) {
		delete(c.items, key)
		return nil, false, nil
	}
	return append([]byte(nil), it.val...), true, nil
}

func (c *TTLCache) SetBytes(key string, value []byte, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := c.now()
	it := item{val: append([]byte(nil), value...)}
	if ttl > 0 {
		it.expires = now.Add(ttl)
	}
	if _, exists := c.items[key]; !exists && len(c.items) >= maxLocalEntries {
		c.evict(now)
	}
	c.items[key] = it
	return nil
}

func (c *TTLCache) DeletePrefix(prefix string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for k := range c.items {
		if strings.HasPrefix(k, prefix) {
			delete(c.items, k)
		}
	}
	return nil
}

// Len counts entries, expired ones included until they are touched.
func (c *TTLCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}

// evict drops expired entries, then arbitrary ones until half the capacity is free.
func (c *TTLCache) evict(now time.Time) {
	for k, it := range c.items {
		if it.expired(now) {
			delete(c.items, k)
		}
	}
	for k := range c.items {
		if len(c.items) <= maxLocalEntries/2 {
			return
		}
		delete(c.items, k)
	}
}
