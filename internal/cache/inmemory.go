package cache

import (
	"context"
	"strings"
	"time"

	goCache "github.com/patrickmn/go-cache"
)

// DefaultExpiration applies when a caller configures no TTL
const DefaultExpiration = 30 * time.Minute

// DefaultCleanupInterval bounds how long an expired session lingers before
// its eviction hook cancels the session watch
const DefaultCleanupInterval = 10 * time.Minute

// InMemoryCache is the process-local store for sessions and trial statuses.
// A disabled cache stores nothing and misses on every Get.
type InMemoryCache struct {
	cache   *goCache.Cache
	enabled bool
}

// NewInMemoryCache creates a cache whose entries live for expiration unless
// Set is given its own TTL, as sessions bounded by the token expiry are
func NewInMemoryCache(expiration time.Duration, enabled bool) *InMemoryCache {
	if expiration <= 0 {
		expiration = DefaultExpiration
	}
	return &InMemoryCache{
		cache:   goCache.New(expiration, DefaultCleanupInterval),
		enabled: enabled,
	}
}

// OnEvicted registers fn to run when an item expires or is deleted.
// Sessions use it to stop their status watch.
func (c *InMemoryCache) OnEvicted(fn func(key string, value interface{})) {
	c.cache.OnEvicted(fn)
}

func (c *InMemoryCache) Get(_ context.Context, key string) (interface{}, bool) {
	if !c.enabled {
		return nil, false
	}
	return c.cache.Get(key)
}

// Set stores value. A zero expiration keeps the TTL the cache was built with.
func (c *InMemoryCache) Set(_ context.Context, key string, value interface{}, expiration time.Duration) {
	if !c.enabled {
		return
	}
	if expiration == 0 {
		expiration = goCache.DefaultExpiration
	}
	c.cache.Set(key, value, expiration)
}

// Delete removes key and runs the eviction hook
func (c *InMemoryCache) Delete(_ context.Context, key string) {
	c.cache.Delete(key)
}

// DeleteByPrefix drops every entry of one kind, e.g. all trial statuses
func (c *InMemoryCache) DeleteByPrefix(_ context.Context, prefix string) {
	for k := range c.cache.Items() {
		if strings.HasPrefix(k, prefix) {
			c.cache.Delete(k)
		}
	}
}

func (c *InMemoryCache) Count() int {
	return c.cache.ItemCount()
}
