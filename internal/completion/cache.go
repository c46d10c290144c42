package completion

import (
	"time"

	"github.com/jellydator/ttlcache/v3"
)

// Cache keeps recent replies keyed by model and prompt.
type Cache struct {
	cache *ttlcache.Cache[string, string]
}

// NewCache creates a cache whose entries expire after ttl. It returns nil
// when ttl is not positive; a nil *Cache is a valid, always empty cache.
func NewCache(ttl time.Duration) *Cache {
	if ttl <= 0 {
		return nil
	}
	c := ttlcache.New[string, string](
		ttlcache.WithTTL[string, string](ttl),
		ttlcache.WithDisableTouchOnHit[string, string](),
		ttlcache.WithCapacity[string, string](256),
	)
	go c.Start()
	return &Cache{cache: c}
}

// Get returns the cached reply for model and prompt.
func (c *Cache) Get(model, prompt string) (string, bool) {
	if c == nil {
		return "", false
	}
	item := c.cache.Get(cacheKey(model, prompt))
	if item == nil {
		return "", false
	}
	return item.Value(), true
}

// Set stores a reply.
func (c *Cache) Set(model, prompt, reply string) {
	if c == nil {
		return
	}
	c.cache.Set(cacheKey(model, prompt), reply, ttlcache.DefaultTTL)
}

// Len returns the number of cached replies.
func (c *Cache) Len() int {
	if c == nil {
		return 0
	}
	return c.cache.Len()
}

// Close stops the expiration loop.
func (c *Cache) Close() {
	if c == nil {
		return
	}
	c.cache.Stop()
}

func cacheKey(model, prompt string) string {
	return model + "\x00" + prompt
}
