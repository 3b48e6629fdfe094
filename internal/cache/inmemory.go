package cache

import (
	"context"
	"strings"
	"time"

	"github.com/gpinvoice/invoicegen/internal/config"
	"github.com/gpinvoice/invoicegen/internal/logger"
	goCache "github.com/patrickmn/go-cache"
)

// DefaultExpiration applies when no draft TTL is configured
const DefaultExpiration = 30 * time.Minute

// DefaultCleanupInterval is how often expired items are removed from the cache
const DefaultCleanupInterval = 10 * time.Minute

// InMemoryCache implements the Cache interface using github.com/patrickmn/go-cache
type InMemoryCache struct {
	cache *goCache.Cache
}

// NewInMemoryCache creates the cache holding draft sessions
func NewInMemoryCache(cfg *config.Configuration, log *logger.Logger) Cache {
	expiration := cfg.Drafts.TTL
	if expiration <= 0 {
		expiration = DefaultExpiration
	}
	log.Infow("initializing draft cache", "expiration", expiration.String())

	return &InMemoryCache{
		cache: goCache.New(expiration, DefaultCleanupInterval),
	}
}

// Get retrieves a value from the cache
func (c *InMemoryCache) Get(ctx context.Context, key string) (interface{}, bool) {
	span := startSpan(ctx, "get", key)
	v, ok := c.cache.Get(key)
	finishSpan(span, ok)
	return v, ok
}

// Set adds a value to the cache with the specified expiration
func (c *InMemoryCache) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) {
	span := startSpan(ctx, "set", key)
	if expiration == 0 {
		expiration = goCache.DefaultExpiration
	}
	c.cache.Set(key, value, expiration)
	finishSpan(span, true)
}

// Delete removes a key from the cache
func (c *InMemoryCache) Delete(_ context.Context, key string) {
	c.cache.Delete(key)
}

// DeleteByPrefix removes all keys with the given prefix
func (c *InMemoryCache) DeleteByPrefix(_ context.Context, prefix string) {
	for k := range c.cache.Items() {
		if strings.HasPrefix(k, prefix) {
			c.cache.Delete(k)
		}
	}
}

// Flush removes all items from the cache
func (c *InMemoryCache) Flush(_ context.Context) {
	c.cache.Flush()
}
