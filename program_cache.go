package settings

import (
	"time"

	"github.com/jellydator/ttlcache/v3"
)

// ProgramCache stores compiled programs keyed by expression.
type ProgramCache interface {
	Get(key string) (any, bool)
	Set(key string, value any)
}

// WithProgramCache shares cache with the default expr evaluator.
func WithProgramCache(cache ProgramCache) Option {
	return func(cfg *config) {
		cfg.programCache = cache
	}
}

// TTLProgramCache is a ProgramCache whose entries expire after a period of
// disuse. Reads extend an entry's lifetime.
type TTLProgramCache struct {
	cache *ttlcache.Cache[string, any]
}

// NewTTLProgramCache builds a cache holding at most capacity programs for
// ttl each. A zero capacity means unbounded.
func NewTTLProgramCache(ttl time.Duration, capacity uint64) *TTLProgramCache {
	opts := []ttlcache.Option[string, any]{ttlcache.WithTTL[string, any](ttl)}
	if capacity > 0 {
		opts = append(opts, ttlcache.WithCapacity[string, any](capacity))
	}
	return &TTLProgramCache{cache: ttlcache.New(opts...)}
}

// Get implements ProgramCache.
func (c *TTLProgramCache) Get(key string) (any, bool) {
	item := c.cache.Get(key)
	if item == nil {
		return nil, false
	}
	return item.Value(), true
}

// Set implements ProgramCache.
func (c *TTLProgramCache) Set(key string, value any) {
	c.cache.Set(key, value, ttlcache.DefaultTTL)
}

// Len reports the number of cached programs.
func (c *TTLProgramCache) Len() int {
	return c.cache.Len()
}
