package config

import (
	"strings"
	"time"
)

// CacheConfig defines settings for the response cache that fronts the public
// casting listing. When Enabled is false or no Redis client is configured,
// caching is disabled. Methods lists the HTTP methods to cache (e.g. GET,
// HEAD). Listings larger than MaxBodyBytes are served but not stored.
type CacheConfig struct {
	Enabled      bool          `env:"CACHE_ENABLED, default=true"`
	MethodList   []string      `env:"CACHE_METHODS, default=GET"`
	TTL          time.Duration `env:"CACHE_TTL, default=30s"`
	Prefix       string        `env:"CACHE_PREFIX, default=audire:cache"`
	MaxBodyBytes int           `env:"CACHE_MAX_BODY_BYTES, default=1048576"`

	Methods map[string]bool
}

func (c *CacheConfig) normalize() {
	c.Methods = map[string]bool{}
	for _, m := range c.MethodList {
		if m = strings.TrimSpace(strings.ToUpper(m)); m != "" {
			c.Methods[m] = true
		}
	}
	if c.TTL <= 0 {
		c.TTL = 30 * time.Second
	}
}
