package cache

import "time"

// Config holds cache limits.
type Config struct {
	// TTL is how long a successful load is kept.
	TTL time.Duration `mapstructure:"ttl" default:"5m"`
	// ErrorTTL is how long a failed load is kept. Zero disables negative
	// caching.
	ErrorTTL time.Duration `mapstructure:"error_ttl" default:"30s"`
	// Size caps the number of entries.
	Size int `mapstructure:"size" default:"4096"`
}
