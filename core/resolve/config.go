package resolve

import (
	"time"

	"system-mirror/core/cache"
)

// Config holds reverse-DNS settings.
type Config struct {
	// Enabled turns hostname resolution on.
	Enabled bool `mapstructure:"enabled" default:"true"`
	// Timeout bounds a single lookup.
	Timeout time.Duration `mapstructure:"timeout" default:"2s"`
	// Cache bounds the resolve cache.
	Cache cache.Config `mapstructure:"cache"`
}
