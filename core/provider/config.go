package provider

import "time"

// Config holds per-provider settings.
type Config struct {
	// Enabled turns the provider on.
	Enabled bool `mapstructure:"enabled" default:"true"`
	// Interval is the delay between update cycles when driven by Run.
	Interval time.Duration `mapstructure:"interval" default:"1s"`
	// InitialCapacity sizes the registry.
	InitialCapacity int `mapstructure:"initial_capacity" default:"256"`
	// MaxItems caps live items, including removed items still referenced.
	// Zero means unlimited.
	MaxItems int64 `mapstructure:"max_items" default:"0"`
}
