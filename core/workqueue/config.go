package workqueue

import (
	"fmt"
	"time"
)

// Config holds configuration for a worker pool.
type Config struct {
	// Name labels the pool in logs and metrics.
	Name string `mapstructure:"name" default:"enrichment"`
	// MinimumWorkers is the number of workers kept alive when idle.
	MinimumWorkers int `mapstructure:"min_workers" default:"0"`
	// MaximumWorkers caps the number of concurrent workers.
	MaximumWorkers int `mapstructure:"max_workers" default:"4"`
	// IdleTimeout is how long a worker waits for work before exiting.
	IdleTimeout time.Duration `mapstructure:"idle_timeout" default:"1s"`
}

// Validate checks the worker bounds.
func (c Config) Validate() error {
	if c.MaximumWorkers < 1 {
		return fmt.Errorf("workqueue %q: max workers must be at least 1", c.Name)
	}
	if c.MinimumWorkers < 0 || c.MinimumWorkers > c.MaximumWorkers {
		return fmt.Errorf("workqueue %q: min workers must be between 0 and %d", c.Name, c.MaximumWorkers)
	}
	if c.IdleTimeout <= 0 {
		return fmt.Errorf("workqueue %q: idle timeout must be positive", c.Name)
	}
	return nil
}
