package server

import (
	"fmt"
	"strconv"
)

// Config holds configuration for the HTTP query API.
type Config struct {
	// Enabled starts the API alongside the monitor.
	Enabled bool `mapstructure:"enabled" default:"true"`
	// Port is the port where the server will listen.
	Port string `mapstructure:"port" default:"8080"`
	// ApiKey is the secret key required to access the API. Empty disables authentication.
	ApiKey string `mapstructure:"api_key" default:""`
}

// Address returns the listen address for the configured port.
func (c Config) Address() (string, error) {
	port, err := strconv.Atoi(c.Port)
	if err != nil || port < 1 || port > 65535 {
		return "", fmt.Errorf("invalid server port %q", c.Port)
	}
	return ":" + c.Port, nil
}
