package config

import (
	"reflect"
	"strings"

	"system-mirror/core/cache"
	"system-mirror/core/database"
	"system-mirror/core/logger"
	"system-mirror/core/provider"
	"system-mirror/core/resolve"
	"system-mirror/core/server"
	"system-mirror/core/storage"
	"system-mirror/core/workqueue"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all configuration for the application.
// It is divided into partial configurations for better modularity.
type Config struct {
	// Process configures the process provider.
	Process provider.Config `mapstructure:"process"`
	// Network configures the network connection provider.
	Network provider.Config `mapstructure:"network"`
	// Thread configures thread providers created on demand.
	Thread provider.Config `mapstructure:"thread"`
	// WorkQueue configures the shared enrichment worker pool.
	WorkQueue workqueue.Config `mapstructure:"workqueue"`
	// Resolve configures reverse DNS for connection endpoints.
	Resolve resolve.Config `mapstructure:"resolve"`
	// Digest configures the executable digest cache.
	Digest cache.Config `mapstructure:"digest"`
	// Server holds configuration for the HTTP query API.
	Server server.Config `mapstructure:"server"`
	// Storage holds configuration for snapshot export (S3, Minio).
	Storage storage.Config `mapstructure:"storage"`
	// Database holds configuration for the event journal.
	Database database.Config `mapstructure:"database"`
	// Log holds configuration for the logger.
	Log logger.Config `mapstructure:"log"`
}

// LoadConfig loads configuration from environment variables and .env file.
func LoadConfig(path string) (*Config, error) {
	// 1. Load .env file if it exists
	envPath := path + "/.env"
	if path == "." {
		envPath = ".env"
	}

	// Ignore error if file doesn't exist (e.g. production)
	_ = godotenv.Overload(envPath)

	v := viper.New()

	// Recursively parse struct tags to set default values
	bindValues(v, Config{}, "")

	// Map environment variables to nested keys (e.g. WORKQUEUE_MAX_WORKERS -> workqueue.max_workers)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, err
	}

	return &config, nil
}

// bindValues uses reflection to iterate over the struct and set default values in Viper
// based on the 'default' and 'mapstructure' tags.
func bindValues(v *viper.Viper, iface any, prefix string) {
	t := reflect.TypeOf(iface)

	// If it's a pointer, get the element
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		tag := field.Tag.Get("mapstructure")

		// Skip if no tag
		if tag == "" {
			continue
		}

		// Build the key
		key := tag
		if prefix != "" {
			key = prefix + "." + tag
		}

		// If it's a nested struct, recurse
		if field.Type.Kind() == reflect.Struct {
			bindValues(v, reflect.New(field.Type).Elem().Interface(), key)
			continue
		}

		defaultValue := field.Tag.Get("default")
		// Always set default (even if empty) to register the key for AutomaticEnv
		v.SetDefault(key, defaultValue)
	}
}
