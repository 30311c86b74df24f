// Package config handles the application's configuration loading and management.
//
// It uses Viper to read configuration from environment variables and .env files,
// with defaults declared on the partial configuration structs themselves.
//
// # Features
//
//   - Environment Variables: Automatically maps environment variables to config fields
//     (nested keys are joined by underscores, e.g. RESOLVE_CACHE_TTL -> resolve.cache.ttl).
//   - .env Support: Loads .env files for local development via godotenv.
//   - Default Values: Uses 'default' struct tags to define fallback values.
//   - Modular Structure: Each package owns its partial Config (provider, workqueue,
//     resolve, cache, server, storage, database, logger) and this package composes them.
//
// # Usage
//
//	cfg, err := config.LoadConfig(".")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(cfg.Process.Interval)
package config
