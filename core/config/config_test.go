package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := LoadConfig(t.TempDir())
	require.NoError(t, err)

	assert.True(t, cfg.Process.Enabled)
	assert.Equal(t, time.Second, cfg.Process.Interval)
	assert.Equal(t, 256, cfg.Process.InitialCapacity)
	assert.Equal(t, "enrichment", cfg.WorkQueue.Name)
	assert.Equal(t, 4, cfg.WorkQueue.MaximumWorkers)
	assert.Equal(t, time.Second, cfg.WorkQueue.IdleTimeout)
	assert.Equal(t, 2*time.Second, cfg.Resolve.Timeout)
	assert.Equal(t, 5*time.Minute, cfg.Resolve.Cache.TTL)
	assert.Equal(t, 4096, cfg.Digest.Size)
	assert.Equal(t, "8080", cfg.Server.Port)
	assert.False(t, cfg.Database.Enabled)
	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.False(t, cfg.Storage.Enabled)
	assert.Equal(t, 60, cfg.Storage.EveryCycles)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestLoadConfig_Environment(t *testing.T) {
	t.Setenv("WORKQUEUE_MAX_WORKERS", "8")
	t.Setenv("NETWORK_INTERVAL", "250ms")
	t.Setenv("RESOLVE_CACHE_SIZE", "10")
	t.Setenv("NETWORK_ENABLED", "false")

	cfg, err := LoadConfig(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, 8, cfg.WorkQueue.MaximumWorkers)
	assert.Equal(t, 250*time.Millisecond, cfg.Network.Interval)
	assert.Equal(t, 10, cfg.Resolve.Cache.Size)
	assert.False(t, cfg.Network.Enabled)
}

func TestLoadConfig_DotEnv(t *testing.T) {
	dir := t.TempDir()
	err := os.WriteFile(filepath.Join(dir, ".env"), []byte("LOG_LEVEL=debug\nSERVER_PORT=9090\n"), 0o644)
	require.NoError(t, err)
	t.Cleanup(func() {
		os.Unsetenv("LOG_LEVEL")
		os.Unsetenv("SERVER_PORT")
	})

	cfg, err := LoadConfig(dir)
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "9090", cfg.Server.Port)
}
