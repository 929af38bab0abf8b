package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	t.Run("given no config file should use defaults", func(t *testing.T) {
		cfg, err := Load(viper.New(), "missing", t.TempDir())
		require.NoError(t, err)
		assert.Equal(t, 5*time.Second, cfg.Sync.Interval)
		assert.Equal(t, 30*time.Second, cfg.Sync.RefreshTimeout)
		assert.Equal(t, "salesrep.db", cfg.Store.Path)
		assert.False(t, cfg.Cache.Enabled)
	})

	t.Run("given config file should override defaults", func(t *testing.T) {
		dir := t.TempDir()
		content := `
application:
  env: development
store:
  path: /tmp/catalog.db
remote:
  base_url: https://api.example.com
sync:
  interval: 10s
cache:
  enabled: true
  port: 6380
`
		require.NoError(t, os.WriteFile(filepath.Join(dir, "salesrep.yaml"), []byte(content), 0o600))

		cfg, err := Load(viper.New(), "salesrep", dir)
		require.NoError(t, err)
		assert.Equal(t, "development", cfg.Application.Env)
		assert.Equal(t, "/tmp/catalog.db", cfg.Store.Path)
		assert.Equal(t, "https://api.example.com", cfg.Remote.BaseURL)
		assert.Equal(t, 10*time.Second, cfg.Sync.Interval)
		assert.True(t, cfg.Cache.Enabled)
		assert.Equal(t, uint16(6380), cfg.Cache.Port)
	})

	t.Run("given environment variable should override file", func(t *testing.T) {
		t.Setenv("SALESREP_SYNC_INTERVAL", "2s")
		cfg, err := Load(viper.New(), "missing", t.TempDir())
		require.NoError(t, err)
		assert.Equal(t, 2*time.Second, cfg.Sync.Interval)
	})

	t.Run("given non positive interval should return error", func(t *testing.T) {
		t.Setenv("SALESREP_SYNC_INTERVAL", "0s")
		_, err := Load(viper.New(), "missing", t.TempDir())
		assert.Error(t, err)
	})
}
