package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "data", cfg.Storage.DataDir)
	assert.True(t, cfg.Security.RateLimit.Enabled)
	require.NoError(t, cfg.validate())
}

func TestLoad_EnvOverrides(t *testing.T) {
	requireChdir(t, t.TempDir())
	t.Setenv("FLASH_SERVER_PORT", "9999")
	t.Setenv("FLASH_LOGGING_LEVEL", "debug")
	t.Setenv("FLASH_SECURITY_RATE_LIMIT_ENABLED", "false")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9999, cfg.Server.Port)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.False(t, cfg.Security.RateLimit.Enabled)
}

func TestLoad_YAMLFile(t *testing.T) {
	dir := t.TempDir()
	requireChdir(t, dir)
	yaml := []byte("server:\n  port: 7070\nstorage:\n  data_dir: /tmp/flash-test\n")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), yaml, 0o600))

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 7070, cfg.Server.Port)
	assert.Equal(t, "/tmp/flash-test", cfg.Storage.DataDir)

	t.Run("env wins over file", func(t *testing.T) {
		t.Setenv("FLASH_SERVER_PORT", "6060")
		cfg, err := Load()
		require.NoError(t, err)
		assert.Equal(t, 6060, cfg.Server.Port)
	})
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"bad port", func(c *Config) { c.Server.Port = -1 }},
		{"zero read timeout", func(c *Config) { c.Server.ReadTimeout = 0 }},
		{"empty data dir", func(c *Config) { c.Storage.DataDir = "" }},
		{"rate limit enabled without rps", func(c *Config) { c.Security.RateLimit.RPS = 0 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			assert.Error(t, cfg.validate())
		})
	}
}

// requireChdir moves the working directory so Load never sees a stray
// config.yaml from the repo.
func requireChdir(t *testing.T, dir string) {
	t.Helper()
	orig, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(orig) })
}
