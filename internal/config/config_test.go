package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/salimhm/zillow-scraper/internal/config"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := config.Load("")
	require.NoError(t, err)

	assert.Equal(t, 30*time.Second, cfg.Scraper.Timeout)
	assert.Equal(t, 3, cfg.Scraper.MaxRetries)
	assert.Equal(t, time.Second, cfg.Scraper.DelayMin)
	assert.Equal(t, 3*time.Second, cfg.Scraper.DelayMax)
	assert.Equal(t, 60, cfg.Scraper.RatePerMinute)
	assert.False(t, cfg.Redis.Enabled)
	assert.Equal(t, ":8080", cfg.Server.Address)
	assert.Equal(t, "info", cfg.Logger.Level)
	assert.Empty(t, cfg.Scraper.Proxies)
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
scraper:
  proxies:
    - http://proxy1:8080
    - http://proxy2:8080
  max_retries: 5
  rate_per_minute: 10
server:
  address: ":9090"
logger:
  level: debug
  encoding: console
`), 0o600))

	cfg, err := config.Load(path)
	require.NoError(t, err)

	assert.Equal(t, []string{"http://proxy1:8080", "http://proxy2:8080"}, cfg.Scraper.Proxies)
	assert.Equal(t, 5, cfg.Scraper.MaxRetries)
	assert.Equal(t, 10, cfg.Scraper.RatePerMinute)
	assert.Equal(t, ":9090", cfg.Server.Address)
	assert.Equal(t, "debug", cfg.Logger.Level)
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("SCRAPER_PROXIES", "http://a:1,http://b:2")
	t.Setenv("SCRAPER_MAX_RETRIES", "7")
	t.Setenv("LOG_LEVEL", "warn")

	cfg, err := config.Load("")
	require.NoError(t, err)

	assert.Equal(t, []string{"http://a:1", "http://b:2"}, cfg.Scraper.Proxies)
	assert.Equal(t, 7, cfg.Scraper.MaxRetries)
	assert.Equal(t, "warn", cfg.Logger.Level)
}

func TestLoadRejectsInvalidLevel(t *testing.T) {
	t.Setenv("LOG_LEVEL", "loud")

	_, err := config.Load("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "log level")
}

func TestLoadMissingExplicitFile(t *testing.T) {
	_, err := config.Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	cfg, err := config.Load("")
	require.NoError(t, err)

	cfg.Scraper.DelayMin = 5 * time.Second
	cfg.Scraper.DelayMax = time.Second
	assert.Error(t, cfg.Validate())

	cfg, err = config.Load("")
	require.NoError(t, err)
	cfg.Redis.Enabled = true
	cfg.Redis.Addr = ""
	assert.Error(t, cfg.Validate())
}
