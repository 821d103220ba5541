package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/billie-coop/metanet/internal/settings"
)

func TestLoadWritesDefaults(t *testing.T) {
	dir := filepath.Join(t.TempDir(), ".metanet")
	m := NewManager(dir)
	require.NoError(t, m.Load())

	_, err := os.Stat(m.Path())
	require.NoError(t, err)

	cfg := m.Get()
	assert.Equal(t, CacheSQLite, cfg.Cache.Backend)
	assert.Equal(t, 30*24*time.Hour, time.Duration(cfg.Cache.MaxStale))
	assert.Equal(t, filepath.Join(dir, "cache.db"), m.SQLitePath())
	assert.Equal(t, filepath.Join(dir, "metanet.log"), m.LogPath())
	assert.Len(t, cfg.DefaultSettings().TrustedEntities, 2)
}

func TestLoadReadsFileAndExpandsVars(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("METANET_TEST_REDIS", "redis.internal:6380")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.json"), []byte(`{
		"theme": "light",
		"log_level": "debug",
		"cache": {"backend": "redis", "redis_addr": "${METANET_TEST_REDIS}", "max_stale": "1h"},
		"http_timeout": "3s",
		"resolver_rate": 2
	}`), 0o600))

	m := NewManager(dir)
	require.NoError(t, m.Load())
	cfg := m.Get()
	assert.Equal(t, "light", cfg.Theme)
	assert.Equal(t, settings.ThemeLight, cfg.DefaultSettings().Theme.Mode)
	assert.Equal(t, "redis.internal:6380", cfg.Cache.RedisAddr)
	assert.Equal(t, time.Hour, time.Duration(cfg.Cache.MaxStale))
	assert.Equal(t, 3*time.Second, time.Duration(cfg.HTTPTimeout))
}

func TestEnvironmentOverridesFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.json"), []byte(`{"cache":{"backend":"sqlite"}}`), 0o600))
	t.Setenv("METANET_CACHE_BACKEND", "memory")
	t.Setenv("METANET_LOG_LEVEL", "warn")
	t.Setenv("METANET_CACHE_MAX_STALE", "15m")

	m := NewManager(dir)
	require.NoError(t, m.Load())
	assert.Equal(t, CacheMemory, m.Get().Cache.Backend)
	assert.Equal(t, "warn", m.Get().LogLevel)
	assert.Equal(t, 15*time.Minute, time.Duration(m.Get().Cache.MaxStale))
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.json"), []byte(`{"cache":{"backend":"floppy"}}`), 0o600))
	assert.Error(t, NewManager(dir).Load())

	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.json"), []byte(`{"http_timeout": 5}`), 0o600))
	assert.Error(t, NewManager(dir).Load())
}

func TestSetPersists(t *testing.T) {
	dir := t.TempDir()
	m := NewManager(dir)
	require.NoError(t, m.Load())

	require.NoError(t, m.Set("cache.backend", "memory"))
	require.NoError(t, m.Set("usd_per_bsv", "61.25"))
	assert.Error(t, m.Set("cache.backend", "tape"))
	assert.Error(t, m.Set("nope", "x"))

	reloaded := NewManager(dir)
	require.NoError(t, reloaded.Load())
	assert.Equal(t, CacheMemory, reloaded.Get().Cache.Backend)
	assert.InDelta(t, 61.25, reloaded.Get().USDPerBSV, 0.0001)
}
