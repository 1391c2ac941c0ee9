package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func writeFile(t *testing.T, dir, body string) string {
	t.Helper()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadFrom_Layering(t *testing.T) {
	path := writeFile(t, t.TempDir(), `
environment: staging
persistence:
  tableName: clubs-staging
authorization:
  cacheTtl: 2m
logging:
  level: debug
`)
	t.Setenv("TABLE_NAME", "clubs-from-env")
	t.Setenv("ENABLE_TRACING", "true")

	cfg, err := LoadFrom(path)
	require.NoError(t, err)

	assert.Equal(t, "staging", cfg.Environment)
	assert.Equal(t, "clubs-from-env", cfg.Persistence.TableName, "env wins over file")
	assert.Equal(t, 2*time.Minute, cfg.Authorization.CacheTTL, "file wins over default")
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.True(t, cfg.Observability.EnableTracing)
	assert.Equal(t, "GSI1", cfg.Persistence.GSI1Name, "default kept")
	assert.Equal(t, path, cfg.File)
}

func TestLoadFrom_MissingFile(t *testing.T) {
	_, err := LoadFrom(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoadFrom_BadDuration(t *testing.T) {
	t.Setenv("CAPABILITY_CACHE_TTL", "soon")
	_, err := LoadFrom("")
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults", func(*Config) {}, false},
		{"memory backend in development", func(c *Config) { c.Persistence.Backend = BackendMemory }, false},
		{"memory backend in production", func(c *Config) {
			c.Environment = "production"
			c.Persistence.Backend = BackendMemory
		}, true},
		{"unknown backend", func(c *Config) { c.Persistence.Backend = "postgres" }, true},
		{"missing table", func(c *Config) { c.Persistence.TableName = "" }, true},
		{"missing index", func(c *Config) { c.Persistence.GSI2Name = "" }, true},
		{"events without bus", func(c *Config) { c.Events.EventBusName = "" }, true},
		{"events disabled without bus", func(c *Config) {
			c.Events.Enabled = false
			c.Events.EventBusName = ""
		}, false},
		{"unverified tokens in production", func(c *Config) {
			c.Environment = "production"
			c.Authorization.AllowUnverifiedTokens = true
		}, true},
		{"zero cache ttl", func(c *Config) { c.Authorization.CacheTTL = 0 }, true},
		{"sample rate above one", func(c *Config) { c.Observability.TraceSampleRate = 1.5 }, true},
		{"bad log level", func(c *Config) { c.Logging.Level = "loud" }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestParseLevel(t *testing.T) {
	lvl, err := ParseLevel("")
	require.NoError(t, err)
	assert.Equal(t, zapcore.InfoLevel, lvl)

	lvl, err = ParseLevel("warn")
	require.NoError(t, err)
	assert.Equal(t, zapcore.WarnLevel, lvl)
}

func TestWatcher_ReloadsLogLevel(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "logging:\n  level: info\n")

	cfg, err := LoadFrom(path)
	require.NoError(t, err)

	level := zap.NewAtomicLevelAt(zapcore.InfoLevel)
	w, err := NewWatcher(cfg, zap.NewNop())
	require.NoError(t, err)
	w.OnChange(ApplyLogLevel(level))
	w.Start()
	defer w.Stop()

	writeFile(t, dir, "logging:\n  level: debug\n")

	assert.Eventually(t, func() bool {
		return level.Level() == zapcore.DebugLevel
	}, 2*time.Second, 20*time.Millisecond)
	assert.Equal(t, "debug", w.Current().Logging.Level)
}

func TestWatcher_KeepsLastGoodConfig(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "logging:\n  level: warn\n")

	cfg, err := LoadFrom(path)
	require.NoError(t, err)

	w, err := NewWatcher(cfg, zap.NewNop())
	require.NoError(t, err)
	w.reload()
	assert.Equal(t, "warn", w.Current().Logging.Level)

	writeFile(t, dir, "logging:\n  level: [not a level\n")
	w.reload()
	assert.Equal(t, "warn", w.Current().Logging.Level)
	w.Stop()
}

func TestNewWatcher_RequiresFile(t *testing.T) {
	_, err := NewWatcher(Default(), zap.NewNop())
	assert.Error(t, err)
}
