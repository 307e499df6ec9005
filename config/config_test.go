package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("CONFIG_PATH", "")
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(t.TempDir()))
	t.Cleanup(func() { _ = os.Chdir(wd) })

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 8000, cfg.Server.Port)
	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.False(t, cfg.Auth.ProtectIndex)
	assert.Equal(t, "/media", cfg.Media.URLPrefix)
	assert.Equal(t, 30*time.Second, cfg.Redis.ListingTTL)
}

func TestLoadFileAndEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := []byte(`
server:
  port: 9090
database:
  driver: postgres
  dsn: host=db user=ceb
auth:
  protect_index: true
`)
	require.NoError(t, os.WriteFile(path, content, 0o600))
	t.Setenv("CONFIG_PATH", path)
	t.Setenv("CEB_SERVER_PORT", "9191")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 9191, cfg.Server.Port)
	assert.Equal(t, "postgres", cfg.Database.Driver)
	assert.True(t, cfg.Auth.ProtectIndex)
	assert.Equal(t, ":9191", cfg.Server.Addr())
}

func TestLoadEnvOverridesKeysWithoutFileValue(t *testing.T) {
	t.Setenv("CONFIG_PATH", "")
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(t.TempDir()))
	t.Cleanup(func() { _ = os.Chdir(wd) })

	t.Setenv("CEB_SENTRY_DSN", "https://key@sentry.example/1")
	t.Setenv("CEB_REDIS_PASSWORD", "hunter2")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "https://key@sentry.example/1", cfg.Sentry.DSN)
	assert.Equal(t, "hunter2", cfg.Redis.Password)
}

func TestValidate(t *testing.T) {
	base := Config{
		Server:   ServerConfig{Mode: "debug"},
		Database: DatabaseConfig{Driver: "sqlite", DSN: ":memory:"},
		Media:    MediaConfig{Root: "media"},
	}
	assert.NoError(t, base.Validate())

	bad := base
	bad.Database.Driver = "oracle"
	assert.Error(t, bad.Validate())

	bad = base
	bad.Database.DSN = ""
	assert.Error(t, bad.Validate())

	bad = base
	bad.Server.Mode = "release"
	assert.Error(t, bad.Validate(), "release mode needs a jwt secret")
	bad.JWT.Secret = "s3cret"
	assert.NoError(t, bad.Validate())
}
