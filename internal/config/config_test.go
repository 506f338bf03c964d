package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "ember.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestDefault(t *testing.T) {
	cfg := Default()
	assert.Equal(t, 3, cfg.Fuse.Max)
	assert.Equal(t, time.Hour, cfg.Fuse.RechargeWindow)
	assert.Equal(t, "127.0.0.1:5000", cfg.ListenAddr())
	assert.NoError(t, cfg.Validate())
}

func TestLoadOverlaysDefaults(t *testing.T) {
	path := writeConfig(t, `
server:
  port: 8080
fuse:
  max: 5
  recharge_window: 90m
log:
  level: debug
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1", cfg.Server.Bind, "bind keeps default")
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 5, cfg.Fuse.Max)
	assert.Equal(t, 90*time.Minute, cfg.Fuse.RechargeWindow)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "sqlite", cfg.Journal.Driver)
}

func TestLoadRejectsFileJournal(t *testing.T) {
	path := writeConfig(t, `
journal:
  driver: sqlite
  path: /tmp/ember.db
`)
	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoadUnknownDriver(t *testing.T) {
	path := writeConfig(t, "journal:\n  driver: redis\n")
	_, err := Load(path)
	assert.ErrorContains(t, err, "unknown journal driver")
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestApplyEnv(t *testing.T) {
	t.Setenv("PORT", "6001")
	t.Setenv("EMBER_BIND", "0.0.0.0")
	t.Setenv("EMBER_FUSE_MAX", "1")
	t.Setenv("EMBER_RECHARGE", "10m")
	t.Setenv("EMBER_LOG_LEVEL", "warn")

	cfg := Default()
	require.NoError(t, cfg.ApplyEnv())
	assert.Equal(t, "0.0.0.0:6001", cfg.ListenAddr())
	assert.Equal(t, 1, cfg.Fuse.Max)
	assert.Equal(t, 10*time.Minute, cfg.Fuse.RechargeWindow)
	assert.Equal(t, "warn", cfg.Log.Level)
}

func TestApplyEnvBadPort(t *testing.T) {
	t.Setenv("PORT", "not-a-port")
	cfg := Default()
	assert.Error(t, cfg.ApplyEnv())
}

func TestValidateRecharge(t *testing.T) {
	cfg := Default()
	cfg.Fuse.RechargeWindow = 0
	assert.Error(t, cfg.Validate())
}
