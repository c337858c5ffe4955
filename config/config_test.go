package config

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/worktime/ledger"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "worktime.db", cfg.Database.Path)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, 15*time.Hour, cfg.Reconcile.TimezoneTolerance)
	assert.NoError(t, cfg.Validate())
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*Config)
		wantErr bool
	}{
		{name: "valid default config", modify: func(c *Config) {}},
		{name: "port zero", modify: func(c *Config) { c.Server.Port = 0 }, wantErr: true},
		{name: "port too high", modify: func(c *Config) { c.Server.Port = 70000 }, wantErr: true},
		{name: "missing database path", modify: func(c *Config) { c.Database.Path = "" }, wantErr: true},
		{name: "unknown log level", modify: func(c *Config) { c.Log.Level = "chatty" }, wantErr: true},
		{name: "negative tolerance", modify: func(c *Config) { c.Reconcile.TimezoneTolerance = -time.Hour }, wantErr: true},
		{name: "bad default start", modify: func(c *Config) { c.Reconcile.DefaultStart = "01/02/2024" }, wantErr: true},
		{name: "good default start", modify: func(c *Config) { c.Reconcile.DefaultStart = "2024-01-01" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.modify(cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	// GIVEN: a partial config file
	path := filepath.Join(t.TempDir(), "worktime.yaml")
	content := `
server:
  port: 9090
  write_timeout: 45s
database:
  path: /var/lib/worktime/worktime.db
log:
  level: debug
reconcile:
  timezone_tolerance: 14h
  default_start: "2023-06-01"
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	// WHEN
	cfg, err := Load(path)
	require.NoError(t, err)

	// THEN: named values replaced, the rest kept
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, 45*time.Second, cfg.Server.WriteTimeout)
	assert.Equal(t, 15*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, "/var/lib/worktime/worktime.db", cfg.Database.Path)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, 14*time.Hour, cfg.Reconcile.TimezoneTolerance)
	assert.Equal(t, ledger.NewDate(2023, time.June, 1),
		cfg.Reconcile.DefaultStartDate(ledger.NewDate(2024, time.May, 20)))
}

func TestLoad_NoPathUsesDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestLoad_Errors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("log:\n  level: loud\n"), 0644))
	_, err = Load(path)
	assert.ErrorContains(t, err, "log.level")
}

func TestDefaultStartDate_FallsBackToMonthStart(t *testing.T) {
	var cfg ReconcileConfig
	assert.Equal(t, ledger.NewDate(2024, time.May, 1), cfg.DefaultStartDate(ledger.NewDate(2024, time.May, 20)))
}

func TestNewLogger_RespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := LogConfig{Level: "warn"}.NewLogger(&buf)

	logger.Info("hidden")
	logger.Warn("shown", "user", "user-1")

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown")
	assert.Contains(t, buf.String(), "user=user-1")
}
