// Package config provides configuration loading for the worktime server and CLI.
package config

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/warp/worktime/ledger"
	"gopkg.in/yaml.v3"
)

// Config represents the complete worktime configuration
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Database  DatabaseConfig  `yaml:"database"`
	Log       LogConfig       `yaml:"log"`
	Reconcile ReconcileConfig `yaml:"reconcile"`
}

// ServerConfig configures the HTTP server
type ServerConfig struct {
	// Port is the HTTP listen port (default: 8080)
	Port int `yaml:"port"`
	// CORSOrigins are the origins allowed to call the API from a browser
	CORSOrigins []string `yaml:"cors_origins"`
	// Connection timeouts of the http.Server
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
	IdleTimeout  time.Duration `yaml:"idle_timeout"`
	// ShutdownTimeout bounds graceful shutdown after SIGINT/SIGTERM
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// DatabaseConfig configures the SQLite store
type DatabaseConfig struct {
	// Path is the database file (":memory:" for a throwaway database)
	Path string `yaml:"path"`
}

// LogConfig configures structured logging
type LogConfig struct {
	// Level is one of debug, info, warn, error (default: info)
	Level string `yaml:"level"`
}

// ReconcileConfig configures report creation
type ReconcileConfig struct {
	// TimezoneTolerance widens the time entry fetch window on both sides
	TimezoneTolerance time.Duration `yaml:"timezone_tolerance"`
	// DefaultStart is the YYYY-MM-DD date reports start from when a request
	// does not name one. Empty means the first day of the current month.
	DefaultStart string `yaml:"default_start"`
}

// DefaultConfig returns a Config with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            8080,
			CORSOrigins:     []string{"http://localhost:5173", "http://localhost:8080"},
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    15 * time.Second,
			IdleTimeout:     60 * time.Second,
			ShutdownTimeout: 30 * time.Second,
		},
		Database: DatabaseConfig{
			Path: "worktime.db",
		},
		Log: LogConfig{
			Level: "info",
		},
		Reconcile: ReconcileConfig{
			TimezoneTolerance: ledger.DefaultTimezoneTolerance,
		},
	}
}

// Validate checks that the configuration is valid
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be between 1 and 65535")
	}
	if c.Database.Path == "" {
		return fmt.Errorf("database.path is required")
	}
	if _, err := parseLevel(c.Log.Level); err != nil {
		return err
	}
	if c.Reconcile.TimezoneTolerance < 0 {
		return fmt.Errorf("reconcile.timezone_tolerance must not be negative")
	}
	if c.Reconcile.DefaultStart != "" {
		if _, err := ledger.ParseDate(c.Reconcile.DefaultStart); err != nil {
			return fmt.Errorf("reconcile.default_start must be YYYY-MM-DD: %w", err)
		}
	}
	return nil
}

// LoadFromFile loads configuration from a YAML file on top of the defaults
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return config, nil
}

// Load returns the defaults merged with the file at path, if any, and
// validates the result.
func Load(path string) (*Config, error) {
	config := DefaultConfig()
	if path != "" {
		fileConfig, err := LoadFromFile(path)
		if err != nil {
			return nil, err
		}
		config.Merge(fileConfig)
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// Merge merges another config into this one (other takes precedence for non-zero values)
func (c *Config) Merge(other *Config) {
	if other == nil {
		return
	}

	// Server
	if other.Server.Port != 0 {
		c.Server.Port = other.Server.Port
	}
	if len(other.Server.CORSOrigins) > 0 {
		c.Server.CORSOrigins = other.Server.CORSOrigins
	}
	if other.Server.ReadTimeout != 0 {
		c.Server.ReadTimeout = other.Server.ReadTimeout
	}
	if other.Server.WriteTimeout != 0 {
		c.Server.WriteTimeout = other.Server.WriteTimeout
	}
	if other.Server.IdleTimeout != 0 {
		c.Server.IdleTimeout = other.Server.IdleTimeout
	}
	if other.Server.ShutdownTimeout != 0 {
		c.Server.ShutdownTimeout = other.Server.ShutdownTimeout
	}

	// Database
	if other.Database.Path != "" {
		c.Database.Path = other.Database.Path
	}

	// Log
	if other.Log.Level != "" {
		c.Log.Level = other.Log.Level
	}

	// Reconcile
	if other.Reconcile.TimezoneTolerance != 0 {
		c.Reconcile.TimezoneTolerance = other.Reconcile.TimezoneTolerance
	}
	if other.Reconcile.DefaultStart != "" {
		c.Reconcile.DefaultStart = other.Reconcile.DefaultStart
	}
}

// DefaultStartDate returns the configured default report start, or the first
// day of the month of today.
func (c ReconcileConfig) DefaultStartDate(today ledger.Date) ledger.Date {
	if c.DefaultStart != "" {
		if d, err := ledger.ParseDate(c.DefaultStart); err == nil {
			return d
		}
	}
	return ledger.NewDate(today.Year(), today.Month(), 1)
}

// NewLogger builds a text slog.Logger writing to w at the configured level.
func (c LogConfig) NewLogger(w io.Writer) *slog.Logger {
	level, err := parseLevel(c.Level)
	if err != nil {
		level = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

func parseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(s) {
	case "", "info":
		return slog.LevelInfo, nil
	case "debug":
		return slog.LevelDebug, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("log.level %q is not one of debug, info, warn, error", s)
	}
}
