// Package config loads server settings from defaults, an optional catalog.yaml
// and CATALOG_* environment variables.
package config

import (
	"encoding/hex"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Environments
const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

// Data port backends
const (
	DataPortSQLite = "sqlite"
	DataPortMemory = "memory"
)

// Config holds all configuration for the catalog server.
type Config struct {
	Env           string          `mapstructure:"env"`
	Addr          string          `mapstructure:"addr"`
	DBPath        string          `mapstructure:"db_path"`
	DataPort      string          `mapstructure:"data_port"`
	StaticDir     string          `mapstructure:"static_dir"`
	CSRFKey       string          `mapstructure:"csrf_key"` // 64 hex characters
	AdminEmail    string          `mapstructure:"admin_email"`
	AdminPassword string          `mapstructure:"admin_password"`
	RateLimit     int             `mapstructure:"rate_limit"`
	TrustedOrigin []string        `mapstructure:"trusted_origins"`
	Log           LogConfig       `mapstructure:"log"`
	Perf          PerfConfig      `mapstructure:"perf"`
	Workspace     WorkspaceConfig `mapstructure:"workspace"`
}

// LogConfig holds structured logging settings.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// PerfConfig holds timing thresholds and the collector size.
type PerfConfig struct {
	SlowQueryMs   int `mapstructure:"slow_query_ms"`
	SlowRequestMs int `mapstructure:"slow_request_ms"`
	RingSize      int `mapstructure:"ring_size"`
}

// WorkspaceConfig tunes per-session workspaces.
type WorkspaceConfig struct {
	IdleMinutes         int  `mapstructure:"idle_minutes"`
	SweepMinutes        int  `mapstructure:"sweep_minutes"`
	RollbackAddFailures bool `mapstructure:"rollback_add_failures"`
}

// String masks secrets so a Config can be logged.
func (c Config) String() string {
	return fmt.Sprintf("Config{Env:%s Addr:%s DataPort:%s DBPath:%s AdminEmail:%s CSRFKey:%s}",
		c.Env, c.Addr, c.DataPort, c.DBPath, c.AdminEmail, mask(c.CSRFKey))
}

func mask(secret string) string {
	if secret == "" {
		return ""
	}
	return "***"
}

// Load reads configuration. configFile may be empty to search the working directory.
func Load(configFile string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("catalog")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix("CATALOG")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
		// no file: defaults and environment only
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("env", EnvDevelopment)
	v.SetDefault("addr", ":8080")
	v.SetDefault("db_path", "catalog.db")
	v.SetDefault("data_port", DataPortSQLite)
	v.SetDefault("static_dir", "static")
	v.SetDefault("csrf_key", "")
	v.SetDefault("admin_email", "admin@studio.local")
	v.SetDefault("admin_password", "")
	v.SetDefault("rate_limit", 20)
	v.SetDefault("trusted_origins", []string{"localhost:8080", "127.0.0.1:8080"})

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")

	v.SetDefault("perf.slow_query_ms", 50)
	v.SetDefault("perf.slow_request_ms", 200)
	v.SetDefault("perf.ring_size", 10000)

	v.SetDefault("workspace.idle_minutes", 30)
	v.SetDefault("workspace.sweep_minutes", 5)
	v.SetDefault("workspace.rollback_add_failures", true)
}

// Validate checks that required fields are set and consistent.
func (c *Config) Validate() error {
	if c.Env != EnvDevelopment && c.Env != EnvProduction {
		return fmt.Errorf("env must be %q or %q, got %q", EnvDevelopment, EnvProduction, c.Env)
	}
	if c.Addr == "" {
		return errors.New("addr must not be empty")
	}
	if c.DataPort != DataPortSQLite && c.DataPort != DataPortMemory {
		return fmt.Errorf("data_port must be %q or %q, got %q", DataPortSQLite, DataPortMemory, c.DataPort)
	}
	if c.DataPort == DataPortSQLite && c.DBPath == "" {
		return errors.New("db_path must not be empty for the sqlite data port")
	}
	if c.CSRFKey != "" {
		if key, err := hex.DecodeString(c.CSRFKey); err != nil || len(key) != 32 {
			return errors.New("csrf_key must be 64 hex characters (32 bytes)")
		}
	}
	if c.IsProduction() {
		if c.CSRFKey == "" {
			return errors.New("csrf_key is required in production")
		}
		if c.DataPort == DataPortMemory {
			return errors.New("the memory data port is for development only")
		}
	}
	if !slices.Contains([]string{"debug", "info", "warn", "error"}, strings.ToLower(c.Log.Level)) {
		return fmt.Errorf("log.level must be debug, info, warn or error, got %q", c.Log.Level)
	}
	if c.Log.Format != "text" && c.Log.Format != "json" {
		return fmt.Errorf("log.format must be text or json, got %q", c.Log.Format)
	}
	if c.RateLimit < 0 {
		return errors.New("rate_limit must be >= 0")
	}
	if c.Perf.SlowQueryMs <= 0 || c.Perf.SlowRequestMs <= 0 {
		return errors.New("perf thresholds must be greater than 0")
	}
	if c.Perf.RingSize <= 0 {
		return errors.New("perf.ring_size must be greater than 0")
	}
	if c.Workspace.IdleMinutes <= 0 || c.Workspace.SweepMinutes <= 0 {
		return errors.New("workspace.idle_minutes and workspace.sweep_minutes must be greater than 0")
	}
	return nil
}

// IsProduction reports whether the server runs in production.
func (c *Config) IsProduction() bool {
	return c.Env == EnvProduction
}

// CSRFKeyBytes decodes the CSRF key. An empty key returns nil.
// PRE: Validate passed
func (c *Config) CSRFKeyBytes() []byte {
	if c.CSRFKey == "" {
		return nil
	}
	key, _ := hex.DecodeString(c.CSRFKey)
	return key
}

// SlowQuery returns the slow-query threshold.
func (c *Config) SlowQuery() time.Duration {
	return time.Duration(c.Perf.SlowQueryMs) * time.Millisecond
}

// SlowRequest returns the slow-request threshold.
func (c *Config) SlowRequest() time.Duration {
	return time.Duration(c.Perf.SlowRequestMs) * time.Millisecond
}

// IdleTTL returns how long an unused workspace lives.
func (c *Config) IdleTTL() time.Duration {
	return time.Duration(c.Workspace.IdleMinutes) * time.Minute
}

// SweepInterval returns how often idle workspaces are swept.
func (c *Config) SweepInterval() time.Duration {
	return time.Duration(c.Workspace.SweepMinutes) * time.Minute
}
