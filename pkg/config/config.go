package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/cortexfs/ndfs/pkg/ndfs"
)

// Config represents the complete client configuration.
//
// This structure captures all configurable aspects of an NDFS session
// including:
//   - Logging configuration
//   - Client connection settings (name node address, umask, cache expiry)
//   - Transport tuning (dial and call timeouts)
//   - Metrics exposure
//   - Free-form filesystem properties passed through to the session
//
// Configuration sources (in order of precedence):
//  1. Environment variables (NDFS_*)
//  2. Configuration file (YAML or TOML)
//  3. Default values (lowest priority)
type Config struct {
	// Logging controls log output behavior
	Logging LoggingConfig `mapstructure:"logging"`

	// Client contains connection and session settings
	Client ClientConfig `mapstructure:"client"`

	// Transport contains transport-level tuning
	Transport TransportConfig `mapstructure:"transport"`

	// Metrics controls the instrumentation endpoint
	Metrics MetricsConfig `mapstructure:"metrics"`

	// Properties holds free-form filesystem properties in dotted key form
	// (e.g. "fs.permissions.umask-mode"). They are consulted after the
	// typed sections and let deployments set keys this package does not
	// model explicitly.
	Properties map[string]string `mapstructure:"properties"`
}

// LoggingConfig controls logging behavior.
type LoggingConfig struct {
	// Level is the minimum log level to output
	// Valid values: DEBUG, INFO, WARN, ERROR (case-insensitive, normalized to uppercase)
	Level string `mapstructure:"level" validate:"required,oneof=DEBUG INFO WARN ERROR debug info warn error"`
}

// ClientConfig contains connection and session settings.
type ClientConfig struct {
	// NameNodeAddress is an explicit "host[:port]" address for the name
	// node. When set it overrides the authority of the connection URI.
	NameNodeAddress string `mapstructure:"namenode_address"`

	// NameserviceID selects a logical name service instead of a single
	// name node. Sessions reject this setting; it is surfaced so the
	// rejection happens with a clear message rather than a DNS failure.
	NameserviceID string `mapstructure:"nameservice_id"`

	// Umask is the octal creation mask applied to new directories
	// (e.g. "022").
	Umask string `mapstructure:"umask" validate:"required"`

	// ExcludeNodesCacheExpiry is how long a misbehaving data node stays
	// excluded from placement.
	ExcludeNodesCacheExpiry time.Duration `mapstructure:"exclude_nodes_cache_expiry" validate:"required,gt=0"`
}

// TransportConfig contains transport-level tuning.
type TransportConfig struct {
	// DialTimeout bounds connection establishment
	DialTimeout time.Duration `mapstructure:"dial_timeout" validate:"required,gt=0"`

	// CallTimeout bounds a single round trip when the caller's context
	// carries no deadline of its own
	CallTimeout time.Duration `mapstructure:"call_timeout" validate:"required,gt=0"`
}

// MetricsConfig controls the instrumentation endpoint.
type MetricsConfig struct {
	// Enabled turns call counters and latency histograms on
	Enabled bool `mapstructure:"enabled"`
}

// Load loads configuration from file, environment, and defaults.
//
// Configuration precedence (highest to lowest):
//  1. Environment variables (NDFS_*)
//  2. Configuration file
//  3. Default values
//
// Parameters:
//   - configPath: Path to config file (empty string uses default location)
//
// Returns:
//   - *Config: Loaded and validated configuration
//   - error: Configuration loading or validation error
func Load(configPath string) (*Config, error) {
	v := viper.New()

	setupViper(v, configPath)

	if err := readConfigFile(v); err != nil {
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	ApplyDefaults(&cfg)

	if err := Validate(&cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &cfg, nil
}

// setupViper configures viper with environment variables and config file settings.
func setupViper(v *viper.Viper, configPath string) {
	// Environment variables use the NDFS_ prefix and underscores.
	// Example: NDFS_LOGGING_LEVEL=DEBUG
	v.SetEnvPrefix("NDFS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		// Default location: $XDG_CONFIG_HOME/ndfs/config.{yaml,toml}
		v.AddConfigPath(getConfigDir())
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}
}

// readConfigFile reads the configuration file if it exists.
func readConfigFile(v *viper.Viper) error {
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			// Config file not found is acceptable - use defaults
			return nil
		}
		return fmt.Errorf("failed to read config file: %w", err)
	}
	return nil
}

// getConfigDir returns the configuration directory path.
//
// Uses XDG_CONFIG_HOME if set, otherwise ~/.config, or falls back to current
// directory (.) if home directory cannot be determined.
func getConfigDir() string {
	if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
		return filepath.Join(xdgConfig, "ndfs")
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(home, ".config", "ndfs")
}

// GetDefaultConfigPath returns the default configuration file path.
func GetDefaultConfigPath() string {
	return filepath.Join(getConfigDir(), "config.yaml")
}

// ============================================================================
// Session property lookup
// ============================================================================

// GetString returns the property value for key and whether it was set.
//
// The typed sections answer the well-known keys; anything else falls
// through to the free-form Properties map. Empty typed values count as
// unset so their defaults apply.
func (c *Config) GetString(key string) (string, bool) {
	switch key {
	case ndfs.KeyNameNodeRPCAddress:
		if c.Client.NameNodeAddress != "" {
			return c.Client.NameNodeAddress, true
		}
	case ndfs.KeyNameserviceID:
		if c.Client.NameserviceID != "" {
			return c.Client.NameserviceID, true
		}
	case ndfs.KeyPermissionsUmask:
		if c.Client.Umask != "" {
			return c.Client.Umask, true
		}
	}

	value, ok := c.Properties[key]
	return value, ok
}

// GetInt64 returns the property value for key, or def when unset.
func (c *Config) GetInt64(key string, def int64) int64 {
	if key == ndfs.KeyExcludeNodesCacheExpiry && c.Client.ExcludeNodesCacheExpiry > 0 {
		return c.Client.ExcludeNodesCacheExpiry.Milliseconds()
	}

	if raw, ok := c.Properties[key]; ok {
		if value, err := strconv.ParseInt(raw, 10, 64); err == nil {
			return value
		}
	}
	return def
}
