package config

import (
	"strings"
	"time"

	"github.com/cortexfs/ndfs/pkg/ndfs"
)

// ApplyDefaults sets default values for any unspecified configuration fields.
//
// This function is called after loading configuration from file and environment
// variables to fill in any missing values with sensible defaults.
//
// Default Strategy:
//   - Zero values (0, "", false, nil) are replaced with defaults
//   - Explicit values are preserved
func ApplyDefaults(cfg *Config) {
	applyLoggingDefaults(&cfg.Logging)
	applyClientDefaults(&cfg.Client)
	applyTransportDefaults(&cfg.Transport)

	if cfg.Properties == nil {
		cfg.Properties = make(map[string]string)
	}
}

// applyLoggingDefaults sets logging defaults and normalizes values.
func applyLoggingDefaults(cfg *LoggingConfig) {
	if cfg.Level == "" {
		cfg.Level = "INFO"
	}
	// Normalize log level to uppercase for consistent internal representation
	cfg.Level = strings.ToUpper(cfg.Level)
}

// applyClientDefaults sets session defaults.
func applyClientDefaults(cfg *ClientConfig) {
	if cfg.Umask == "" {
		cfg.Umask = ndfs.DefaultUmask
	}
	if cfg.ExcludeNodesCacheExpiry == 0 {
		cfg.ExcludeNodesCacheExpiry =
			time.Duration(ndfs.DefaultExcludeNodesCacheExpiryMillis) * time.Millisecond
	}
}

// applyTransportDefaults sets transport defaults.
func applyTransportDefaults(cfg *TransportConfig) {
	if cfg.DialTimeout == 0 {
		cfg.DialTimeout = 30 * time.Second
	}
	if cfg.CallTimeout == 0 {
		cfg.CallTimeout = 60 * time.Second
	}
}
