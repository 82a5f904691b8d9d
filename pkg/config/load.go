package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// LoadConfig loads configuration from a YAML file at the specified path,
// applies defaults, and validates it. Environment variables are not
// consulted; use LoadConfigWithEnvOverrides for that.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read configuration file %q: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse configuration file %q: %w", path, err)
	}

	ApplyDefaults(&cfg)

	if err := Validate(&cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &cfg, nil
}

// LoadConfigWithEnvOverrides loads configuration from a YAML file and applies
// environment variable overrides in the form GANYMEDE_SECTION_FIELD
// (e.g. GANYMEDE_MANIFEST_BACKEND). Environment variables always take
// precedence over file-based configuration.
func LoadConfigWithEnvOverrides(path string) (*Config, error) {
	cfg, err := LoadConfig(path)
	if err != nil {
		return nil, err
	}

	applyEnvOverrides(cfg)

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed after environment overrides: %w", err)
	}

	return cfg, nil
}

// applyEnvOverrides applies GANYMEDE_SECTION_FIELD environment overrides.
func applyEnvOverrides(cfg *Config) {
	// Calibration overrides
	if val := os.Getenv("GANYMEDE_CALIBRATION_PATH"); val != "" {
		cfg.Calibration.Path = val
	}
	if val := os.Getenv("GANYMEDE_CALIBRATION_MONITOR"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Calibration.Monitor = b
		}
	}

	// Manifest overrides
	if val := os.Getenv("GANYMEDE_MANIFEST_BACKEND"); val != "" {
		cfg.Manifest.Backend = val
	}
	if val := os.Getenv("GANYMEDE_MANIFEST_SQLITE_PATH"); val != "" {
		cfg.Manifest.SQLite.Path = val
	}
	if val := os.Getenv("GANYMEDE_MANIFEST_SQLITE_BUSY_TIMEOUT"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			cfg.Manifest.SQLite.BusyTimeout = d
		}
	}
	if val := os.Getenv("GANYMEDE_MANIFEST_SIGNING_SCHEME"); val != "" {
		cfg.Manifest.Signing.Scheme = val
	}
	if val := os.Getenv("GANYMEDE_MANIFEST_SIGNING_KEY_PATH"); val != "" {
		cfg.Manifest.Signing.KeyPath = val
	}
	if val := os.Getenv("GANYMEDE_MANIFEST_VERIFY_SCHEDULE"); val != "" {
		cfg.Manifest.VerifySchedule = val
	}

	// Journal overrides
	if val := os.Getenv("GANYMEDE_JOURNAL_BACKEND"); val != "" {
		cfg.Journal.Backend = val
	}
	if val := os.Getenv("GANYMEDE_JOURNAL_SQLITE_PATH"); val != "" {
		cfg.Journal.SQLitePath = val
	}

	// Telemetry overrides
	if val := os.Getenv("GANYMEDE_TELEMETRY_LOGGING_LEVEL"); val != "" {
		cfg.Telemetry.Logging.Level = val
	}
	if val := os.Getenv("GANYMEDE_TELEMETRY_LOGGING_FORMAT"); val != "" {
		cfg.Telemetry.Logging.Format = val
	}
	if val := os.Getenv("GANYMEDE_TELEMETRY_METRICS_ENABLED"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Telemetry.Metrics.Enabled = b
		}
	}
	if val := os.Getenv("GANYMEDE_TELEMETRY_METRICS_LISTEN_ADDRESS"); val != "" {
		cfg.Telemetry.Metrics.ListenAddress = val
	}
	if val := os.Getenv("GANYMEDE_TELEMETRY_METRICS_PATH"); val != "" {
		cfg.Telemetry.Metrics.Path = val
	}
}
