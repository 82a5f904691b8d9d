// Package config defines the engine's YAML configuration: where the
// calibration document lives, how the manifest and clamp journal are stored
// and signed, and the telemetry settings. Loading applies defaults,
// validates, and honors GANYMEDE_SECTION_FIELD environment overrides.
package config

import "time"

// Config is the root configuration for the ganymede engine.
type Config struct {
	// Calibration configures the calibration document.
	Calibration CalibrationConfig `yaml:"calibration"`

	// Manifest configures the append-only decision manifest.
	Manifest ManifestConfig `yaml:"manifest"`

	// Journal configures the governor's clamp-event journal.
	Journal JournalConfig `yaml:"journal"`

	// Telemetry configures logging and metrics.
	Telemetry TelemetryConfig `yaml:"telemetry"`
}

// CalibrationConfig locates the calibration document.
type CalibrationConfig struct {
	// Path is the calibration YAML document to load at startup.
	Path string `yaml:"path"`

	// Monitor enables the on-disk drift monitor. Drift never reloads a
	// running engine; it only flags staleness.
	Monitor bool `yaml:"monitor"`
}

// ManifestConfig configures manifest storage, signing, and periodic
// re-verification.
type ManifestConfig struct {
	// Backend selects the storage backend: "memory" or "sqlite".
	Backend string `yaml:"backend"`

	// SQLite configures the sqlite backend.
	SQLite SQLiteConfig `yaml:"sqlite"`

	// Signing configures entry signing.
	Signing SigningConfig `yaml:"signing"`

	// VerifySchedule is a cron expression for periodic chain
	// re-verification. Empty disables the scheduler.
	VerifySchedule string `yaml:"verify_schedule"`
}

// SQLiteConfig configures a SQLite database file.
type SQLiteConfig struct {
	Path         string        `yaml:"path"`
	MaxOpenConns int           `yaml:"max_open_conns"`
	MaxIdleConns int           `yaml:"max_idle_conns"`
	BusyTimeout  time.Duration `yaml:"busy_timeout"`
}

// SigningConfig configures manifest entry signing.
type SigningConfig struct {
	// Scheme selects the signature scheme: "" (unsigned), "hmac-sha256",
	// or "ed25519".
	Scheme string `yaml:"scheme"`

	// KeyPath is the key file: the raw HMAC key, or a PEM-encoded Ed25519
	// private key as written by `ganymede keys generate`.
	KeyPath string `yaml:"key_path"`
}

// JournalConfig configures clamp-event persistence.
type JournalConfig struct {
	// Backend selects the journal backend: "memory" or "sqlite".
	Backend string `yaml:"backend"`

	// SQLitePath is the journal database file for the sqlite backend.
	SQLitePath string `yaml:"sqlite_path"`
}

// TelemetryConfig configures observability.
type TelemetryConfig struct {
	Logging LoggingConfig `yaml:"logging"`
	Metrics MetricsConfig `yaml:"metrics"`
}

// LoggingConfig configures structured logging.
type LoggingConfig struct {
	// Level is the minimum level: debug, info, warn, error.
	Level string `yaml:"level"`

	// Format is the output format: json, text, console.
	Format string `yaml:"format"`
}

// MetricsConfig configures the Prometheus endpoint.
type MetricsConfig struct {
	Enabled       bool   `yaml:"enabled"`
	ListenAddress string `yaml:"listen_address"`
	Path          string `yaml:"path"`
}
