package config

import "time"

// Default values for configuration fields.
const (
	// Calibration defaults
	DefaultCalibrationPath    = "./calibration.yaml"
	DefaultCalibrationMonitor = false

	// Manifest defaults
	DefaultManifestBackend            = "sqlite"
	DefaultManifestSQLitePath         = "data/manifest.db"
	DefaultManifestSQLiteMaxOpenConns = 10
	DefaultManifestSQLiteMaxIdleConns = 5
	DefaultManifestSQLiteBusyTimeout  = 5 * time.Second

	// Journal defaults
	DefaultJournalBackend    = "sqlite"
	DefaultJournalSQLitePath = "data/journal.db"

	// Telemetry defaults
	DefaultLoggingLevel         = "info"
	DefaultLoggingFormat        = "json"
	DefaultMetricsEnabled       = false
	DefaultMetricsListenAddress = "127.0.0.1:9090"
	DefaultMetricsPath          = "/metrics"
)

// ApplyDefaults fills zero-valued configuration fields with defaults.
// Explicit values are never overridden.
func ApplyDefaults(cfg *Config) {
	if cfg.Calibration.Path == "" {
		cfg.Calibration.Path = DefaultCalibrationPath
	}

	if cfg.Manifest.Backend == "" {
		cfg.Manifest.Backend = DefaultManifestBackend
	}
	if cfg.Manifest.SQLite.Path == "" {
		cfg.Manifest.SQLite.Path = DefaultManifestSQLitePath
	}
	if cfg.Manifest.SQLite.MaxOpenConns == 0 {
		cfg.Manifest.SQLite.MaxOpenConns = DefaultManifestSQLiteMaxOpenConns
	}
	if cfg.Manifest.SQLite.MaxIdleConns == 0 {
		cfg.Manifest.SQLite.MaxIdleConns = DefaultManifestSQLiteMaxIdleConns
	}
	if cfg.Manifest.SQLite.BusyTimeout == 0 {
		cfg.Manifest.SQLite.BusyTimeout = DefaultManifestSQLiteBusyTimeout
	}

	if cfg.Journal.Backend == "" {
		cfg.Journal.Backend = DefaultJournalBackend
	}
	if cfg.Journal.SQLitePath == "" {
		cfg.Journal.SQLitePath = DefaultJournalSQLitePath
	}

	if cfg.Telemetry.Logging.Level == "" {
		cfg.Telemetry.Logging.Level = DefaultLoggingLevel
	}
	if cfg.Telemetry.Logging.Format == "" {
		cfg.Telemetry.Logging.Format = DefaultLoggingFormat
	}
	if cfg.Telemetry.Metrics.ListenAddress == "" {
		cfg.Telemetry.Metrics.ListenAddress = DefaultMetricsListenAddress
	}
	if cfg.Telemetry.Metrics.Path == "" {
		cfg.Telemetry.Metrics.Path = DefaultMetricsPath
	}
}
