package main

import (
	"context"
	"crypto/ed25519"
	"encoding/pem"
	"fmt"
	"log/slog"
	"os"

	"mercator-hq/ganymede/pkg/cli"
	"mercator-hq/ganymede/pkg/config"
	"mercator-hq/ganymede/pkg/governor/journal"
	"mercator-hq/ganymede/pkg/manifest"
	"mercator-hq/ganymede/pkg/manifest/storage"
	"mercator-hq/ganymede/pkg/telemetry/logging"
	"mercator-hq/ganymede/pkg/telemetry/metrics"
)

// loadEngineConfig loads the config file when it exists, or falls back to
// pure defaults so commands work out of the box.
func loadEngineConfig() (*config.Config, error) {
	if _, err := os.Stat(cfgFile); os.IsNotExist(err) {
		cfg := &config.Config{}
		config.ApplyDefaults(cfg)
		return cfg, nil
	}
	cfg, err := config.LoadConfigWithEnvOverrides(cfgFile)
	if err != nil {
		return nil, cli.NewConfigError(cfgFile, err.Error())
	}
	return cfg, nil
}

// setupLogging installs the configured logger, with --verbose forcing debug.
func setupLogging(cfg *config.Config) error {
	logCfg := cfg.Telemetry.Logging
	if verbose {
		logCfg.Level = "debug"
		logCfg.Format = "console"
	}
	_, err := logging.Setup(logCfg, os.Stderr)
	return err
}

// startMetricsServer exposes the Prometheus endpoint for long-running
// commands. It is a no-op when telemetry.metrics is disabled. The server
// shuts down when ctx is cancelled.
func startMetricsServer(ctx context.Context, cfg *config.Config) error {
	if !cfg.Telemetry.Metrics.Enabled {
		return nil
	}
	srv, err := metrics.NewServer(cfg.Telemetry.Metrics, nil)
	if err != nil {
		return err
	}
	go func() {
		if err := srv.Start(ctx); err != nil {
			slog.Error("metrics server failed", "error", err)
		}
	}()
	return nil
}

// openManifestStorage opens the configured manifest backend.
func openManifestStorage(cfg *config.Config) (storage.Storage, error) {
	switch cfg.Manifest.Backend {
	case "memory":
		return storage.NewMemoryStorage(), nil
	case "sqlite":
		return storage.NewSQLiteStorage(&storage.SQLiteConfig{
			Path:         cfg.Manifest.SQLite.Path,
			MaxOpenConns: cfg.Manifest.SQLite.MaxOpenConns,
			MaxIdleConns: cfg.Manifest.SQLite.MaxIdleConns,
			BusyTimeout:  cfg.Manifest.SQLite.BusyTimeout,
		})
	default:
		return nil, fmt.Errorf("unknown manifest backend %q", cfg.Manifest.Backend)
	}
}

// openJournal opens the configured clamp-event journal.
func openJournal(cfg *config.Config) (journal.Journal, error) {
	switch cfg.Journal.Backend {
	case "memory":
		return journal.NewMemoryJournal(), nil
	case "sqlite":
		return journal.NewSQLiteJournal(cfg.Journal.SQLitePath)
	default:
		return nil, fmt.Errorf("unknown journal backend %q", cfg.Journal.Backend)
	}
}

// buildSigner builds the configured manifest signer, or nil when signing is
// disabled.
func buildSigner(cfg *config.Config) (manifest.Signer, error) {
	switch cfg.Manifest.Signing.Scheme {
	case "":
		return nil, nil
	case manifest.SchemeHMAC:
		key, err := os.ReadFile(cfg.Manifest.Signing.KeyPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read signing key: %w", err)
		}
		return manifest.NewHMACSigner(key)
	case manifest.SchemeEd25519:
		priv, err := readEd25519PrivateKey(cfg.Manifest.Signing.KeyPath)
		if err != nil {
			return nil, err
		}
		return manifest.NewEd25519Signer(priv)
	default:
		return nil, fmt.Errorf("unknown signing scheme %q", cfg.Manifest.Signing.Scheme)
	}
}

// buildVerifier builds the matching signature verifier, or nil when signing
// is disabled.
func buildVerifier(cfg *config.Config) (manifest.Verifier, error) {
	switch cfg.Manifest.Signing.Scheme {
	case "":
		return nil, nil
	case manifest.SchemeHMAC:
		key, err := os.ReadFile(cfg.Manifest.Signing.KeyPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read signing key: %w", err)
		}
		return manifest.NewHMACSigner(key)
	case manifest.SchemeEd25519:
		priv, err := readEd25519PrivateKey(cfg.Manifest.Signing.KeyPath)
		if err != nil {
			return nil, err
		}
		pub, ok := priv.Public().(ed25519.PublicKey)
		if !ok {
			return nil, fmt.Errorf("unexpected public key type")
		}
		return manifest.NewEd25519Verifier(pub)
	default:
		return nil, fmt.Errorf("unknown signing scheme %q", cfg.Manifest.Signing.Scheme)
	}
}

// readEd25519PrivateKey loads a PEM private key as written by
// `ganymede keys generate`.
func readEd25519PrivateKey(path string) (ed25519.PrivateKey, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read signing key: %w", err)
	}
	block, _ := pem.Decode(data)
	if block == nil || block.Type != "PRIVATE KEY" {
		return nil, fmt.Errorf("%s: expected a PRIVATE KEY PEM block", path)
	}
	if len(block.Bytes) != ed25519.PrivateKeySize {
		return nil, fmt.Errorf("%s: invalid ed25519 private key size %d", path, len(block.Bytes))
	}
	return ed25519.PrivateKey(block.Bytes), nil
}
