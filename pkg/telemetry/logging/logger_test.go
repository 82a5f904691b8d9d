package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"

	"mercator-hq/ganymede/pkg/config"
)

func TestSetup_JSONFormat(t *testing.T) {
	var buf bytes.Buffer
	logger, err := Setup(config.LoggingConfig{Level: "info", Format: "json"}, &buf)
	if err != nil {
		t.Fatalf("Setup() failed: %v", err)
	}

	logger.Info("engine ready", "cohort_version", "2026.08")

	var record map[string]any
	if err := json.Unmarshal(buf.Bytes(), &record); err != nil {
		t.Fatalf("Output is not JSON: %v\n%s", err, buf.String())
	}
	if record["msg"] != "engine ready" {
		t.Errorf("msg = %v", record["msg"])
	}
	if record["cohort_version"] != "2026.08" {
		t.Errorf("cohort_version = %v", record["cohort_version"])
	}
}

func TestSetup_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger, err := Setup(config.LoggingConfig{Level: "warn", Format: "text"}, &buf)
	if err != nil {
		t.Fatalf("Setup() failed: %v", err)
	}

	logger.Info("suppressed")
	logger.Warn("emitted")

	out := buf.String()
	if strings.Contains(out, "suppressed") {
		t.Error("Info should be filtered at warn level")
	}
	if !strings.Contains(out, "emitted") {
		t.Error("Warn should pass at warn level")
	}
}

func TestSetup_ConsoleDropsTimestamps(t *testing.T) {
	var buf bytes.Buffer
	logger, err := Setup(config.LoggingConfig{Level: "info", Format: "console"}, &buf)
	if err != nil {
		t.Fatalf("Setup() failed: %v", err)
	}

	logger.Info("hello")
	if strings.Contains(buf.String(), "time=") {
		t.Errorf("Console format should drop timestamps: %s", buf.String())
	}
}

func TestSetup_InstallsDefault(t *testing.T) {
	prev := slog.Default()
	defer slog.SetDefault(prev)

	var buf bytes.Buffer
	if _, err := Setup(config.LoggingConfig{Level: "info", Format: "json"}, &buf); err != nil {
		t.Fatalf("Setup() failed: %v", err)
	}

	slog.Info("via default")
	if !strings.Contains(buf.String(), "via default") {
		t.Error("Setup should install the logger as slog default")
	}
}

func TestSetup_RejectsUnknownSettings(t *testing.T) {
	if _, err := Setup(config.LoggingConfig{Level: "whisper", Format: "json"}, nil); err == nil {
		t.Error("Setup() should reject an unknown level")
	}
	if _, err := Setup(config.LoggingConfig{Level: "info", Format: "morse"}, nil); err == nil {
		t.Error("Setup() should reject an unknown format")
	}
}
