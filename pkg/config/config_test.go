package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "meshport.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	return path
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Ledger.Filename != DefaultLedgerFilename {
		t.Errorf("ledger filename = %q", cfg.Ledger.Filename)
	}
	if cfg.Telemetry.Logging.Level != "info" || cfg.Telemetry.Logging.Format != "console" {
		t.Errorf("unexpected logging defaults: %+v", cfg.Telemetry.Logging)
	}
	if !cfg.History.Enabled || cfg.History.Path != DefaultHistoryPath {
		t.Errorf("unexpected history defaults: %+v", cfg.History)
	}
	if cfg.VCS.Commit || !cfg.VCS.WarnDirty {
		t.Errorf("unexpected vcs defaults: %+v", cfg.VCS)
	}
	if cfg.Watch.Debounce != DefaultWatchDebounce {
		t.Errorf("debounce = %v", cfg.Watch.Debounce)
	}
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
ledger:
  filename: versions.json
telemetry:
  logging:
    level: debug
history:
  enabled: false
watch:
  debounce: 2s
  schedule: "*/5 * * * *"
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Ledger.Filename != "versions.json" {
		t.Errorf("ledger filename = %q", cfg.Ledger.Filename)
	}
	if cfg.Telemetry.Logging.Level != "debug" {
		t.Errorf("level = %q", cfg.Telemetry.Logging.Level)
	}
	// Explicit false wins over the default true.
	if cfg.History.Enabled {
		t.Error("history should be disabled")
	}
	if cfg.Watch.Debounce != 2*time.Second {
		t.Errorf("debounce = %v", cfg.Watch.Debounce)
	}
	if cfg.Watch.Schedule != "*/5 * * * *" {
		t.Errorf("schedule = %q", cfg.Watch.Schedule)
	}
	// Untouched sections keep their defaults.
	if cfg.Telemetry.Logging.Format != "console" {
		t.Errorf("format = %q", cfg.Telemetry.Logging.Format)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	path := writeConfig(t, `
telemetry:
  logging:
    level: info
`)

	t.Setenv("MESHPORT_TELEMETRY_LOGGING_LEVEL", "error")
	t.Setenv("MESHPORT_VCS_COMMIT", "true")
	t.Setenv("MESHPORT_WATCH_DEBOUNCE", "250ms")
	t.Setenv("MESHPORT_HISTORY_PATH", "/tmp/h.db")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Telemetry.Logging.Level != "error" {
		t.Errorf("level = %q, env override should win", cfg.Telemetry.Logging.Level)
	}
	if !cfg.VCS.Commit {
		t.Error("vcs.commit should be overridden to true")
	}
	if cfg.Watch.Debounce != 250*time.Millisecond {
		t.Errorf("debounce = %v", cfg.Watch.Debounce)
	}
	if cfg.History.Path != "/tmp/h.db" {
		t.Errorf("history path = %q", cfg.History.Path)
	}
}

func TestLoad_MalformedYAML(t *testing.T) {
	path := writeConfig(t, "ledger: [not a mapping")
	if _, err := Load(path); err == nil {
		t.Error("expected parse error")
	}
}

func TestValidate_CollectsAllErrors(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Telemetry.Logging.Level = "loud"
	cfg.Telemetry.Logging.Format = "xml"
	cfg.Ledger.Filename = "sub/dir.json"
	cfg.Watch.Schedule = "not-cron"

	err := Validate(cfg)
	if err == nil {
		t.Fatal("expected validation error")
	}

	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected *ValidationError, got %T", err)
	}
	if len(verr.Errors) != 4 {
		t.Errorf("expected 4 field errors, got %d: %v", len(verr.Errors), verr)
	}

	msg := verr.Error()
	for _, field := range []string{"telemetry.logging.level", "telemetry.logging.format", "ledger.filename", "watch.schedule"} {
		if !strings.Contains(msg, field) {
			t.Errorf("error message missing field %q: %s", field, msg)
		}
	}
}

func TestValidate_MetricsAddress(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Telemetry.Metrics.Enabled = true
	cfg.Telemetry.Metrics.ListenAddress = "no-port"

	if err := Validate(cfg); err == nil {
		t.Error("expected error for invalid listen address")
	}

	// The address is only checked when metrics are enabled.
	cfg.Telemetry.Metrics.Enabled = false
	if err := Validate(cfg); err != nil {
		t.Errorf("disabled metrics should not validate the address: %v", err)
	}
}

func TestLoad_InvalidConfigFails(t *testing.T) {
	path := writeConfig(t, `
telemetry:
  logging:
    level: shouting
`)
	if _, err := Load(path); err == nil {
		t.Error("expected validation error")
	}
}
