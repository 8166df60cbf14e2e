package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Load loads configuration from the YAML file at path, applies defaults and
// MESHPORT_* environment variable overrides, and validates the result.
//
// A missing file is not an error: the tool is useful with zero
// configuration, so Load falls back to defaults (still honoring environment
// overrides). Any other read or parse failure is fatal.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
		// Defaults only.
	case err != nil:
		return nil, fmt.Errorf("failed to read configuration file %q: %w", path, err)
	default:
		// Unmarshal over the defaults so absent keys keep their default
		// values while explicit false/zero values still take effect.
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse configuration file %q: %w", path, err)
		}
		ApplyDefaults(cfg)
	}

	applyEnvOverrides(cfg)

	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyEnvOverrides applies MESHPORT_SECTION_FIELD environment variable
// overrides. Environment variables always take precedence over the file.
func applyEnvOverrides(cfg *Config) {
	if val := os.Getenv("MESHPORT_LEDGER_FILENAME"); val != "" {
		cfg.Ledger.Filename = val
	}
	if val := os.Getenv("MESHPORT_EXPORT_OUTPUT_DIR"); val != "" {
		cfg.Export.OutputDir = val
	}
	if val := os.Getenv("MESHPORT_EXPORT_INCREMENTAL_SAVE"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Export.IncrementalSave = b
		}
	}

	if val := os.Getenv("MESHPORT_TELEMETRY_LOGGING_LEVEL"); val != "" {
		cfg.Telemetry.Logging.Level = val
	}
	if val := os.Getenv("MESHPORT_TELEMETRY_LOGGING_FORMAT"); val != "" {
		cfg.Telemetry.Logging.Format = val
	}
	if val := os.Getenv("MESHPORT_TELEMETRY_METRICS_ENABLED"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Telemetry.Metrics.Enabled = b
		}
	}
	if val := os.Getenv("MESHPORT_TELEMETRY_METRICS_LISTEN_ADDRESS"); val != "" {
		cfg.Telemetry.Metrics.ListenAddress = val
	}

	if val := os.Getenv("MESHPORT_HISTORY_ENABLED"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.History.Enabled = b
		}
	}
	if val := os.Getenv("MESHPORT_HISTORY_PATH"); val != "" {
		cfg.History.Path = val
	}

	if val := os.Getenv("MESHPORT_VCS_COMMIT"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.VCS.Commit = b
		}
	}
	if val := os.Getenv("MESHPORT_VCS_WARN_DIRTY"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.VCS.WarnDirty = b
		}
	}
	if val := os.Getenv("MESHPORT_VCS_COMMIT_MESSAGE_PREFIX"); val != "" {
		cfg.VCS.CommitMessagePrefix = val
	}

	if val := os.Getenv("MESHPORT_WATCH_DEBOUNCE"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			cfg.Watch.Debounce = d
		}
	}
	if val := os.Getenv("MESHPORT_WATCH_SCHEDULE"); val != "" {
		cfg.Watch.Schedule = val
	}
}
