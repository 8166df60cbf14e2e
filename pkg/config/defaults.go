package config

import "time"

// Default values applied to unset fields.
const (
	DefaultLedgerFilename = "meshport.version.json"
	DefaultOutputDir      = "."
	DefaultLogLevel       = "info"
	DefaultLogFormat      = "console"
	DefaultMetricsAddress = "127.0.0.1:9810"
	DefaultHistoryPath    = ".meshport/history.db"
	DefaultWatchDebounce  = 500 * time.Millisecond
)

// ApplyDefaults fills in default values for unset fields.
func ApplyDefaults(cfg *Config) {
	if cfg.Ledger.Filename == "" {
		cfg.Ledger.Filename = DefaultLedgerFilename
	}
	if cfg.Export.OutputDir == "" {
		cfg.Export.OutputDir = DefaultOutputDir
	}
	if cfg.Telemetry.Logging.Level == "" {
		cfg.Telemetry.Logging.Level = DefaultLogLevel
	}
	if cfg.Telemetry.Logging.Format == "" {
		cfg.Telemetry.Logging.Format = DefaultLogFormat
	}
	if cfg.Telemetry.Metrics.ListenAddress == "" {
		cfg.Telemetry.Metrics.ListenAddress = DefaultMetricsAddress
	}
	if cfg.History.Path == "" {
		cfg.History.Path = DefaultHistoryPath
	}
	if cfg.Watch.Debounce <= 0 {
		cfg.Watch.Debounce = DefaultWatchDebounce
	}
	if cfg.VCS.CommitMessagePrefix == "" {
		cfg.VCS.CommitMessagePrefix = "meshport:"
	}
}

// DefaultConfig returns a configuration with all defaults applied. WarnDirty
// defaults on: a sidecar nobody committed is the most common way two
// machines drift apart.
func DefaultConfig() *Config {
	cfg := &Config{
		History: HistoryConfig{Enabled: true},
		VCS:     VCSConfig{WarnDirty: true},
	}
	ApplyDefaults(cfg)
	return cfg
}
