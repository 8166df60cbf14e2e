package config

import "time"

// Config is the root tool configuration.
type Config struct {
	// Ledger configures the version ledger sidecar.
	Ledger LedgerConfig `yaml:"ledger"`

	// Export configures run behavior.
	Export ExportConfig `yaml:"export"`

	// Telemetry configures logging and metrics.
	Telemetry TelemetryConfig `yaml:"telemetry"`

	// History configures the run history database.
	History HistoryConfig `yaml:"history"`

	// VCS configures git integration.
	VCS VCSConfig `yaml:"vcs"`

	// Watch configures watch mode.
	Watch WatchConfig `yaml:"watch"`
}

// LedgerConfig configures the version ledger sidecar file.
type LedgerConfig struct {
	// Filename is the sidecar file name inside the export folder.
	Filename string `yaml:"filename"`
}

// ExportConfig configures export runs.
type ExportConfig struct {
	// OutputDir is the export folder; relative paths in the manifest
	// resolve under it.
	OutputDir string `yaml:"output_dir"`

	// IncrementalSave persists the ledger after every committed file
	// instead of once at the end of the run.
	IncrementalSave bool `yaml:"incremental_save"`
}

// TelemetryConfig configures logging and metrics.
type TelemetryConfig struct {
	Logging LoggingConfig `yaml:"logging"`
	Metrics MetricsConfig `yaml:"metrics"`
}

// LoggingConfig configures structured logging.
type LoggingConfig struct {
	// Level is the minimum log level: debug, info, warn, or error.
	Level string `yaml:"level"`

	// Format is the log output format: json, text, or console.
	Format string `yaml:"format"`
}

// MetricsConfig configures the Prometheus endpoint served in watch mode.
type MetricsConfig struct {
	// Enabled turns the metrics endpoint on.
	Enabled bool `yaml:"enabled"`

	// ListenAddress is the address the endpoint binds to.
	ListenAddress string `yaml:"listen_address"`
}

// HistoryConfig configures the run history database.
type HistoryConfig struct {
	// Enabled turns run history recording on.
	Enabled bool `yaml:"enabled"`

	// Path is the SQLite database path.
	Path string `yaml:"path"`
}

// VCSConfig configures git integration.
type VCSConfig struct {
	// Commit commits exported meshes and the ledger after each run.
	Commit bool `yaml:"commit"`

	// WarnDirty warns before a run when the ledger sidecar has
	// uncommitted changes.
	WarnDirty bool `yaml:"warn_dirty"`

	// CommitMessagePrefix is prepended to generated commit messages.
	CommitMessagePrefix string `yaml:"commit_message_prefix"`
}

// WatchConfig configures watch mode.
type WatchConfig struct {
	// Debounce is the quiet period required after an input change before
	// a run triggers.
	Debounce time.Duration `yaml:"debounce"`

	// Schedule is an optional cron expression for scheduled runs.
	Schedule string `yaml:"schedule"`
}
