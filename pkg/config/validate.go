package config

import (
	"fmt"
	"net"
	"strings"

	"github.com/robfig/cron/v3"
)

// FieldError describes a validation error for a specific configuration field.
type FieldError struct {
	// Field is the dotted path of the invalid field.
	Field string

	// Message describes what is wrong.
	Message string
}

// Error implements the error interface.
func (e *FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationError aggregates all field errors found during validation.
type ValidationError struct {
	Errors []*FieldError
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	if len(e.Errors) == 1 {
		return fmt.Sprintf("configuration validation failed: %s", e.Errors[0])
	}

	var b strings.Builder
	fmt.Fprintf(&b, "configuration validation failed with %d errors:", len(e.Errors))
	for _, fe := range e.Errors {
		fmt.Fprintf(&b, "\n  - %s", fe)
	}
	return b.String()
}

// validLogLevels and validLogFormats match what the telemetry logger accepts.
var (
	validLogLevels  = map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	validLogFormats = map[string]bool{"json": true, "text": true, "console": true}
)

// Validate checks the configuration for invalid values. It collects all
// errors rather than stopping at the first.
func Validate(cfg *Config) error {
	var errs []*FieldError

	addError := func(field, message string) {
		errs = append(errs, &FieldError{Field: field, Message: message})
	}

	if strings.ContainsAny(cfg.Ledger.Filename, "/\\") {
		addError("ledger.filename", "must be a bare file name, not a path")
	}

	if !validLogLevels[strings.ToLower(cfg.Telemetry.Logging.Level)] {
		addError("telemetry.logging.level", fmt.Sprintf("invalid level %q (must be debug, info, warn, or error)", cfg.Telemetry.Logging.Level))
	}
	if !validLogFormats[strings.ToLower(cfg.Telemetry.Logging.Format)] {
		addError("telemetry.logging.format", fmt.Sprintf("invalid format %q (must be json, text, or console)", cfg.Telemetry.Logging.Format))
	}

	if cfg.Telemetry.Metrics.Enabled {
		if _, _, err := net.SplitHostPort(cfg.Telemetry.Metrics.ListenAddress); err != nil {
			addError("telemetry.metrics.listen_address", fmt.Sprintf("invalid listen address %q", cfg.Telemetry.Metrics.ListenAddress))
		}
	}

	if cfg.History.Enabled && cfg.History.Path == "" {
		addError("history.path", "required when history is enabled")
	}

	if cfg.Watch.Debounce < 0 {
		addError("watch.debounce", "cannot be negative")
	}
	if cfg.Watch.Schedule != "" {
		if _, err := cron.ParseStandard(cfg.Watch.Schedule); err != nil {
			addError("watch.schedule", fmt.Sprintf("invalid cron expression %q", cfg.Watch.Schedule))
		}
	}

	if len(errs) > 0 {
		return &ValidationError{Errors: errs}
	}
	return nil
}
