// Package logging provides structured logging for the export engine.
//
// Logger wraps log/slog with level and format parsing driven by the tool
// configuration. Output formats are "json" (machine-readable, the default),
// "text" (logfmt-style), and "console" (human-readable text for interactive
// runs).
package logging
