// Package config provides tool-level configuration for meshport.
//
// This is the configuration of the tool itself (logging, history database,
// git integration, watch behavior), not of the exports: what to export and
// how lives in the per-folder manifest handled by the manifest package.
//
// Configuration is loaded from an optional YAML file with environment
// variable overrides. A missing file is not an error; the tool runs on
// defaults.
//
// Values are applied in the following order (later overrides earlier):
//
//  1. Default values (defined in defaults.go)
//  2. Values from the YAML file
//  3. MESHPORT_* environment variable overrides
//  4. Validation (fails fast if invalid)
//
// Environment variables follow the naming convention MESHPORT_SECTION_FIELD,
// for example:
//
//   - MESHPORT_TELEMETRY_LOGGING_LEVEL overrides telemetry.logging.level
//   - MESHPORT_HISTORY_PATH overrides history.path
//   - MESHPORT_VCS_COMMIT overrides vcs.commit
package config
