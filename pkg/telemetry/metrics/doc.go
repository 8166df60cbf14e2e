// Package metrics provides Prometheus instrumentation for the export engine.
//
// Metrics matter in watch mode, where the engine runs long enough to be
// scraped: totals of committed, failed, and skipped exports, export call
// durations, and the current ledger size. One-shot CLI runs may pass a nil
// Collector; every recording method is nil-safe.
package metrics
