// Package plan decides which configured components need exporting.
//
// The planner is a pure decision function: it reads a validated manifest,
// an immutable design snapshot, and the loaded version ledger, and emits an
// ordered list of export actions. It performs no I/O, which is what makes
// the engine's core logic directly testable.
//
// A component is planned for export when the ledger has no entry for its
// resolved output path (new file, or the filename moved because the copy
// count changed) or when the live fingerprint differs from the recorded
// one. Components whose recorded fingerprint matches are skipped. Running
// the planner again over the ledger produced by a successful run therefore
// yields an empty plan.
//
// Per-component problems (a manifest name the design no longer contains)
// become warnings, not errors: one bad entry never blocks exporting the
// rest. Filename collisions across manifest entries are fatal and detected
// before any action is emitted.
package plan
