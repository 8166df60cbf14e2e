// Package export executes a planned export run against the host.
//
// The executor consumes the planner's actions one at a time: it invokes the
// host's mesh export, verifies a non-empty file landed at the destination,
// and only then commits the new fingerprint into the in-memory ledger. A
// failed action leaves its ledger entry untouched and the run moves on, so
// one bad component never blocks the rest and the next run re-attempts
// exactly the failures.
//
// The ledger is persisted once, after all actions were attempted,
// reflecting only the committed subset (or after every commit when
// incremental saving is enabled, to bound loss on interruption). Because
// entries are committed only for verified files and the sidecar write is
// atomic, an interrupted run is always safe to re-run.
package export
