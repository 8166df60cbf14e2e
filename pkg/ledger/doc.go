// Package ledger persists the export version ledger: the sidecar file that
// maps each exported mesh path to the fingerprint and metadata of the export
// that produced it.
//
// The ledger is the memory that makes repeated exports cheap. A run loads
// it once, consults it while planning, mutates it in memory as exports
// succeed, and saves it once at the end. Saves are atomic (temp file then
// rename) so an interrupted run can never leave a truncated sidecar; it
// only leaves the previous ledger in place, which makes re-running safe.
//
// A missing sidecar is an empty ledger. A corrupt sidecar is also treated
// as empty, but Load reports it (wrapped ErrCorrupt) so callers can warn
// loudly: everything will be re-exported on the next run.
package ledger
