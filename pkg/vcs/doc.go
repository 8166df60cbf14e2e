// Package vcs integrates the export folder with the git repository it
// lives in.
//
// The version ledger is designed to be shared through version control:
// concurrent runs on different machines are reconciled by git's own
// conflict detection on the sidecar file, not by in-process locking. This
// package gives the engine the few git operations that workflow needs:
// discovering the enclosing repository, reading HEAD for run provenance,
// warning when the sidecar has uncommitted changes before a run, and
// optionally committing the exported meshes plus sidecar afterwards.
//
// A folder outside any repository is fine; Open returns ErrNotARepository
// and callers degrade to plain filesystem behavior.
package vcs
