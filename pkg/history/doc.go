// Package history persists an append-only record of export runs.
//
// The version ledger only remembers the latest state per file; the history
// database remembers every run: when it ran, what document version it saw,
// which files it committed or failed, and how long the host export calls
// took. "meshport history" queries it to answer "what did the tool actually
// do last Tuesday" without digging through git.
//
// Storage is a local SQLite database in WAL mode. History is best-effort
// bookkeeping: a run that cannot write history still exports and still
// updates the ledger.
package history
