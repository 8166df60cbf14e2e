// Meshport keeps a folder of exported CAD meshes current and versioned.
//
// It reads a per-folder manifest describing which design components to
// export, asks the host for each component's geometry fingerprint, and
// re-exports only what changed since the last run. A JSON sidecar ledger
// records what each file was exported from, so the mesh folder can be
// shared through git and reconciled across machines.
//
// Usage:
//
//	# Export changed components
//	meshport export --design design.json
//
//	# Show what would be exported without touching anything
//	meshport plan --design design.json
//
//	# Seed a starter manifest from a design
//	meshport init --design design.json
//
//	# Re-run automatically when the manifest or design changes
//	meshport watch --design design.json
//
//	# Inspect past runs
//	meshport history
package main

import "github.com/joho/godotenv"

func main() {
	// A .env file is an optional convenience for MESHPORT_* overrides;
	// absence is not an error.
	_ = godotenv.Load()

	Execute()
}
