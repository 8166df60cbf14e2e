// Package host defines the interface to the CAD host application.
//
// The engine never owns the design tree. Everything it needs from the host
// is expressed as the Host interface: resolving a component by name, reading
// its geometry fingerprint and instance count, and asking the host to export
// a mesh. Fingerprints and document versions are opaque host tokens; the
// engine compares them for equality and never inspects their structure.
//
// Snapshot captures a read-only view of the design state at the start of a
// run, so planning is a pure function over immutable inputs.
//
// ScriptedHost is a file-backed Host used where no live CAD session is
// available: it serves fingerprints, counts, and pre-staged mesh blobs from
// a JSON description. The CLI and the integration tests run against it.
package host
