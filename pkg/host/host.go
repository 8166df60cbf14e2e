package host

import (
	"context"
	"errors"

	"partworks/meshport/pkg/orient"
)

// ErrNotFound is returned by ResolveComponent when the named component does
// not exist in the live design.
var ErrNotFound = errors.New("component not found in design")

// ComponentRef is an opaque handle to a component inside the host's design
// tree. Refs are only valid for the host that produced them.
type ComponentRef interface {
	// Name returns the design name of the referenced component.
	Name() string
}

// Host is the capability boundary to the CAD application. Implementations
// wrap a live design session (or a scripted stand-in) and must tolerate
// being called from a single goroutine per run; the engine never issues
// overlapping export calls against the same document.
type Host interface {
	// ResolveComponent looks up a component by its design name. It returns
	// ErrNotFound (possibly wrapped) when no such component exists.
	ResolveComponent(name string) (ComponentRef, error)

	// Fingerprint returns the opaque modification token for the component.
	// The token changes if and only if the exportable geometry changed.
	Fingerprint(ref ComponentRef) (string, error)

	// InstanceCount returns the number of occurrences of the component in
	// the active design.
	InstanceCount(ref ComponentRef) (int, error)

	// DocumentVersion returns the opaque version token of the active
	// document.
	DocumentVersion() string

	// ExportMesh converts the component to a mesh, applies the rotation,
	// and writes the result to destPath in the given format. The host
	// reports failure via the returned error; on success a non-empty file
	// must exist at destPath.
	ExportMesh(ctx context.Context, ref ComponentRef, rotation orient.Matrix, destPath, format string) error
}
