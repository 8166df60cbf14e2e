// Package hostfake provides an in-memory host.Host for tests.
//
// The fake lets tests mutate fingerprints and instance counts between runs,
// inject per-component export failures, and inspect the order of export
// calls, without touching a real CAD session or the filesystem beyond the
// destination files it is asked to write.
package hostfake

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"partworks/meshport/pkg/host"
	"partworks/meshport/pkg/orient"
)

// Component is the mutable state of one fake design component.
type Component struct {
	// Fingerprint is the current geometry token. Tests bump it to simulate
	// a design change.
	Fingerprint string

	// Count is the instance count in the fake design.
	Count int

	// MeshData is the payload ExportMesh writes. Defaults to a small
	// non-empty blob when nil.
	MeshData []byte
}

// Fake is an in-memory host.Host implementation.
type Fake struct {
	// DocVersion is returned by DocumentVersion.
	DocVersion string

	// Components maps design names to their fake state.
	Components map[string]*Component

	// ExportErr injects an error for ExportMesh calls on a component name.
	ExportErr map[string]error

	// ExportEmpty makes ExportMesh write a zero-byte file for a component
	// name, simulating a host that reports success but produces garbage.
	ExportEmpty map[string]bool

	// ExportCalls records component names in the order ExportMesh was
	// invoked.
	ExportCalls []string

	// Rotations records the rotation passed for each export call, keyed by
	// component name.
	Rotations map[string]orient.Matrix
}

type ref struct{ name string }

func (r ref) Name() string { return r.name }

// New returns an empty fake with document version "doc-1".
func New() *Fake {
	return &Fake{
		DocVersion:  "doc-1",
		Components:  make(map[string]*Component),
		ExportErr:   make(map[string]error),
		ExportEmpty: make(map[string]bool),
		Rotations:   make(map[string]orient.Matrix),
	}
}

// Add registers a component with the given fingerprint and count.
func (f *Fake) Add(name, fingerprint string, count int) *Component {
	c := &Component{Fingerprint: fingerprint, Count: count}
	f.Components[name] = c
	return c
}

// ResolveComponent implements host.Host.
func (f *Fake) ResolveComponent(name string) (host.ComponentRef, error) {
	if _, ok := f.Components[name]; !ok {
		return nil, fmt.Errorf("%w: %q", host.ErrNotFound, name)
	}
	return ref{name: name}, nil
}

// Fingerprint implements host.Host.
func (f *Fake) Fingerprint(r host.ComponentRef) (string, error) {
	c, err := f.component(r)
	if err != nil {
		return "", err
	}
	return c.Fingerprint, nil
}

// InstanceCount implements host.Host.
func (f *Fake) InstanceCount(r host.ComponentRef) (int, error) {
	c, err := f.component(r)
	if err != nil {
		return 0, err
	}
	return c.Count, nil
}

// DocumentVersion implements host.Host.
func (f *Fake) DocumentVersion() string {
	return f.DocVersion
}

// ExportMesh implements host.Host.
func (f *Fake) ExportMesh(ctx context.Context, r host.ComponentRef, rotation orient.Matrix, destPath, format string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	f.ExportCalls = append(f.ExportCalls, r.Name())
	f.Rotations[r.Name()] = rotation

	if err, ok := f.ExportErr[r.Name()]; ok {
		return err
	}

	c, err := f.component(r)
	if err != nil {
		return err
	}

	data := c.MeshData
	if data == nil {
		data = []byte("solid " + r.Name() + "\nendsolid\n")
	}
	if f.ExportEmpty[r.Name()] {
		data = nil
	}

	if err := os.MkdirAll(filepath.Dir(destPath), 0755); err != nil {
		return err
	}
	return os.WriteFile(destPath, data, 0644)
}

func (f *Fake) component(r host.ComponentRef) (*Component, error) {
	c, ok := f.Components[r.Name()]
	if !ok {
		return nil, fmt.Errorf("%w: %q", host.ErrNotFound, r.Name())
	}
	return c, nil
}
