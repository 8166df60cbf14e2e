package host

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"partworks/meshport/pkg/orient"
)

// ScriptedHost is a Host backed by a JSON design description instead of a
// live CAD session. Mesh geometry is served from pre-staged blob files (or
// inline data), and fingerprints are whatever the description says they
// are. The description format:
//
//	{
//	  "documentVersion": "rev-7",
//	  "components": {
//	    "Case Top": {
//	      "fingerprint": "a81f...",
//	      "instanceCount": 2,
//	      "mesh": "meshes/case_top.stl"
//	    }
//	  }
//	}
//
// Mesh paths are resolved relative to the description file. The rotation
// passed to ExportMesh is not applied to the staged bytes; a scripted host
// has no geometry kernel, so staged meshes are expected to already be in
// their export orientation.
type ScriptedHost struct {
	baseDir    string
	docVersion string
	components map[string]scriptedComponent
}

type scriptedComponent struct {
	Fingerprint   string `json:"fingerprint"`
	InstanceCount int    `json:"instanceCount"`
	Mesh          string `json:"mesh,omitempty"`
	MeshData      string `json:"meshData,omitempty"`
}

type scriptedDesign struct {
	DocumentVersion string                       `json:"documentVersion"`
	Components      map[string]scriptedComponent `json:"components"`
}

// scriptedRef implements ComponentRef for ScriptedHost.
type scriptedRef struct {
	name string
}

func (r scriptedRef) Name() string { return r.name }

// LoadScripted reads a scripted design description from a JSON file.
func LoadScripted(path string) (*ScriptedHost, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read design description %q: %w", path, err)
	}

	var design scriptedDesign
	if err := json.Unmarshal(data, &design); err != nil {
		return nil, fmt.Errorf("failed to parse design description %q: %w", path, err)
	}

	return &ScriptedHost{
		baseDir:    filepath.Dir(path),
		docVersion: design.DocumentVersion,
		components: design.Components,
	}, nil
}

// ResolveComponent implements Host.
func (h *ScriptedHost) ResolveComponent(name string) (ComponentRef, error) {
	if _, ok := h.components[name]; !ok {
		return nil, fmt.Errorf("%w: %q", ErrNotFound, name)
	}
	return scriptedRef{name: name}, nil
}

// Fingerprint implements Host.
func (h *ScriptedHost) Fingerprint(ref ComponentRef) (string, error) {
	c, err := h.lookup(ref)
	if err != nil {
		return "", err
	}
	return c.Fingerprint, nil
}

// InstanceCount implements Host.
func (h *ScriptedHost) InstanceCount(ref ComponentRef) (int, error) {
	c, err := h.lookup(ref)
	if err != nil {
		return 0, err
	}
	if c.InstanceCount < 1 {
		return 1, nil
	}
	return c.InstanceCount, nil
}

// DocumentVersion implements Host.
func (h *ScriptedHost) DocumentVersion() string {
	return h.docVersion
}

// ComponentNames returns every component name in the design, sorted.
// "meshport init" uses it to seed a starter manifest.
func (h *ScriptedHost) ComponentNames() []string {
	names := make([]string, 0, len(h.components))
	for name := range h.components {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ExportMesh implements Host by copying the staged mesh bytes to destPath.
func (h *ScriptedHost) ExportMesh(ctx context.Context, ref ComponentRef, rotation orient.Matrix, destPath, format string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	c, err := h.lookup(ref)
	if err != nil {
		return err
	}

	var data []byte
	switch {
	case c.MeshData != "":
		data = []byte(c.MeshData)
	case c.Mesh != "":
		src := c.Mesh
		if !filepath.IsAbs(src) {
			src = filepath.Join(h.baseDir, src)
		}
		data, err = os.ReadFile(src)
		if err != nil {
			return fmt.Errorf("failed to read staged mesh for %q: %w", ref.Name(), err)
		}
	default:
		return fmt.Errorf("component %q has no staged mesh", ref.Name())
	}

	if len(data) == 0 {
		return fmt.Errorf("staged mesh for %q is empty", ref.Name())
	}

	if err := os.MkdirAll(filepath.Dir(destPath), 0755); err != nil {
		return fmt.Errorf("failed to create export directory: %w", err)
	}
	if err := os.WriteFile(destPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write mesh %q: %w", destPath, err)
	}
	return nil
}

func (h *ScriptedHost) lookup(ref ComponentRef) (scriptedComponent, error) {
	c, ok := h.components[ref.Name()]
	if !ok {
		return scriptedComponent{}, fmt.Errorf("%w: %q", ErrNotFound, ref.Name())
	}
	return c, nil
}
