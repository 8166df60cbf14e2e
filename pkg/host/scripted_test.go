package host

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"partworks/meshport/pkg/orient"
)

func writeScripted(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, "design.json")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write design description: %v", err)
	}
	return path
}

func TestLoadScripted_ResolvesComponents(t *testing.T) {
	dir := t.TempDir()
	path := writeScripted(t, dir, `{
  "documentVersion": "rev-7",
  "components": {
    "Case Top": {"fingerprint": "fp-a", "instanceCount": 2, "meshData": "solid case\nendsolid\n"}
  }
}`)

	h, err := LoadScripted(path)
	if err != nil {
		t.Fatalf("LoadScripted failed: %v", err)
	}

	if h.DocumentVersion() != "rev-7" {
		t.Errorf("document version = %q", h.DocumentVersion())
	}

	ref, err := h.ResolveComponent("Case Top")
	if err != nil {
		t.Fatalf("ResolveComponent failed: %v", err)
	}
	if fp, _ := h.Fingerprint(ref); fp != "fp-a" {
		t.Errorf("fingerprint = %q", fp)
	}
	if n, _ := h.InstanceCount(ref); n != 2 {
		t.Errorf("instance count = %d", n)
	}

	if _, err := h.ResolveComponent("Ghost"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestScriptedHost_ExportMesh_FromStagedFile(t *testing.T) {
	dir := t.TempDir()
	meshSrc := filepath.Join(dir, "case.stl")
	if err := os.WriteFile(meshSrc, []byte("solid staged\nendsolid\n"), 0644); err != nil {
		t.Fatalf("failed to stage mesh: %v", err)
	}

	path := writeScripted(t, dir, `{
  "documentVersion": "rev-1",
  "components": {
    "Case": {"fingerprint": "fp", "instanceCount": 1, "mesh": "case.stl"}
  }
}`)

	h, err := LoadScripted(path)
	if err != nil {
		t.Fatalf("LoadScripted failed: %v", err)
	}

	ref, _ := h.ResolveComponent("Case")
	dest := filepath.Join(dir, "out", "case_x1.stl")
	if err := h.ExportMesh(context.Background(), ref, orient.Identity(), dest, "stl"); err != nil {
		t.Fatalf("ExportMesh failed: %v", err)
	}

	data, err := os.ReadFile(dest)
	if err != nil {
		t.Fatalf("failed to read exported mesh: %v", err)
	}
	if string(data) != "solid staged\nendsolid\n" {
		t.Errorf("unexpected mesh content: %q", data)
	}
}

func TestScriptedHost_ExportMesh_NoStagedMesh(t *testing.T) {
	dir := t.TempDir()
	path := writeScripted(t, dir, `{
  "components": {"Case": {"fingerprint": "fp", "instanceCount": 1}}
}`)

	h, err := LoadScripted(path)
	if err != nil {
		t.Fatalf("LoadScripted failed: %v", err)
	}

	ref, _ := h.ResolveComponent("Case")
	dest := filepath.Join(dir, "case_x1.stl")
	if err := h.ExportMesh(context.Background(), ref, orient.Identity(), dest, "stl"); err == nil {
		t.Error("expected error for component without staged mesh")
	}
}

func TestScriptedHost_InstanceCountFloor(t *testing.T) {
	dir := t.TempDir()
	path := writeScripted(t, dir, `{
  "components": {"Case": {"fingerprint": "fp"}}
}`)

	h, err := LoadScripted(path)
	if err != nil {
		t.Fatalf("LoadScripted failed: %v", err)
	}

	ref, _ := h.ResolveComponent("Case")
	if n, _ := h.InstanceCount(ref); n != 1 {
		t.Errorf("unset instance count should floor to 1, got %d", n)
	}
}
