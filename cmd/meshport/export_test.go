package main

import (
	"os"
	"path/filepath"
	"testing"

	"partworks/meshport/pkg/ledger"
	"partworks/meshport/pkg/manifest"
)

// setupExportRun writes a design, a manifest, and points all globals at a
// temp folder. Returns the export folder.
func setupExportRun(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()

	design := `{
		"documentVersion": "rev-1",
		"components": {
			"Case": {"fingerprint": "f-case-1", "instanceCount": 1, "meshData": "solid case"},
			"Lid":  {"fingerprint": "f-lid-1", "instanceCount": 2, "meshData": "solid lid"}
		}
	}`
	designPath := filepath.Join(dir, "design.json")
	if err := os.WriteFile(designPath, []byte(design), 0644); err != nil {
		t.Fatalf("failed to write design: %v", err)
	}

	m := &manifest.Manifest{
		SchemaVersion: manifest.Version,
		Components: []manifest.Component{
			{Name: "Case", To: "case", Up: "z"},
			{Name: "Lid", To: "lid", Up: "x"},
		},
	}
	manifestPath := filepath.Join(dir, manifest.DefaultFilename)
	if err := m.Save(manifestPath); err != nil {
		t.Fatalf("failed to write manifest: %v", err)
	}

	outDir := filepath.Join(dir, "out")
	if err := os.MkdirAll(outDir, 0755); err != nil {
		t.Fatalf("failed to create output dir: %v", err)
	}

	// Point the globals at the temp folder and restore them after.
	origCfg, origFlags := cfgFile, exportFlags
	cfgFile = filepath.Join(dir, "meshport.yaml") // absent, defaults apply
	exportFlags.manifestPath = manifestPath
	exportFlags.designPath = designPath
	exportFlags.outputDir = outDir
	exportFlags.quiet = true
	t.Cleanup(func() {
		cfgFile = origCfg
		exportFlags = origFlags
	})

	// Keep history and git out of the filesystem the test doesn't own.
	t.Setenv("MESHPORT_HISTORY_ENABLED", "false")
	t.Setenv("MESHPORT_VCS_WARN_DIRTY", "false")

	return outDir
}

func TestRunExport_EndToEnd(t *testing.T) {
	outDir := setupExportRun(t)

	if err := runExport(exportCmd, nil); err != nil {
		t.Fatalf("runExport failed: %v", err)
	}

	for _, f := range []string{"case_x1.stl", "lid_x2.stl"} {
		if _, err := os.Stat(filepath.Join(outDir, f)); err != nil {
			t.Errorf("expected exported file %s: %v", f, err)
		}
	}

	led, err := ledger.Load(filepath.Join(outDir, "meshport.version.json"))
	if err != nil {
		t.Fatalf("failed to load ledger: %v", err)
	}
	if led.Len() != 2 {
		t.Errorf("ledger has %d entries, want 2", led.Len())
	}
	entry, ok := led.Get("case_x1.stl")
	if !ok || entry.Fingerprint != "f-case-1" || entry.SourceDocumentVersion != "rev-1" {
		t.Errorf("unexpected ledger entry: %+v", entry)
	}
}

func TestPrepareRun_IncrementalSaveFromConfig(t *testing.T) {
	setupExportRun(t)
	t.Setenv("MESHPORT_EXPORT_INCREMENTAL_SAVE", "true")

	cfg, logger, err := loadToolConfig()
	if err != nil {
		t.Fatalf("loadToolConfig failed: %v", err)
	}
	env, err := prepareRun(cfg, logger, exportFlags.manifestPath, exportFlags.designPath, exportFlags.outputDir)
	if err != nil {
		t.Fatalf("prepareRun failed: %v", err)
	}
	if !env.incremental {
		t.Error("export.incremental_save from config should enable incremental saves")
	}
}

func TestRunExport_SecondRunSkipsEverything(t *testing.T) {
	outDir := setupExportRun(t)

	if err := runExport(exportCmd, nil); err != nil {
		t.Fatalf("first run failed: %v", err)
	}

	sidecar := filepath.Join(outDir, "meshport.version.json")
	before, err := os.ReadFile(sidecar)
	if err != nil {
		t.Fatalf("failed to read sidecar: %v", err)
	}

	if err := runExport(exportCmd, nil); err != nil {
		t.Fatalf("second run failed: %v", err)
	}

	after, err := os.ReadFile(sidecar)
	if err != nil {
		t.Fatalf("failed to read sidecar: %v", err)
	}
	if string(before) != string(after) {
		t.Error("a run with no changes should leave the sidecar untouched")
	}
}
