package export

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"partworks/meshport/internal/hostfake"
	"partworks/meshport/pkg/host"
	"partworks/meshport/pkg/ledger"
	"partworks/meshport/pkg/manifest"
	"partworks/meshport/pkg/orient"
	"partworks/meshport/pkg/plan"
)

func specs(pairs ...string) []manifest.Spec {
	var out []manifest.Spec
	for i := 0; i+1 < len(pairs); i += 2 {
		out = append(out, manifest.Spec{Name: pairs[i], To: pairs[i+1], Up: orient.AxisZ, Format: "stl"})
	}
	return out
}

func buildPlan(t *testing.T, sp []manifest.Spec, fake *hostfake.Fake, led *ledger.Ledger) ([]plan.Action, []plan.Warning) {
	t.Helper()
	names := make([]string, 0, len(sp))
	for _, s := range sp {
		names = append(names, s.Name)
	}
	snap, err := host.Take(fake, names)
	if err != nil {
		t.Fatalf("snapshot failed: %v", err)
	}
	actions, warnings, err := plan.Build(sp, snap, led)
	if err != nil {
		t.Fatalf("plan failed: %v", err)
	}
	return actions, warnings
}

func newExecutor(fake *hostfake.Fake, led *ledger.Ledger, dir string) *Executor {
	return New(fake, led, Options{
		OutputDir:  dir,
		LedgerPath: filepath.Join(dir, ledger.DefaultFilename),
	})
}

func TestRun_CommitsAndPersists(t *testing.T) {
	dir := t.TempDir()
	fake := hostfake.New()
	fake.Add("Case", "fp-1", 1)

	led := ledger.New()
	sp := specs("Case", "case")
	actions, warnings := buildPlan(t, sp, fake, led)

	report, err := newExecutor(fake, led, dir).Run(context.Background(), actions, warnings)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if len(report.Committed) != 1 || len(report.Failed) != 0 {
		t.Fatalf("unexpected report: committed=%d failed=%d", len(report.Committed), len(report.Failed))
	}
	if !report.LedgerSaved {
		t.Error("ledger should be persisted after a committing run")
	}

	// The mesh file exists and is non-empty.
	info, err := os.Stat(filepath.Join(dir, "case_x1.stl"))
	if err != nil || info.Size() == 0 {
		t.Fatalf("expected non-empty exported file, err=%v", err)
	}

	// The persisted ledger reflects the commit.
	saved, err := ledger.Load(filepath.Join(dir, ledger.DefaultFilename))
	if err != nil {
		t.Fatalf("failed to load saved ledger: %v", err)
	}
	e, ok := saved.Get("case_x1.stl")
	if !ok {
		t.Fatal("saved ledger missing committed entry")
	}
	if e.Fingerprint != "fp-1" || e.Component != "Case" || e.InstanceCount != 1 {
		t.Errorf("unexpected entry: %+v", e)
	}
	if e.SourceDocumentVersion != fake.DocVersion {
		t.Errorf("entry document version = %q, want %q", e.SourceDocumentVersion, fake.DocVersion)
	}
}

func TestRun_PartialFailurePreservesProgress(t *testing.T) {
	dir := t.TempDir()
	fake := hostfake.New()
	fake.Add("A", "fp-a", 1)
	fake.Add("B", "fp-b", 1)
	fake.Add("C", "fp-c", 1)
	fake.ExportErr["B"] = errors.New("kernel busy")

	led := ledger.New()
	sp := specs("A", "a", "B", "b", "C", "c")
	actions, warnings := buildPlan(t, sp, fake, led)
	if len(actions) != 3 {
		t.Fatalf("expected 3 actions, got %d", len(actions))
	}

	report, err := newExecutor(fake, led, dir).Run(context.Background(), actions, warnings)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if len(report.Committed) != 2 || len(report.Failed) != 1 {
		t.Fatalf("expected 2 committed / 1 failed, got %d / %d", len(report.Committed), len(report.Failed))
	}
	if report.Failed[0].Action.Component != "B" {
		t.Errorf("failed action = %q, want B", report.Failed[0].Action.Component)
	}

	// Order preserved: A before C, B attempted in between.
	if got := fake.ExportCalls; len(got) != 3 || got[0] != "A" || got[1] != "B" || got[2] != "C" {
		t.Errorf("unexpected call order: %v", got)
	}

	// Ledger holds entries for A and C only.
	if _, ok := led.Get("b_x1.stl"); ok {
		t.Error("failed action must not touch the ledger")
	}

	// A subsequent run re-attempts only B.
	fake.ExportErr = map[string]error{}
	fake.ExportCalls = nil
	actions2, _ := buildPlan(t, sp, fake, led)
	if len(actions2) != 1 || actions2[0].Component != "B" {
		t.Fatalf("second run should plan only B, got %v", actions2)
	}
}

func TestRun_EmptyFileIsFailure(t *testing.T) {
	dir := t.TempDir()
	fake := hostfake.New()
	fake.Add("Case", "fp-1", 1)
	fake.ExportEmpty["Case"] = true

	led := ledger.New()
	sp := specs("Case", "case")
	actions, warnings := buildPlan(t, sp, fake, led)

	report, err := newExecutor(fake, led, dir).Run(context.Background(), actions, warnings)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if len(report.Failed) != 1 || len(report.Committed) != 0 {
		t.Fatalf("empty file should be a failure, got report: %+v", report)
	}
	if _, ok := led.Get("case_x1.stl"); ok {
		t.Error("empty-file export must not be committed to the ledger")
	}
}

func TestRun_NoCommitsLeavesSidecarUntouched(t *testing.T) {
	dir := t.TempDir()
	ledgerPath := filepath.Join(dir, ledger.DefaultFilename)

	// Pre-existing sidecar from an earlier run.
	prior := ledger.New()
	prior.Put("case_x1.stl", ledger.Entry{Fingerprint: "fp-1", Component: "Case", InstanceCount: 1})
	if err := prior.Save(ledgerPath); err != nil {
		t.Fatalf("failed to seed sidecar: %v", err)
	}
	before, err := os.ReadFile(ledgerPath)
	if err != nil {
		t.Fatalf("failed to read sidecar: %v", err)
	}

	fake := hostfake.New()
	fake.Add("Case", "fp-1", 1)

	led, err := ledger.Load(ledgerPath)
	if err != nil {
		t.Fatalf("failed to load ledger: %v", err)
	}
	sp := specs("Case", "case")
	actions, warnings := buildPlan(t, sp, fake, led)
	if len(actions) != 0 {
		t.Fatalf("expected empty plan, got %v", actions)
	}

	report, err := newExecutor(fake, led, dir).Run(context.Background(), actions, warnings)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if report.LedgerSaved {
		t.Error("no-op run must not rewrite the sidecar")
	}

	after, err := os.ReadFile(ledgerPath)
	if err != nil {
		t.Fatalf("failed to re-read sidecar: %v", err)
	}
	if string(before) != string(after) {
		t.Error("sidecar changed during a run that committed nothing")
	}
}

// Interruption before the final save leaves the on-disk ledger at its
// pre-run state; re-running re-detects and re-exports safely.
func TestRun_InterruptedBeforeSaveIsRestartable(t *testing.T) {
	dir := t.TempDir()
	ledgerPath := filepath.Join(dir, ledger.DefaultFilename)

	fake := hostfake.New()
	fake.Add("A", "fp-a", 1)
	fake.Add("B", "fp-b", 1)

	sp := specs("A", "a", "B", "b")

	// Simulate the interruption: a cancelled context before any action.
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	led := ledger.New()
	actions, warnings := buildPlan(t, sp, fake, led)
	report, err := newExecutor(fake, led, dir).Run(ctx, actions, warnings)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if len(report.Committed) != 0 {
		t.Fatalf("cancelled run should commit nothing, got %d", len(report.Committed))
	}
	if _, err := os.Stat(ledgerPath); !os.IsNotExist(err) {
		t.Error("cancelled run must not create the sidecar")
	}

	// Re-run with a live context: everything is re-detected and exported.
	led2, err := ledger.Load(ledgerPath)
	if err != nil {
		t.Fatalf("failed to load ledger: %v", err)
	}
	actions2, warnings2 := buildPlan(t, sp, fake, led2)
	if len(actions2) != 2 {
		t.Fatalf("re-run should plan both actions, got %d", len(actions2))
	}
	report2, err := newExecutor(fake, led2, dir).Run(context.Background(), actions2, warnings2)
	if err != nil {
		t.Fatalf("re-run failed: %v", err)
	}
	if len(report2.Committed) != 2 {
		t.Errorf("re-run should commit both actions, got %d", len(report2.Committed))
	}
}

func TestRun_IncrementalSave(t *testing.T) {
	dir := t.TempDir()
	ledgerPath := filepath.Join(dir, ledger.DefaultFilename)

	fake := hostfake.New()
	fake.Add("A", "fp-a", 1)
	fake.Add("B", "fp-b", 1)
	fake.ExportErr["B"] = errors.New("kernel busy")

	led := ledger.New()
	sp := specs("A", "a", "B", "b")
	actions, warnings := buildPlan(t, sp, fake, led)

	exec := New(fake, led, Options{
		OutputDir:       dir,
		LedgerPath:      ledgerPath,
		IncrementalSave: true,
	})
	report, err := exec.Run(context.Background(), actions, warnings)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if !report.LedgerSaved {
		t.Error("incremental run with a commit should have saved the ledger")
	}

	saved, err := ledger.Load(ledgerPath)
	if err != nil {
		t.Fatalf("failed to load ledger: %v", err)
	}
	if _, ok := saved.Get("a_x1.stl"); !ok {
		t.Error("incrementally saved ledger missing committed entry")
	}
	if _, ok := saved.Get("b_x1.stl"); ok {
		t.Error("failed action leaked into incrementally saved ledger")
	}
}

func TestRun_SubdirectoryPaths(t *testing.T) {
	dir := t.TempDir()
	fake := hostfake.New()
	fake.Add("Bracket", "fp-1", 2)

	led := ledger.New()
	sp := specs("Bracket", "parts/bracket")
	actions, warnings := buildPlan(t, sp, fake, led)

	if _, err := newExecutor(fake, led, dir).Run(context.Background(), actions, warnings); err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "parts", "bracket_x2.stl")); err != nil {
		t.Errorf("expected mesh in subdirectory: %v", err)
	}
	if _, ok := led.Get("parts/bracket_x2.stl"); !ok {
		t.Error("ledger key should use forward slashes")
	}
}
