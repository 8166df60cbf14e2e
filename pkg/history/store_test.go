package history

import (
	"context"
	"path/filepath"
	"testing"
	"time"
)

func openStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "history.db"))
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestOpen_EmptyPath(t *testing.T) {
	if _, err := Open(""); err == nil {
		t.Error("expected error for empty path")
	}
}

func TestRecordAndQueryRun(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()

	started := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)
	run := Run{
		ID:              "run-1",
		StartedAt:       started,
		FinishedAt:      started.Add(3 * time.Second),
		DocumentVersion: "v42",
		Committed:       2,
		Failed:          1,
		Warnings:        1,
		CommitSHA:       "abc123",
	}
	files := []FileRecord{
		{RunID: "run-1", Path: "case_x1.stl", Component: "Case", Result: "committed", Reason: "new-file", Duration: 120 * time.Millisecond},
		{RunID: "run-1", Path: "lid_x2.stl", Component: "Lid", Result: "committed", Reason: "fingerprint-changed", Duration: 80 * time.Millisecond},
		{RunID: "run-1", Path: "foot_x4.stl", Component: "Foot", Result: "failed", Reason: "new-file", Error: "export produced no data"},
	}

	if err := store.RecordRun(ctx, run, files); err != nil {
		t.Fatalf("RecordRun failed: %v", err)
	}

	runs, err := store.RecentRuns(ctx, 10)
	if err != nil {
		t.Fatalf("RecentRuns failed: %v", err)
	}
	if len(runs) != 1 {
		t.Fatalf("expected 1 run, got %d", len(runs))
	}
	got := runs[0]
	if got.ID != "run-1" || got.Committed != 2 || got.Failed != 1 || got.Warnings != 1 {
		t.Errorf("unexpected run: %+v", got)
	}
	if got.DocumentVersion != "v42" || got.CommitSHA != "abc123" {
		t.Errorf("unexpected provenance: %+v", got)
	}
	if !got.StartedAt.Equal(started) {
		t.Errorf("started = %v, want %v", got.StartedAt, started)
	}

	records, err := store.RunFiles(ctx, "run-1")
	if err != nil {
		t.Fatalf("RunFiles failed: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("expected 3 file records, got %d", len(records))
	}
	// Sorted by path.
	if records[0].Path != "case_x1.stl" || records[1].Path != "foot_x4.stl" || records[2].Path != "lid_x2.stl" {
		t.Errorf("unexpected order: %+v", records)
	}
	if records[1].Result != "failed" || records[1].Error != "export produced no data" {
		t.Errorf("unexpected failed record: %+v", records[1])
	}
	if records[0].Duration != 120*time.Millisecond {
		t.Errorf("duration = %v", records[0].Duration)
	}
}

func TestRecentRuns_NewestFirst(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()

	base := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)
	for i, id := range []string{"old", "mid", "new"} {
		run := Run{
			ID:         id,
			StartedAt:  base.Add(time.Duration(i) * time.Hour),
			FinishedAt: base.Add(time.Duration(i)*time.Hour + time.Second),
		}
		if err := store.RecordRun(ctx, run, nil); err != nil {
			t.Fatalf("RecordRun failed: %v", err)
		}
	}

	runs, err := store.RecentRuns(ctx, 2)
	if err != nil {
		t.Fatalf("RecentRuns failed: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("expected 2 runs, got %d", len(runs))
	}
	if runs[0].ID != "new" || runs[1].ID != "mid" {
		t.Errorf("unexpected order: %q, %q", runs[0].ID, runs[1].ID)
	}
}

func TestPathHistory(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()

	base := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)
	for i, result := range []string{"failed", "committed"} {
		run := Run{ID: result, StartedAt: base.Add(time.Duration(i) * time.Hour), FinishedAt: base.Add(time.Duration(i) * time.Hour)}
		files := []FileRecord{{RunID: run.ID, Path: "case_x1.stl", Component: "Case", Result: result, Reason: "new-file"}}
		if err := store.RecordRun(ctx, run, files); err != nil {
			t.Fatalf("RecordRun failed: %v", err)
		}
	}

	records, err := store.PathHistory(ctx, "case_x1.stl", 10)
	if err != nil {
		t.Fatalf("PathHistory failed: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}
	if records[0].Result != "committed" || records[1].Result != "failed" {
		t.Errorf("unexpected order: %+v", records)
	}

	none, err := store.PathHistory(ctx, "missing.stl", 10)
	if err != nil {
		t.Fatalf("PathHistory failed: %v", err)
	}
	if len(none) != 0 {
		t.Errorf("expected no records, got %d", len(none))
	}
}

func TestOpen_ReopensExistingDatabase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.db")
	ctx := context.Background()

	store, err := Open(path)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	run := Run{ID: "run-1", StartedAt: time.Now(), FinishedAt: time.Now()}
	if err := store.RecordRun(ctx, run, nil); err != nil {
		t.Fatalf("RecordRun failed: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	reopened, err := Open(path)
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	defer reopened.Close()

	runs, err := reopened.RecentRuns(ctx, 10)
	if err != nil {
		t.Fatalf("RecentRuns failed: %v", err)
	}
	if len(runs) != 1 || runs[0].ID != "run-1" {
		t.Errorf("unexpected runs after reopen: %+v", runs)
	}
}
