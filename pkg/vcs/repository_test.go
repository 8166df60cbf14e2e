package vcs

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
)

// initRepo creates a repository with one committed file and returns its root.
func initRepo(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()

	repo, err := gogit.PlainInit(dir, false)
	if err != nil {
		t.Fatalf("failed to init repo: %v", err)
	}

	if err := os.WriteFile(filepath.Join(dir, "README.md"), []byte("exports\n"), 0644); err != nil {
		t.Fatalf("failed to write file: %v", err)
	}

	worktree, err := repo.Worktree()
	if err != nil {
		t.Fatalf("failed to get worktree: %v", err)
	}
	if _, err := worktree.Add("README.md"); err != nil {
		t.Fatalf("failed to stage: %v", err)
	}
	_, err = worktree.Commit("initial commit", &gogit.CommitOptions{
		Author: &object.Signature{Name: "tester", Email: "tester@example.com", When: time.Now()},
	})
	if err != nil {
		t.Fatalf("failed to commit: %v", err)
	}

	return dir
}

func TestOpen_NotARepository(t *testing.T) {
	_, err := Open(t.TempDir())
	if !errors.Is(err, ErrNotARepository) {
		t.Errorf("expected ErrNotARepository, got %v", err)
	}
}

func TestOpen_DetectsEnclosingRepo(t *testing.T) {
	root := initRepo(t)
	nested := filepath.Join(root, "exports", "printer")
	if err := os.MkdirAll(nested, 0755); err != nil {
		t.Fatalf("failed to create nested dir: %v", err)
	}

	repo, err := Open(nested)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	if repo.Root() != root {
		t.Errorf("root = %q, want %q", repo.Root(), root)
	}
}

func TestHead(t *testing.T) {
	root := initRepo(t)

	repo, err := Open(root)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}

	info, err := repo.Head()
	if err != nil {
		t.Fatalf("Head failed: %v", err)
	}
	if info.SHA == "" || info.Author != "tester" {
		t.Errorf("unexpected commit info: %+v", info)
	}
	if info.Message != "initial commit" {
		t.Errorf("message = %q", info.Message)
	}
}

func TestIsDirty(t *testing.T) {
	root := initRepo(t)
	repo, err := Open(root)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}

	// Committed and unmodified.
	dirty, err := repo.IsDirty("README.md")
	if err != nil {
		t.Fatalf("IsDirty failed: %v", err)
	}
	if dirty {
		t.Error("committed file should not be dirty")
	}

	// Untracked counts as dirty.
	sidecar := filepath.Join(root, "meshport.version.json")
	if err := os.WriteFile(sidecar, []byte("{}\n"), 0644); err != nil {
		t.Fatalf("failed to write sidecar: %v", err)
	}
	dirty, err = repo.IsDirty(sidecar)
	if err != nil {
		t.Fatalf("IsDirty failed: %v", err)
	}
	if !dirty {
		t.Error("untracked sidecar should be dirty")
	}

	// Modified tracked file.
	if err := os.WriteFile(filepath.Join(root, "README.md"), []byte("changed\n"), 0644); err != nil {
		t.Fatalf("failed to modify file: %v", err)
	}
	dirty, err = repo.IsDirty("README.md")
	if err != nil {
		t.Fatalf("IsDirty failed: %v", err)
	}
	if !dirty {
		t.Error("modified file should be dirty")
	}
}

func TestCommit(t *testing.T) {
	root := initRepo(t)
	repo, err := Open(root)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}

	mesh := filepath.Join(root, "case_x1.stl")
	sidecar := filepath.Join(root, "meshport.version.json")
	for _, f := range []string{mesh, sidecar} {
		if err := os.WriteFile(f, []byte("data\n"), 0644); err != nil {
			t.Fatalf("failed to write %q: %v", f, err)
		}
	}

	sha, err := repo.Commit([]string{mesh, sidecar}, "export: update case")
	if err != nil {
		t.Fatalf("Commit failed: %v", err)
	}
	if sha == "" {
		t.Fatal("expected commit SHA")
	}

	info, err := repo.Head()
	if err != nil {
		t.Fatalf("Head failed: %v", err)
	}
	if info.SHA != sha {
		t.Errorf("HEAD = %q, want %q", info.SHA, sha)
	}
	if info.Message != "export: update case" {
		t.Errorf("message = %q", info.Message)
	}

	dirty, err := repo.IsDirty(sidecar)
	if err != nil {
		t.Fatalf("IsDirty failed: %v", err)
	}
	if dirty {
		t.Error("sidecar should be clean after commit")
	}
}

func TestCommit_NothingToCommit(t *testing.T) {
	root := initRepo(t)
	repo, err := Open(root)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	if _, err := repo.Commit(nil, "empty"); err == nil {
		t.Error("expected error for empty path list")
	}
}
