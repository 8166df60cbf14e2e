package vcs

import (
	"errors"
	"fmt"
	"path/filepath"
	"time"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
)

// ErrNotARepository indicates the export folder is not inside a git
// repository.
var ErrNotARepository = errors.New("not inside a git repository")

// CommitInfo describes a commit, used for run provenance.
type CommitInfo struct {
	// SHA is the full commit hash.
	SHA string

	// Author and Email identify the commit author.
	Author string
	Email  string

	// Timestamp is the author time.
	Timestamp time.Time

	// Message is the full commit message.
	Message string
}

// Repository wraps the git repository enclosing the export folder.
type Repository struct {
	repo *gogit.Repository
	root string
}

// Open discovers the repository enclosing dir, walking up parent
// directories the way the git CLI does. It returns ErrNotARepository
// (wrapped) when no repository encloses dir.
func Open(dir string) (*Repository, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve %q: %w", dir, err)
	}

	repo, err := gogit.PlainOpenWithOptions(abs, &gogit.PlainOpenOptions{
		DetectDotGit: true,
	})
	if err != nil {
		if errors.Is(err, gogit.ErrRepositoryNotExists) {
			return nil, fmt.Errorf("%w: %s", ErrNotARepository, abs)
		}
		return nil, fmt.Errorf("failed to open repository at %q: %w", abs, err)
	}

	worktree, err := repo.Worktree()
	if err != nil {
		return nil, fmt.Errorf("failed to get worktree: %w", err)
	}

	return &Repository{repo: repo, root: worktree.Filesystem.Root()}, nil
}

// Root returns the repository's worktree root.
func (r *Repository) Root() string {
	return r.root
}

// Head returns metadata about the current HEAD commit. A freshly
// initialized repository without commits returns an error.
func (r *Repository) Head() (*CommitInfo, error) {
	ref, err := r.repo.Head()
	if err != nil {
		return nil, fmt.Errorf("failed to get HEAD: %w", err)
	}

	commit, err := r.repo.CommitObject(ref.Hash())
	if err != nil {
		return nil, fmt.Errorf("failed to get commit: %w", err)
	}

	return &CommitInfo{
		SHA:       commit.Hash.String(),
		Author:    commit.Author.Name,
		Email:     commit.Author.Email,
		Timestamp: commit.Author.When,
		Message:   commit.Message,
	}, nil
}

// IsDirty reports whether the file at path (absolute or relative to the
// worktree root) has uncommitted changes. Untracked counts as dirty: an
// unshared sidecar deserves the same warning as a modified one.
func (r *Repository) IsDirty(path string) (bool, error) {
	rel, err := r.relPath(path)
	if err != nil {
		return false, err
	}

	worktree, err := r.repo.Worktree()
	if err != nil {
		return false, fmt.Errorf("failed to get worktree: %w", err)
	}

	status, err := worktree.Status()
	if err != nil {
		return false, fmt.Errorf("failed to get status: %w", err)
	}

	fileStatus := status.File(rel)
	return fileStatus.Worktree != gogit.Unmodified || fileStatus.Staging != gogit.Unmodified, nil
}

// Commit stages the given paths and commits them with the message. It
// returns the new commit SHA. Paths may be absolute or relative to the
// worktree root.
func (r *Repository) Commit(paths []string, message string) (string, error) {
	if len(paths) == 0 {
		return "", fmt.Errorf("nothing to commit")
	}

	worktree, err := r.repo.Worktree()
	if err != nil {
		return "", fmt.Errorf("failed to get worktree: %w", err)
	}

	for _, p := range paths {
		rel, err := r.relPath(p)
		if err != nil {
			return "", err
		}
		if _, err := worktree.Add(rel); err != nil {
			return "", fmt.Errorf("failed to stage %q: %w", rel, err)
		}
	}

	hash, err := worktree.Commit(message, &gogit.CommitOptions{
		Author: &object.Signature{
			Name:  "meshport",
			Email: "meshport@localhost",
			When:  time.Now(),
		},
	})
	if err != nil {
		return "", fmt.Errorf("failed to commit: %w", err)
	}

	return hash.String(), nil
}

// relPath converts a path into a slash-separated path relative to the
// worktree root, as go-git expects.
func (r *Repository) relPath(path string) (string, error) {
	if !filepath.IsAbs(path) {
		return filepath.ToSlash(path), nil
	}
	rel, err := filepath.Rel(r.root, path)
	if err != nil {
		return "", fmt.Errorf("path %q is outside the repository %q: %w", path, r.root, err)
	}
	return filepath.ToSlash(rel), nil
}
