package ledger

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"
)

// Version is the ledger schema version this engine writes.
const Version = 1

// DefaultFilename is the sidecar filename used when the tool configuration
// does not override it.
const DefaultFilename = "meshport.version.json"

// ErrCorrupt indicates the sidecar file exists but could not be parsed.
// Callers should treat the ledger as empty and warn the user.
var ErrCorrupt = errors.New("ledger sidecar is corrupt")

// Entry records the last successful export for one output path.
type Entry struct {
	// Fingerprint is the opaque host token identifying the exported
	// geometry state. It is compared for equality only, never parsed.
	Fingerprint string `json:"fingerprint"`

	// ExportedAt is when the export completed.
	ExportedAt time.Time `json:"exportedAt"`

	// SourceDocumentVersion is the opaque host document version the export
	// was taken from.
	SourceDocumentVersion string `json:"sourceDocumentVersion"`

	// InstanceCount is the copy count used for the filename suffix.
	InstanceCount int `json:"instanceCount"`

	// Component is the design component name that produced the file. Used
	// to spot stale entries when a count change moves the filename.
	Component string `json:"component,omitempty"`
}

// Ledger is the persisted mapping of resolved output path to Entry.
type Ledger struct {
	// SchemaVersion is the ledger format version.
	SchemaVersion int `json:"version"`

	// Entries maps resolved output paths (relative to the export folder,
	// forward slashes) to their last-known export metadata.
	Entries map[string]Entry `json:"entries"`
}

// New returns an empty ledger.
func New() *Ledger {
	return &Ledger{
		SchemaVersion: Version,
		Entries:       make(map[string]Entry),
	}
}

// Load reads the sidecar at path. A missing file yields an empty ledger and
// no error. An unreadable or unparseable file yields an empty ledger and an
// error wrapping ErrCorrupt; the returned ledger is always usable.
func Load(path string) (*Ledger, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return New(), nil
		}
		return New(), fmt.Errorf("%w: failed to read %q: %v", ErrCorrupt, path, err)
	}

	var l Ledger
	if err := json.Unmarshal(data, &l); err != nil {
		return New(), fmt.Errorf("%w: failed to parse %q: %v", ErrCorrupt, path, err)
	}
	if l.SchemaVersion != Version {
		return New(), fmt.Errorf("%w: %q has unsupported version %d", ErrCorrupt, path, l.SchemaVersion)
	}
	if l.Entries == nil {
		l.Entries = make(map[string]Entry)
	}
	return &l, nil
}

// Get returns the entry for a resolved output path.
func (l *Ledger) Get(path string) (Entry, bool) {
	e, ok := l.Entries[path]
	return e, ok
}

// Put records an entry for a resolved output path.
func (l *Ledger) Put(path string, e Entry) {
	l.Entries[path] = e
}

// Delete removes the entry for a resolved output path, if present.
func (l *Ledger) Delete(path string) {
	delete(l.Entries, path)
}

// Len returns the number of entries.
func (l *Ledger) Len() int {
	return len(l.Entries)
}

// Paths returns all recorded output paths in sorted order.
func (l *Ledger) Paths() []string {
	paths := make([]string, 0, len(l.Entries))
	for p := range l.Entries {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}

// PathsForComponent returns the recorded output paths produced by the named
// component, sorted. A component normally owns one path; more than one
// means earlier runs wrote under a filename that has since moved.
func (l *Ledger) PathsForComponent(name string) []string {
	var paths []string
	for p, e := range l.Entries {
		if e.Component == name {
			paths = append(paths, p)
		}
	}
	sort.Strings(paths)
	return paths
}

// Clone returns a deep copy of the ledger. The executor mutates a copy so
// a failed run never dirties the loaded state shared with the planner.
func (l *Ledger) Clone() *Ledger {
	out := New()
	for p, e := range l.Entries {
		out.Entries[p] = e
	}
	return out
}

// Save writes the ledger to path atomically: the JSON is written to a
// temporary file in the same directory and then renamed over the target, so
// a crash mid-write leaves the previous sidecar intact.
func (l *Ledger) Save(path string) error {
	data, err := json.MarshalIndent(l, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode ledger: %w", err)
	}
	data = append(data, '\n')

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create ledger directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp ledger file: %w", err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("failed to write temp ledger file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to close temp ledger file: %w", err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to replace ledger file: %w", err)
	}
	return nil
}
