package host

import (
	"errors"
	"fmt"
	"sort"
)

// ComponentState is the captured design state for one component.
type ComponentState struct {
	// Ref is the host handle used for the eventual export call.
	Ref ComponentRef

	// Fingerprint is the opaque geometry modification token.
	Fingerprint string

	// InstanceCount is the occurrence count in the active design.
	InstanceCount int
}

// Snapshot is a read-only view of the design state taken at the start of a
// run. The engine plans against the snapshot, never against the live host,
// so every planning decision is reproducible.
type Snapshot struct {
	documentVersion string
	components      map[string]ComponentState
}

// Take captures the state of the named components from the host. Components
// the host cannot resolve are simply absent from the snapshot; the planner
// reports them as per-component warnings. Any other host error aborts the
// capture.
func Take(h Host, names []string) (*Snapshot, error) {
	snap := &Snapshot{
		documentVersion: h.DocumentVersion(),
		components:      make(map[string]ComponentState, len(names)),
	}

	for _, name := range names {
		ref, err := h.ResolveComponent(name)
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				continue
			}
			return nil, fmt.Errorf("failed to resolve component %q: %w", name, err)
		}

		fingerprint, err := h.Fingerprint(ref)
		if err != nil {
			return nil, fmt.Errorf("failed to read fingerprint of %q: %w", name, err)
		}
		count, err := h.InstanceCount(ref)
		if err != nil {
			return nil, fmt.Errorf("failed to read instance count of %q: %w", name, err)
		}

		snap.components[name] = ComponentState{
			Ref:           ref,
			Fingerprint:   fingerprint,
			InstanceCount: count,
		}
	}

	return snap, nil
}

// DocumentVersion returns the opaque document version token captured with
// the snapshot.
func (s *Snapshot) DocumentVersion() string {
	return s.documentVersion
}

// Component returns the captured state for a component name.
func (s *Snapshot) Component(name string) (ComponentState, bool) {
	st, ok := s.components[name]
	return st, ok
}

// Names returns the captured component names, sorted.
func (s *Snapshot) Names() []string {
	names := make([]string, 0, len(s.components))
	for n := range s.components {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
