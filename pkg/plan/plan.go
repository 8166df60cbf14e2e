package plan

import (
	"fmt"

	"partworks/meshport/pkg/host"
	"partworks/meshport/pkg/ledger"
	"partworks/meshport/pkg/manifest"
	"partworks/meshport/pkg/naming"
	"partworks/meshport/pkg/orient"
)

// Reason explains why an action was planned.
type Reason string

const (
	// ReasonNew means the ledger has no entry for the resolved path and no
	// earlier path for the component either.
	ReasonNew Reason = "new-file"

	// ReasonChanged means the live fingerprint differs from the recorded one.
	ReasonChanged Reason = "fingerprint-changed"

	// ReasonRenamed means the resolved filename moved (the copy count
	// changed), so the file must be written under its new name even if the
	// geometry is unchanged.
	ReasonRenamed Reason = "filename-moved"
)

// WarningKind classifies per-component warnings.
type WarningKind string

const (
	// WarnComponentNotFound means a manifest entry names a component the
	// live design does not contain.
	WarnComponentNotFound WarningKind = "component-not-found"

	// WarnStaleFile means an earlier run recorded a file for this component
	// under a filename that is no longer current. The engine never deletes
	// the old file; the warning is the user's cue to clean it up.
	WarnStaleFile WarningKind = "stale-file"

	// WarnNotPlaced means the component exists in the design but has no
	// placed instances, so there is no count to name a file with.
	WarnNotPlaced WarningKind = "component-not-placed"
)

// Warning is a non-fatal, per-component planning observation.
type Warning struct {
	// Component is the manifest component name the warning concerns.
	Component string

	// Kind classifies the warning.
	Kind WarningKind

	// Message is the human-readable description.
	Message string
}

// Action is one planned export: ephemeral, created here, consumed by the
// executor, never persisted.
type Action struct {
	// Component is the design component name.
	Component string

	// Ref is the host handle captured in the snapshot.
	Ref host.ComponentRef

	// Path is the resolved output path relative to the export folder. It is
	// also the ledger key committed on success.
	Path string

	// Rotation maps the requested up axis onto the canonical +Z axis.
	Rotation orient.Matrix

	// Format is the export format tag passed to the host.
	Format string

	// Fingerprint is the live geometry token that will be committed to the
	// ledger if the action succeeds.
	Fingerprint string

	// InstanceCount is the effective copy count used in the filename.
	InstanceCount int

	// Reason records why the action was planned.
	Reason Reason
}

// Build produces the ordered export plan for the given specs against the
// snapshot and ledger. Actions come out in spec order (stable and
// deterministic, for a reviewable on-disk diff). The returned error is
// configuration-class and fatal: it means two entries resolve to the same
// final filename, detected before any action is emitted.
func Build(specs []manifest.Spec, snap *host.Snapshot, led *ledger.Ledger) ([]Action, []Warning, error) {
	type resolved struct {
		spec     manifest.Spec
		state    host.ComponentState
		path     string
		found    bool
		unplaced bool
	}

	// First pass: resolve filenames for every spec so collisions are fatal
	// before any action exists, even when one of the colliding components
	// is currently up to date. currentPaths collects every path a component
	// resolves to in this run; a component may legally appear in several
	// specs as long as their paths differ.
	collisions := naming.NewCollisionChecker()
	items := make([]resolved, 0, len(specs))
	currentPaths := make(map[string]map[string]bool)

	for _, spec := range specs {
		item := resolved{spec: spec}

		state, ok := snap.Component(spec.Name)
		if ok {
			item.found = true
			item.state = state

			count := spec.Count
			if count == 0 {
				count = state.InstanceCount
			}
			if count < 1 {
				// The component exists but has no placed instances. A real
				// host can report this; it isolates to a warning like any
				// other per-component condition.
				item.unplaced = true
				items = append(items, item)
				continue
			}

			path, err := naming.Filename(spec.To, spec.Format, count)
			if err != nil {
				return nil, nil, fmt.Errorf("component %q: %w", spec.Name, err)
			}
			item.path = path

			if err := collisions.Claim(path, spec.Name); err != nil {
				return nil, nil, fmt.Errorf("filename collision: %w", err)
			}

			if currentPaths[spec.Name] == nil {
				currentPaths[spec.Name] = make(map[string]bool)
			}
			currentPaths[spec.Name][path] = true
		}

		items = append(items, item)
	}

	// Second pass: decide export-vs-skip per spec, in spec order.
	var actions []Action
	var warnings []Warning
	staleChecked := make(map[string]bool)

	for _, item := range items {
		spec := item.spec

		if !item.found {
			warnings = append(warnings, Warning{
				Component: spec.Name,
				Kind:      WarnComponentNotFound,
				Message:   fmt.Sprintf("component %q not found in design; skipping", spec.Name),
			})
			continue
		}

		if item.unplaced {
			warnings = append(warnings, Warning{
				Component: spec.Name,
				Kind:      WarnNotPlaced,
				Message:   fmt.Sprintf("component %q has no placed instances; skipping", spec.Name),
			})
			continue
		}

		// Ledger paths for this component that no spec resolves to anymore
		// are stale: surface them once per component, never delete them. A
		// path written by another spec of the same component is current,
		// not stale.
		movedAway := false
		for _, old := range led.PathsForComponent(spec.Name) {
			if !currentPaths[spec.Name][old] {
				movedAway = true
				if !staleChecked[spec.Name] {
					warnings = append(warnings, Warning{
						Component: spec.Name,
						Kind:      WarnStaleFile,
						Message:   fmt.Sprintf("previously exported %q is no longer written by %q; consider removing it", old, spec.Name),
					})
				}
			}
		}
		staleChecked[spec.Name] = true

		reason := ReasonNew
		if entry, ok := led.Get(item.path); ok {
			if entry.Fingerprint == item.state.Fingerprint {
				// Unchanged since the last recorded export.
				continue
			}
			reason = ReasonChanged
		} else if movedAway {
			reason = ReasonRenamed
		}

		count := spec.Count
		if count == 0 {
			count = item.state.InstanceCount
		}

		actions = append(actions, Action{
			Component:     spec.Name,
			Ref:           item.state.Ref,
			Path:          item.path,
			Rotation:      orient.RotationTo(spec.Up),
			Format:        spec.Format,
			Fingerprint:   item.state.Fingerprint,
			InstanceCount: count,
			Reason:        reason,
		})
	}

	return actions, warnings, nil
}
