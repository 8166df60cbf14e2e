package manifest

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"

	"partworks/meshport/pkg/orient"
)

// Version is the manifest schema version this engine understands.
const Version = 1

// DefaultFilename is the manifest file name commands look for when --manifest
// is not given.
const DefaultFilename = "meshexport.json"

// DefaultFormat is the document-level export format used when the manifest
// does not name one.
const DefaultFormat = "stl"

// supportedFormats lists the export formats the engine can ask the host to
// produce.
var supportedFormats = map[string]bool{
	"stl": true,
}

// Manifest is the raw on-disk shape of the export manifest.
type Manifest struct {
	// SchemaVersion is the "v" field; it must equal Version.
	SchemaVersion int `json:"v"`

	// Format is the default export format for all components.
	Format string `json:"fmt,omitempty"`

	// Components lists the export targets.
	Components []Component `json:"components"`
}

// Component is one configured export target as written in the manifest.
type Component struct {
	// Name is the lookup key into the design.
	Name string `json:"name"`

	// To is the relative output path without extension.
	To string `json:"to"`

	// Up is the source axis that should point up in the export.
	Up string `json:"up,omitempty"`

	// Format overrides the document-level format.
	Format string `json:"fmt,omitempty"`

	// Count is an explicit copy count. When nil the count is derived from
	// the component's instance count in the live design.
	Count *int `json:"count,omitempty"`
}

// Spec is a validated export target with all optional fields resolved.
type Spec struct {
	// Name is the component lookup key into the design.
	Name string

	// To is the normalized relative output path without extension.
	To string

	// Up is the parsed up axis.
	Up orient.Axis

	// Format is the resolved export format.
	Format string

	// Count is the explicit copy count, or 0 when the count should be
	// derived from the live instance count.
	Count int
}

// Load reads and parses a manifest file. It does not validate; call
// Resolve on the result to obtain validated Specs.
func Load(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest %q: %w", path, err)
	}
	return Parse(data)
}

// Parse parses manifest JSON.
func Parse(data []byte) (*Manifest, error) {
	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("failed to parse manifest: %w", err)
	}
	return &m, nil
}

// Resolve validates the manifest and returns the validated Specs in
// manifest order with defaults applied. All validation errors are collected
// into a single ValidationError.
func (m *Manifest) Resolve() ([]Spec, error) {
	var errs []FieldError

	if m.SchemaVersion != Version {
		errs = append(errs, FieldError{
			Field:   "v",
			Message: fmt.Sprintf("unsupported manifest version %d (supported: %d)", m.SchemaVersion, Version),
		})
	}

	docFormat := m.Format
	if docFormat == "" {
		docFormat = DefaultFormat
	}
	if !supportedFormats[docFormat] {
		errs = append(errs, FieldError{
			Field:   "fmt",
			Message: fmt.Sprintf("unsupported export format %q", docFormat),
		})
	}

	if len(m.Components) == 0 {
		errs = append(errs, FieldError{
			Field:   "components",
			Message: "at least one component is required",
		})
	}

	specs := make([]Spec, 0, len(m.Components))
	seenTo := make(map[string]int)

	for i, c := range m.Components {
		field := func(name string) string {
			return fmt.Sprintf("components[%d].%s", i, name)
		}

		spec := Spec{Name: c.Name, Format: docFormat, Up: orient.AxisZ}

		if strings.TrimSpace(c.Name) == "" {
			errs = append(errs, FieldError{Field: field("name"), Message: "component name is required"})
		}

		to, err := normalizeTo(c.To)
		if err != nil {
			errs = append(errs, FieldError{Field: field("to"), Message: err.Error()})
		} else {
			spec.To = to
			if prev, dup := seenTo[to]; dup {
				errs = append(errs, FieldError{
					Field:   field("to"),
					Message: fmt.Sprintf("output path %q already used by components[%d]", to, prev),
				})
			} else {
				seenTo[to] = i
			}
		}

		if c.Up != "" {
			axis, err := orient.Parse(c.Up)
			if err != nil {
				errs = append(errs, FieldError{Field: field("up"), Message: err.Error()})
			} else {
				spec.Up = axis
			}
		}

		if c.Format != "" {
			if !supportedFormats[c.Format] {
				errs = append(errs, FieldError{
					Field:   field("fmt"),
					Message: fmt.Sprintf("unsupported export format %q", c.Format),
				})
			} else {
				spec.Format = c.Format
			}
		}

		if c.Count != nil {
			if *c.Count < 1 {
				errs = append(errs, FieldError{
					Field:   field("count"),
					Message: fmt.Sprintf("count %d must be at least 1", *c.Count),
				})
			} else {
				spec.Count = *c.Count
			}
		}

		specs = append(specs, spec)
	}

	if len(errs) > 0 {
		return nil, ValidationError{Errors: errs}
	}
	return specs, nil
}

// Generate creates a starter manifest covering the given component names,
// sorted for a stable on-disk diff. Output paths are derived from the
// component names.
func Generate(names []string) *Manifest {
	sorted := make([]string, len(names))
	copy(sorted, names)
	sort.Strings(sorted)

	components := make([]Component, 0, len(sorted))
	for _, name := range sorted {
		components = append(components, Component{
			Name: name,
			To:   slugify(name),
		})
	}

	return &Manifest{
		SchemaVersion: Version,
		Format:        DefaultFormat,
		Components:    components,
	}
}

// Save writes the manifest as indented JSON.
func (m *Manifest) Save(path string) error {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode manifest: %w", err)
	}
	data = append(data, '\n')
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write manifest %q: %w", path, err)
	}
	return nil
}

// slugify turns a component name into a filesystem-friendly output path.
func slugify(name string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(name)), " ", "_")
}
