package manifest

import (
	"fmt"
	"strings"

	"partworks/meshport/pkg/naming"
)

// FieldError represents a validation error for a specific manifest field.
type FieldError struct {
	// Field is the dotted path to the manifest field (e.g., "components[2].up").
	Field string

	// Message is a human-readable error message.
	Message string
}

// Error returns the error message for this field error.
func (e FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationError represents one or more validation errors in a manifest.
// It implements the error interface and provides access to all field errors.
type ValidationError struct {
	// Errors contains all validation errors found in the manifest.
	Errors []FieldError
}

// Error returns a formatted string containing all validation errors.
func (e ValidationError) Error() string {
	if len(e.Errors) == 0 {
		return "manifest validation failed"
	}
	if len(e.Errors) == 1 {
		return fmt.Sprintf("manifest validation failed: %s", e.Errors[0].Error())
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("manifest validation failed with %d errors:\n", len(e.Errors)))
	for _, err := range e.Errors {
		sb.WriteString(fmt.Sprintf("  - %s\n", err.Error()))
	}
	return sb.String()
}

// normalizeTo validates and normalizes a component's output path.
func normalizeTo(to string) (string, error) {
	return naming.Normalize(to)
}
