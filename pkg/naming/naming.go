package naming

import (
	"fmt"
	"path"
	"strings"
)

// Normalize cleans a manifest "to" value into the canonical relative path
// used as a ledger key. Backslashes are folded to forward slashes and the
// path is lexically cleaned. Absolute paths and paths escaping the output
// directory are rejected.
func Normalize(to string) (string, error) {
	if strings.TrimSpace(to) == "" {
		return "", fmt.Errorf("output path is empty")
	}

	cleaned := path.Clean(strings.ReplaceAll(to, "\\", "/"))

	if path.IsAbs(cleaned) {
		return "", fmt.Errorf("output path %q must be relative", to)
	}
	if cleaned == ".." || strings.HasPrefix(cleaned, "../") {
		return "", fmt.Errorf("output path %q escapes the output directory", to)
	}
	if cleaned == "." {
		return "", fmt.Errorf("output path %q is empty after cleaning", to)
	}

	return cleaned, nil
}

// Filename derives the final filename for a normalized output path, export
// format, and effective copy count. If the path already carries the format
// as an extension it is stripped first, matching what users tend to write
// in hand-edited manifests. The count must be at least 1.
func Filename(to, format string, count int) (string, error) {
	normalized, err := Normalize(to)
	if err != nil {
		return "", err
	}
	if format == "" {
		return "", fmt.Errorf("export format is empty")
	}
	if count < 1 {
		return "", fmt.Errorf("copy count %d must be at least 1", count)
	}

	// Tolerate "case.stl" in a manifest that means "case".
	normalized = strings.TrimSuffix(normalized, "."+format)

	return fmt.Sprintf("%s_x%d.%s", normalized, count, format), nil
}

// CollisionChecker detects two manifest entries resolving to the same final
// filename. Claims are case-insensitive because the export folder may live
// on a case-insensitive filesystem.
type CollisionChecker struct {
	seen map[string]string
}

// NewCollisionChecker returns an empty checker.
func NewCollisionChecker() *CollisionChecker {
	return &CollisionChecker{seen: make(map[string]string)}
}

// Claim registers a filename for the named manifest entry. It returns an
// error if a different entry already claimed the same filename.
func (c *CollisionChecker) Claim(filename, owner string) error {
	key := strings.ToLower(filename)
	if prev, ok := c.seen[key]; ok {
		return fmt.Errorf("components %q and %q both resolve to %q", prev, owner, filename)
	}
	c.seen[key] = owner
	return nil
}
