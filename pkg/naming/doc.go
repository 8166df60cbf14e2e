// Package naming derives final on-disk mesh filenames from manifest entries.
//
// A manifest entry's "to" field is a relative path without extension. The
// final filename appends the effective copy count and the export format:
//
//	to="parts/bracket", fmt="stl", count=3  ->  "parts/bracket_x3.stl"
//
// The count suffix always reflects the literal count at plan time. When the
// count changes between runs the filename changes with it, orphaning the
// previously exported file; this package only computes the current name and
// never deletes orphans.
package naming
