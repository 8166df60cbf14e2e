// Package orient computes the axis-aligned reorientation applied to a
// component before export.
//
// A manifest entry names the axis in the source design that should point
// "up" in the exported mesh. The canonical up axis of an exported file is
// +Z, so the only rotations this package ever produces are the six rigid
// rotations that map a signed unit axis onto +Z. Rotation about the
// resulting up axis is always identity; there is no free parameter.
//
// Basic usage:
//
//	axis, err := orient.Parse("-y")
//	if err != nil { ... }
//	rot := orient.RotationTo(axis)
//	v := rot.Apply(orient.Vec3{0, -1, 0}) // (0, 0, 1)
package orient
