package orient

import "fmt"

// Axis identifies one of the six signed unit axes of the design space.
type Axis string

const (
	// AxisX is the positive X axis.
	AxisX Axis = "x"
	// AxisY is the positive Y axis.
	AxisY Axis = "y"
	// AxisZ is the positive Z axis. This is the canonical up axis of an
	// exported mesh, so its rotation is the identity.
	AxisZ Axis = "z"
	// AxisNegX is the negative X axis.
	AxisNegX Axis = "-x"
	// AxisNegY is the negative Y axis.
	AxisNegY Axis = "-y"
	// AxisNegZ is the negative Z axis.
	AxisNegZ Axis = "-z"
)

// Axes lists all supported axis tokens in a stable order.
var Axes = []Axis{AxisX, AxisY, AxisZ, AxisNegX, AxisNegY, AxisNegZ}

// Parse converts a manifest axis token into an Axis. The six bare tokens
// ("x", "y", "z", "-x", "-y", "-z") are accepted, as are the explicit
// positive forms "+x", "+y", "+z". Any other token is an error.
func Parse(token string) (Axis, error) {
	switch token {
	case "x", "+x":
		return AxisX, nil
	case "y", "+y":
		return AxisY, nil
	case "z", "+z":
		return AxisZ, nil
	case "-x":
		return AxisNegX, nil
	case "-y":
		return AxisNegY, nil
	case "-z":
		return AxisNegZ, nil
	default:
		return "", fmt.Errorf("unknown up axis %q (expected one of x, y, z, -x, -y, -z)", token)
	}
}

// Vec3 is a vector in design space.
type Vec3 [3]float64

// Vector returns the unit vector for the axis.
func (a Axis) Vector() Vec3 {
	switch a {
	case AxisX:
		return Vec3{1, 0, 0}
	case AxisY:
		return Vec3{0, 1, 0}
	case AxisZ:
		return Vec3{0, 0, 1}
	case AxisNegX:
		return Vec3{-1, 0, 0}
	case AxisNegY:
		return Vec3{0, -1, 0}
	case AxisNegZ:
		return Vec3{0, 0, -1}
	}
	return Vec3{}
}

// Matrix is a 3x3 rotation matrix in row-major order.
type Matrix [3][3]float64

// Identity returns the identity rotation.
func Identity() Matrix {
	return Matrix{
		{1, 0, 0},
		{0, 1, 0},
		{0, 0, 1},
	}
}

// rotations maps each axis onto the fixed rigid rotation that takes it to
// +Z. Every entry is a single 90 or 180 degree rotation about one of the
// axes orthogonal to the (axis, +Z) pair, so the matrices are orthonormal
// with determinant +1.
var rotations = map[Axis]Matrix{
	AxisZ: Identity(),
	// 180 degrees about X.
	AxisNegZ: {
		{1, 0, 0},
		{0, -1, 0},
		{0, 0, -1},
	},
	// -90 degrees about Y.
	AxisX: {
		{0, 0, -1},
		{0, 1, 0},
		{1, 0, 0},
	},
	// +90 degrees about Y.
	AxisNegX: {
		{0, 0, 1},
		{0, 1, 0},
		{-1, 0, 0},
	},
	// +90 degrees about X.
	AxisY: {
		{1, 0, 0},
		{0, 0, -1},
		{0, 1, 0},
	},
	// -90 degrees about X.
	AxisNegY: {
		{1, 0, 0},
		{0, 0, 1},
		{0, -1, 0},
	},
}

// RotationTo returns the rotation that maps the given up axis onto the
// canonical +Z output axis. The result is always one of six fixed
// orthonormal matrices; RotationTo is a pure function.
func RotationTo(up Axis) Matrix {
	rot, ok := rotations[up]
	if !ok {
		// Unknown axes are rejected at parse time; fall back to identity
		// rather than panic if a zero Axis slips through.
		return Identity()
	}
	return rot
}

// Apply multiplies the matrix with a vector.
func (m Matrix) Apply(v Vec3) Vec3 {
	var out Vec3
	for i := 0; i < 3; i++ {
		out[i] = m[i][0]*v[0] + m[i][1]*v[1] + m[i][2]*v[2]
	}
	return out
}

// Transpose returns the transposed matrix. For a rotation matrix the
// transpose is also its inverse.
func (m Matrix) Transpose() Matrix {
	var out Matrix
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			out[i][j] = m[j][i]
		}
	}
	return out
}

// Mul returns the matrix product m * other.
func (m Matrix) Mul(other Matrix) Matrix {
	var out Matrix
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			for k := 0; k < 3; k++ {
				out[i][j] += m[i][k] * other[k][j]
			}
		}
	}
	return out
}

// IsIdentity reports whether the matrix is the identity rotation.
func (m Matrix) IsIdentity() bool {
	return m == Identity()
}
