// Package math provides the small set of vector and matrix types used to
// build camera transforms.
package math

import (
	"errors"
	"math"
)

// DegenerateEpsilon is the smallest vector norm that can be normalized.
const DegenerateEpsilon = 1e-9

// ErrDegenerateGeometry is returned when a direction cannot be normalized,
// e.g. a look-at whose forward vector is parallel to the up vector.
var ErrDegenerateGeometry = errors.New("degenerate geometry")

// Vec3 is a 3D vector.
type Vec3 struct {
	X, Y, Z float64
}

// Add returns v + other.
func (v Vec3) Add(other Vec3) Vec3 {
	return Vec3{v.X + other.X, v.Y + other.Y, v.Z + other.Z}
}

// Sub returns v - other.
func (v Vec3) Sub(other Vec3) Vec3 {
	return Vec3{v.X - other.X, v.Y - other.Y, v.Z - other.Z}
}

// Scale returns v * scalar.
func (v Vec3) Scale(s float64) Vec3 {
	return Vec3{v.X * s, v.Y * s, v.Z * s}
}

// Neg returns -v.
func (v Vec3) Neg() Vec3 {
	return Vec3{-v.X, -v.Y, -v.Z}
}

// Dot returns the dot product.
func (v Vec3) Dot(other Vec3) float64 {
	return v.X*other.X + v.Y*other.Y + v.Z*other.Z
}

// Cross returns the cross product.
func (v Vec3) Cross(other Vec3) Vec3 {
	return Vec3{
		v.Y*other.Z - v.Z*other.Y,
		v.Z*other.X - v.X*other.Z,
		v.X*other.Y - v.Y*other.X,
	}
}

// Length returns the magnitude.
func (v Vec3) Length() float64 {
	return math.Sqrt(v.X*v.X + v.Y*v.Y + v.Z*v.Z)
}

// Normalize returns a unit vector.
// A zero vector stays zero; use Unit when that must be an error.
func (v Vec3) Normalize() Vec3 {
	l := v.Length()
	if l == 0 {
		return Vec3{}
	}
	return Vec3{v.X / l, v.Y / l, v.Z / l}
}

// Unit returns v scaled to unit length, or ErrDegenerateGeometry if its
// norm is below DegenerateEpsilon or not finite.
func (v Vec3) Unit() (Vec3, error) {
	l := v.Length()
	if l < DegenerateEpsilon || math.IsNaN(l) || math.IsInf(l, 0) {
		return Vec3{}, ErrDegenerateGeometry
	}
	return Vec3{v.X / l, v.Y / l, v.Z / l}, nil
}

// Distance returns the distance to another point.
func (v Vec3) Distance(other Vec3) float64 {
	return v.Sub(other).Length()
}
