// Package math provides the small float32 vector, quaternion and matrix
// types used to build and decode tangent frames.
package math

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// Vec3 is a 3D vector.
type Vec3 struct {
	X, Y, Z float32
}

// Unit axes.
var (
	AxisX = Vec3{1, 0, 0}
	AxisY = Vec3{0, 1, 0}
	AxisZ = Vec3{0, 0, 1}
)

// Add returns v + other.
func (v Vec3) Add(other Vec3) Vec3 {
	return Vec3{v.X + other.X, v.Y + other.Y, v.Z + other.Z}
}

// Sub returns v - other.
func (v Vec3) Sub(other Vec3) Vec3 {
	return Vec3{v.X - other.X, v.Y - other.Y, v.Z - other.Z}
}

// Scale returns v * scalar.
func (v Vec3) Scale(s float32) Vec3 {
	return Vec3{v.X * s, v.Y * s, v.Z * s}
}

// Neg returns -v.
func (v Vec3) Neg() Vec3 {
	return Vec3{-v.X, -v.Y, -v.Z}
}

// Dot returns the dot product.
func (v Vec3) Dot(other Vec3) float32 {
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

// LengthSq returns the squared magnitude. It overflows for components
// beyond about 1e19; use Length when the scale is unknown.
func (v Vec3) LengthSq() float32 {
	return v.X*v.X + v.Y*v.Y + v.Z*v.Z
}

// Length returns the magnitude, accumulated in float64 so every finite
// vector has a finite, non-zero length unless it is zero.
func (v Vec3) Length() float32 {
	return float32(v.length64())
}

func (v Vec3) length64() float64 {
	x, y, z := float64(v.X), float64(v.Y), float64(v.Z)
	return math.Sqrt(x*x + y*y + z*z)
}

// Normalize returns a unit vector, or the zero vector if v has no length.
func (v Vec3) Normalize() Vec3 {
	l := v.length64()
	if l == 0 {
		return Vec3{}
	}
	return Vec3{float32(float64(v.X) / l), float32(float64(v.Y) / l), float32(float64(v.Z) / l)}
}

// Reject returns v with its component along the unit vector n removed.
func (v Vec3) Reject(n Vec3) Vec3 {
	return v.Sub(n.Scale(n.Dot(v)))
}

// LeastAlignedAxis returns the world axis with the smallest absolute
// projection onto v. Ties prefer X, then Y.
func (v Vec3) LeastAlignedAxis() Vec3 {
	ax, ay, az := abs32(v.X), abs32(v.Y), abs32(v.Z)
	switch {
	case ax <= ay && ax <= az:
		return AxisX
	case ay <= az:
		return AxisY
	default:
		return AxisZ
	}
}

// IsFinite reports whether every component is neither NaN nor infinite.
func (v Vec3) IsFinite() bool {
	return isFinite(v.X) && isFinite(v.Y) && isFinite(v.Z)
}

// R3 converts v to a float64 gonum vector.
func (v Vec3) R3() r3.Vec {
	return r3.Vec{X: float64(v.X), Y: float64(v.Y), Z: float64(v.Z)}
}

// Vec3FromR3 converts a gonum vector to float32.
func Vec3FromR3(v r3.Vec) Vec3 {
	return Vec3{float32(v.X), float32(v.Y), float32(v.Z)}
}

func abs32(f float32) float32 {
	if f < 0 {
		return -f
	}
	return f
}

func isFinite(f float32) bool {
	return !math.IsNaN(float64(f)) && !math.IsInf(float64(f), 0)
}
