package math

import "math"

// Vec2 is a 2D vector, used for texture coordinates.
type Vec2 struct {
	X, Y float32
}

// Sub returns v - other.
func (v Vec2) Sub(other Vec2) Vec2 {
	return Vec2{v.X - other.X, v.Y - other.Y}
}

// Cross returns the z component of the 3D cross product of v and other,
// i.e. the determinant of the 2x2 matrix [v other]. It is computed in
// float64 so tiny or huge coordinates keep their sign.
func (v Vec2) Cross(other Vec2) float64 {
	return float64(v.X)*float64(other.Y) - float64(other.X)*float64(v.Y)
}

// Length returns the magnitude, computed in float64.
func (v Vec2) Length() float32 {
	return float32(math.Hypot(float64(v.X), float64(v.Y)))
}
