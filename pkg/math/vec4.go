package math

// Vec4 is a 4D vector. Tangent inputs use XYZ for the direction and W for
// the bitangent sign.
type Vec4 struct {
	X, Y, Z, W float32
}

// XYZ returns the first three components.
func (v Vec4) XYZ() Vec3 {
	return Vec3{v.X, v.Y, v.Z}
}
