package math

// Mat3 is a 3x3 matrix in column-major order, matching Mat4's layout in the
// renderer.
// Layout: [m0 m3 m6]
//
//	[m1 m4 m7]
//	[m2 m5 m8]
type Mat3 [9]float32

// Mat3Identity returns an identity matrix.
func Mat3Identity() Mat3 {
	return Mat3{
		1, 0, 0,
		0, 1, 0,
		0, 0, 1,
	}
}

// Mat3FromColumns builds a matrix whose columns are x, y and z.
// A tangent frame is stored as (tangent, bitangent, normal).
func Mat3FromColumns(x, y, z Vec3) Mat3 {
	return Mat3{
		x.X, x.Y, x.Z,
		y.X, y.Y, y.Z,
		z.X, z.Y, z.Z,
	}
}

// Col returns column i (0, 1 or 2).
func (m Mat3) Col(i int) Vec3 {
	return Vec3{m[i*3], m[i*3+1], m[i*3+2]}
}

// At returns the element at row r, column c.
func (m Mat3) At(r, c int) float32 {
	return m[c*3+r]
}

// Determinant returns the determinant. It is +1 for a rotation and -1 for a
// reflection.
func (m Mat3) Determinant() float32 {
	return m.Col(0).Cross(m.Col(1)).Dot(m.Col(2))
}

// MulVec returns m * v.
func (m Mat3) MulVec(v Vec3) Vec3 {
	return m.Col(0).Scale(v.X).Add(m.Col(1).Scale(v.Y)).Add(m.Col(2).Scale(v.Z))
}
