package meshgen

import (
	gomath "math"

	"github.com/Faultbox/surface-orientation/pkg/math"
)

// Quad returns a unit square in the XY plane facing +Z, with texture
// coordinates equal to the XY position.
func Quad() *Mesh {
	return Grid(1, 1)
}

// Grid returns a cols x rows grid of unit cells in the XY plane facing +Z.
// Texture coordinates span [0,1] along X and Y.
func Grid(cols, rows int) *Mesh {
	m := &Mesh{Name: "grid"}
	if cols == 1 && rows == 1 {
		m.Name = "quad"
	}
	for y := 0; y <= rows; y++ {
		for x := 0; x <= cols; x++ {
			m.Vertices = append(m.Vertices, Vertex{
				Position: [3]float32{float32(x), float32(y), 0},
				Normal:   [3]float32{0, 0, 1},
				TexCoord: [2]float32{float32(x) / float32(cols), float32(y) / float32(rows)},
				Tangent:  [4]float32{1, 0, 0, 1},
			})
		}
	}
	m.Indices = gridIndices(cols, rows)
	m.updateBounds()
	return m
}

// Sphere returns a unit UV sphere centered at the origin. U runs around the
// Z axis and V from the south pole (v=0) to the north pole (v=1). The seam
// and the poles use duplicated vertices.
func Sphere(rings, segments int) *Mesh {
	m := &Mesh{Name: "sphere"}
	for i := 0; i <= rings; i++ {
		v := float64(i) / float64(rings)
		theta := v * gomath.Pi
		st, ct := gomath.Sincos(theta)
		for j := 0; j <= segments; j++ {
			u := float64(j) / float64(segments)
			phi := u * 2 * gomath.Pi
			sp, cp := gomath.Sincos(phi)

			p := [3]float32{float32(cp * st), float32(sp * st), float32(-ct)}
			m.Vertices = append(m.Vertices, Vertex{
				Position: p,
				Normal:   p,
				TexCoord: [2]float32{float32(u), float32(v)},
				Tangent:  [4]float32{float32(-sp), float32(cp), 0, 1},
			})
		}
	}
	m.Indices = gridIndices(segments, rings)
	m.updateBounds()
	return m
}

// Cube returns a unit cube centered at the origin with 4 vertices per face.
// With mirror set, every other face has its U coordinate flipped, which
// makes the texture mapping on those faces left-handed.
func Cube(mirror bool) *Mesh {
	faces := [6][2]math.Vec3{
		{{X: 1}, {Z: -1}},
		{{X: -1}, {Z: 1}},
		{{Y: 1}, {X: 1}},
		{{Y: -1}, {X: 1}},
		{{Z: 1}, {X: 1}},
		{{Z: -1}, {X: -1}},
	}

	m := &Mesh{Name: "cube"}
	for f, face := range faces {
		n, t := face[0], face[1]
		b := n.Cross(t)
		flip := mirror && f%2 == 1
		base := uint32(len(m.Vertices))

		for _, c := range [4][2]float32{{0, 0}, {1, 0}, {0, 1}, {1, 1}} {
			p := n.Scale(0.5).Add(t.Scale(c[0] - 0.5)).Add(b.Scale(c[1] - 0.5))
			uv := [2]float32{c[0], c[1]}
			tan := [4]float32{t.X, t.Y, t.Z, 1}
			if flip {
				uv[0] = 1 - uv[0]
				tan = [4]float32{-t.X, -t.Y, -t.Z, -1}
			}
			m.Vertices = append(m.Vertices, Vertex{
				Position: [3]float32{p.X, p.Y, p.Z},
				Normal:   [3]float32{n.X, n.Y, n.Z},
				TexCoord: uv,
				Tangent:  tan,
			})
		}
		m.Indices = append(m.Indices, base, base+1, base+2, base+1, base+3, base+2)
	}
	if mirror {
		m.Name = "cube-mirrored"
	}
	m.updateBounds()
	return m
}

// gridIndices triangulates a (cols+1) x (rows+1) vertex lattice stored row
// by row, counter-clockwise in parameter space.
func gridIndices(cols, rows int) []uint32 {
	indices := make([]uint32, 0, cols*rows*6)
	stride := uint32(cols + 1)
	for y := 0; y < rows; y++ {
		for x := 0; x < cols; x++ {
			a := uint32(y)*stride + uint32(x)
			b := a + 1
			c := a + stride
			d := c + 1
			indices = append(indices, a, b, c, b, d, c)
		}
	}
	return indices
}
