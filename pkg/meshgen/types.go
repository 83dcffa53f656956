// Package meshgen builds small procedural meshes with positions, normals,
// texture coordinates and analytic tangents, laid out as an interleaved
// vertex buffer.
package meshgen

import (
	"errors"
	"fmt"
	"unsafe"
)

// ErrTooManyVertices is returned when 16-bit indices are requested for a
// mesh with more than 65536 vertices.
var ErrTooManyVertices = errors.New("mesh has too many vertices for 16-bit indices")

// Vertex is one interleaved vertex. All fields are float32 so the struct has
// no padding and can be handed to a strided reader as raw bytes.
type Vertex struct {
	Position [3]float32
	Normal   [3]float32
	TexCoord [2]float32
	Tangent  [4]float32 // xyz direction, w = bitangent sign
}

// Byte offsets and stride of the interleaved layout.
var (
	VertexStride   = int(unsafe.Sizeof(Vertex{}))
	PositionOffset = int(unsafe.Offsetof(Vertex{}.Position))
	NormalOffset   = int(unsafe.Offsetof(Vertex{}.Normal))
	TexCoordOffset = int(unsafe.Offsetof(Vertex{}.TexCoord))
	TangentOffset  = int(unsafe.Offsetof(Vertex{}.Tangent))
)

// Mesh holds an indexed triangle mesh.
type Mesh struct {
	Name     string
	Vertices []Vertex
	Indices  []uint32
	Bounds   Bounds
}

// Bounds holds the axis-aligned bounding box of the mesh.
type Bounds struct {
	Min [3]float32
	Max [3]float32
}

// TriangleCount returns the number of triangles.
func (m *Mesh) TriangleCount() int {
	return len(m.Indices) / 3
}

// Bytes returns the vertex array as raw bytes. The slice aliases
// m.Vertices.
func (m *Mesh) Bytes() []byte {
	if len(m.Vertices) == 0 {
		return nil
	}
	return unsafe.Slice((*byte)(unsafe.Pointer(&m.Vertices[0])), len(m.Vertices)*VertexStride)
}

// Attribute returns the raw bytes starting at the given attribute offset,
// ready for a strided view with VertexStride.
func (m *Mesh) Attribute(offset int) []byte {
	data := m.Bytes()
	if data == nil {
		return nil
	}
	return data[offset:]
}

// Indices16 converts the index buffer to 16-bit indices.
func (m *Mesh) Indices16() ([]uint16, error) {
	if len(m.Vertices) > 1<<16 {
		return nil, fmt.Errorf("%w: %d", ErrTooManyVertices, len(m.Vertices))
	}
	out := make([]uint16, len(m.Indices))
	for i, idx := range m.Indices {
		out[i] = uint16(idx)
	}
	return out, nil
}

// Transform applies fn to every position and recomputes the bounds.
func (m *Mesh) Transform(fn func(p [3]float32) [3]float32) {
	for i := range m.Vertices {
		m.Vertices[i].Position = fn(m.Vertices[i].Position)
	}
	m.updateBounds()
}

// TransformUV applies fn to every texture coordinate.
func (m *Mesh) TransformUV(fn func(uv [2]float32) [2]float32) {
	for i := range m.Vertices {
		m.Vertices[i].TexCoord = fn(m.Vertices[i].TexCoord)
	}
}

func (m *Mesh) updateBounds() {
	m.Bounds = Bounds{
		Min: [3]float32{1e10, 1e10, 1e10},
		Max: [3]float32{-1e10, -1e10, -1e10},
	}
	for _, v := range m.Vertices {
		for i := 0; i < 3; i++ {
			m.Bounds.Min[i] = min(m.Bounds.Min[i], v.Position[i])
			m.Bounds.Max[i] = max(m.Bounds.Max[i], v.Position[i])
		}
	}
}
