package meshgen

import (
	"github.com/Faultbox/surface-orientation/pkg/orientation"
)

// Inputs selects which attributes of a mesh are handed to a builder.
type Inputs struct {
	// Mode picks the attribute set: tangents, uvs (with positions and
	// indices) or normals only.
	Mode orientation.Mode
	// Auto hands over every attribute and leaves the choice of mode to
	// Build. Mode is ignored.
	Auto bool
	// Index16 uses 16-bit indices instead of 32-bit.
	Index16 bool
}

// Builder returns an orientation builder reading m's interleaved vertex
// buffer. The builder aliases m; m must not change until Build returns.
func (m *Mesh) Builder(in Inputs) (*orientation.Builder, error) {
	b := orientation.NewBuilder().
		VertexCount(len(m.Vertices)).
		Normals(orientation.Bytes(m.Attribute(NormalOffset), VertexStride))

	if in.Auto || in.Mode == orientation.ModeTangents {
		b.Tangents(orientation.Bytes(m.Attribute(TangentOffset), VertexStride))
	}
	if in.Auto || in.Mode == orientation.ModeUVs {
		b.UVs(orientation.Bytes(m.Attribute(TexCoordOffset), VertexStride)).
			Positions(orientation.Bytes(m.Attribute(PositionOffset), VertexStride)).
			TriangleCount(m.TriangleCount())
		if in.Index16 {
			idx, err := m.Indices16()
			if err != nil {
				return nil, err
			}
			b.Triangles16(idx)
		} else {
			b.Triangles32(m.Indices)
		}
	}
	return b, nil
}
