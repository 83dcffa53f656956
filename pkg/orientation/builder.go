// Package orientation computes per-vertex tangent frames (tangent,
// bitangent, normal) and packs each one into a unit quaternion for use as a
// compact vertex attribute in normal-mapped rendering.
//
// A Builder is configured with non-owning views over the caller's vertex
// and index memory, then Build reads them once and returns an Orientation
// that owns its output.
package orientation

import (
	"fmt"

	"go.uber.org/zap"
)

// Mode identifies which input combination a build used.
type Mode int

const (
	// ModeTangents takes the tangent and its sign directly from the input.
	ModeTangents Mode = iota + 1
	// ModeUVs derives tangents from texture coordinate gradients.
	ModeUVs
	// ModeNormals picks an arbitrary tangent orthogonal to each normal.
	// Not recommended: the tangent carries no surface direction, so
	// anisotropic detail cannot be mapped.
	ModeNormals
)

// String returns the mode name.
func (m Mode) String() string {
	switch m {
	case ModeTangents:
		return "tangents"
	case ModeUVs:
		return "uvs"
	case ModeNormals:
		return "normals"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// Builder holds the inputs of a surface orientation build.
//
// Setters overwrite their slot and never validate; all checks happen in
// Build. A Builder is not safe for concurrent use, but may be reused: each
// Build is a full computation from the current configuration.
type Builder struct {
	vertexCount   int
	normals       Buffer
	tangents      Buffer
	uvs           Buffer
	positions     Buffer
	triangleCount int
	indices       indexBuffer
	workers       int
	log           *zap.Logger
}

// NewBuilder returns an empty builder that logs nothing and runs on the
// calling goroutine.
func NewBuilder() *Builder {
	return &Builder{
		workers: 1,
		log:     zap.NewNop(),
	}
}

// VertexCount sets the number of vertices in every per-vertex buffer and in
// the output.
func (b *Builder) VertexCount(n int) *Builder {
	b.vertexCount = n
	return b
}

// Normals sets the per-vertex normals (3 floats). Required.
func (b *Builder) Normals(buf Buffer) *Builder {
	b.normals = buf
	return b
}

// Tangents sets per-vertex tangents (4 floats). W is +1 or -1 and selects
// the bitangent direction: bitangent = cross(normal, tangent) * w.
func (b *Builder) Tangents(buf Buffer) *Builder {
	b.tangents = buf
	return b
}

// UVs sets per-vertex texture coordinates (2 floats).
func (b *Builder) UVs(buf Buffer) *Builder {
	b.uvs = buf
	return b
}

// Positions sets per-vertex positions (3 floats).
func (b *Builder) Positions(buf Buffer) *Builder {
	b.positions = buf
	return b
}

// TriangleCount sets the number of triangles read from the index buffer.
func (b *Builder) TriangleCount(n int) *Builder {
	b.triangleCount = n
	return b
}

// Triangles16 sets a 16-bit index buffer, three indices per triangle.
// It replaces any previously set index buffer.
func (b *Builder) Triangles16(indices []uint16) *Builder {
	b.indices = indexBuffer{u16: indices, width: 16}
	return b
}

// Triangles32 sets a 32-bit index buffer, three indices per triangle.
// It replaces any previously set index buffer.
func (b *Builder) Triangles32(indices []uint32) *Builder {
	b.indices = indexBuffer{u32: indices, width: 32}
	return b
}

// Workers sets how many goroutines run the per-vertex passes. Values below 1
// mean 1. Output does not depend on the worker count.
func (b *Builder) Workers(n int) *Builder {
	if n < 1 {
		n = 1
	}
	b.workers = n
	return b
}

// Logger sets the logger used for build summaries. nil disables logging.
func (b *Builder) Logger(l *zap.Logger) *Builder {
	if l == nil {
		l = zap.NewNop()
	}
	b.log = l
	return b
}

// Build computes one quaternion per vertex. On any configuration problem it
// returns a nil Orientation and an error wrapping ErrConfiguration; there is
// no partial output.
func (b *Builder) Build() (*Orientation, error) {
	mode, err := b.resolve()
	if err != nil {
		b.log.Debug("surface orientation rejected", zap.Error(err))
		return nil, err
	}

	c := newComputation(b, mode)
	if err := c.run(); err != nil {
		b.log.Debug("surface orientation failed", zap.Stringer("mode", mode), zap.Error(err))
		return nil, err
	}

	b.log.Debug("surface orientation built",
		zap.Stringer("mode", mode),
		zap.Int("vertices", b.vertexCount),
		zap.Int("triangles", c.triangles()),
		zap.Int("degenerate_triangles", c.stats.DegenerateTriangles),
		zap.Int("fallback_vertices", c.stats.FallbackVertices),
		zap.Int("workers", b.workers),
	)

	return &Orientation{
		mode:  mode,
		quats: c.out,
		stats: c.stats,
	}, nil
}

// resolve picks the mode and validates every input it will read.
func (b *Builder) resolve() (Mode, error) {
	if b.vertexCount <= 0 {
		return 0, ErrNoVertexCount
	}
	if !b.normals.IsSet() {
		return 0, ErrNoNormals
	}
	if err := b.normals.check("normals", b.vertexCount, float3Size); err != nil {
		return 0, err
	}

	if b.tangents.IsSet() {
		if err := b.tangents.check("tangents", b.vertexCount, float4Size); err != nil {
			return 0, err
		}
		return ModeTangents, nil
	}

	hasUVs, hasPositions, hasIndices := b.uvs.IsSet(), b.positions.IsSet(), b.indices.width != 0
	switch {
	case hasUVs && hasPositions && hasIndices:
		if err := b.uvs.check("uvs", b.vertexCount, float2Size); err != nil {
			return 0, err
		}
		if err := b.positions.check("positions", b.vertexCount, float3Size); err != nil {
			return 0, err
		}
		if err := b.checkIndices(); err != nil {
			return 0, err
		}
		return ModeUVs, nil
	case !hasUVs && !hasPositions && !hasIndices:
		return ModeNormals, nil
	default:
		return 0, fmt.Errorf("%w: uvs=%t positions=%t indices=%t (need all three, or none)",
			ErrIncompleteInputs, hasUVs, hasPositions, hasIndices)
	}
}

func (b *Builder) checkIndices() error {
	if b.triangleCount <= 0 {
		return fmt.Errorf("%w: %d", ErrTriangleCount, b.triangleCount)
	}
	n := b.triangleCount * 3
	if b.indices.len() < n {
		return fmt.Errorf("%w: %d triangles need %d indices, have %d",
			ErrTriangleCount, b.triangleCount, n, b.indices.len())
	}
	for i := 0; i < n; i++ {
		if idx := b.indices.at(i); int(idx) >= b.vertexCount {
			return fmt.Errorf("%w: index %d at position %d, vertex count %d",
				ErrIndexOutOfRange, idx, i, b.vertexCount)
		}
	}
	return nil
}

// indexBuffer holds either 16- or 32-bit indices.
type indexBuffer struct {
	u16   []uint16
	u32   []uint32
	width int
}

func (x indexBuffer) len() int {
	if x.width == 16 {
		return len(x.u16)
	}
	return len(x.u32)
}

func (x indexBuffer) at(i int) uint32 {
	if x.width == 16 {
		return uint32(x.u16[i])
	}
	return x.u32[i]
}
