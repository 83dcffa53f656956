package orientation_test

import (
	gomath "math"
	"math/rand/v2"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
	"gonum.org/v1/gonum/num/quat"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/Faultbox/surface-orientation/pkg/math"
	"github.com/Faultbox/surface-orientation/pkg/meshgen"
	"github.com/Faultbox/surface-orientation/pkg/orientation"
)

const (
	axisTolerance  = 1e-4
	orthoTolerance = 1e-5
)

func build(t *testing.T, m *meshgen.Mesh, in meshgen.Inputs) *orientation.Orientation {
	t.Helper()
	b, err := m.Builder(in)
	require.NoError(t, err)
	o, err := b.Build()
	require.NoError(t, err)
	require.NotNil(t, o)
	return o
}

func assertVec(t *testing.T, want, got math.Vec3, tol float64, msgAndArgs ...any) {
	t.Helper()
	assert.InDelta(t, want.X, got.X, tol, msgAndArgs...)
	assert.InDelta(t, want.Y, got.Y, tol, msgAndArgs...)
	assert.InDelta(t, want.Z, got.Z, tol, msgAndArgs...)
}

// assertOrthonormal checks a decoded frame in float64.
func assertOrthonormal(t *testing.T, f orientation.Frame, msgAndArgs ...any) {
	t.Helper()
	tv, bv, nv := f.Tangent.R3(), f.Bitangent.R3(), f.Normal.R3()
	for _, v := range []r3.Vec{tv, bv, nv} {
		assert.InDelta(t, 1, r3.Norm(v), orthoTolerance, msgAndArgs...)
	}
	assert.InDelta(t, 0, r3.Dot(tv, bv), orthoTolerance, msgAndArgs...)
	assert.InDelta(t, 0, r3.Dot(tv, nv), orthoTolerance, msgAndArgs...)
	assert.InDelta(t, 0, r3.Dot(bv, nv), orthoTolerance, msgAndArgs...)
}

func TestQuadFromUVsIsIdentity(t *testing.T) {
	o := build(t, meshgen.Quad(), meshgen.Inputs{Mode: orientation.ModeUVs})

	assert.Equal(t, orientation.ModeUVs, o.Mode())
	require.Equal(t, 4, o.VertexCount())
	for i := 0; i < o.VertexCount(); i++ {
		q := o.Quat(i)
		assert.InDelta(t, 0, q.X, axisTolerance, "vertex %d", i)
		assert.InDelta(t, 0, q.Y, axisTolerance, "vertex %d", i)
		assert.InDelta(t, 0, q.Z, axisTolerance, "vertex %d", i)
		assert.InDelta(t, 1, q.W, axisTolerance, "vertex %d", i)

		f := o.Frame(i)
		assertVec(t, math.AxisX, f.Tangent, axisTolerance, "vertex %d tangent", i)
		assertVec(t, math.AxisY, f.Bitangent, axisTolerance, "vertex %d bitangent", i)
		assertVec(t, math.AxisZ, f.Normal, axisTolerance, "vertex %d normal", i)
	}
	assert.Equal(t, orientation.Stats{}, o.Stats())
}

func TestTangentHandedness(t *testing.T) {
	tests := []struct {
		name          string
		w             float32
		wantBitangent math.Vec3
	}{
		{"right handed", 1, math.Vec3{Y: 1}},
		{"mirrored", -1, math.Vec3{Y: -1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o, err := orientation.NewBuilder().
				VertexCount(1).
				Normals(orientation.Float32s([]float32{0, 0, 1}, 0)).
				Tangents(orientation.Float32s([]float32{1, 0, 0, tt.w}, 0)).
				Build()
			require.NoError(t, err)

			f := o.Frame(0)
			assertVec(t, tt.wantBitangent, f.Bitangent, axisTolerance)
			assertVec(t, math.AxisX, f.Tangent, axisTolerance)
			assertVec(t, math.AxisZ, f.Normal, axisTolerance)
			assert.Equal(t, tt.w < 0, f.Reflected())
		})
	}
}

func randomUnit(r *rand.Rand) math.Vec3 {
	for {
		v := math.Vec3{
			X: float32(r.Float64()*2 - 1),
			Y: float32(r.Float64()*2 - 1),
			Z: float32(r.Float64()*2 - 1),
		}
		if l := v.Length(); l > 0.1 && l <= 1 {
			return v.Normalize()
		}
	}
}

func TestTangentsModeReconstructsInput(t *testing.T) {
	r := rand.New(rand.NewPCG(7, 11))
	const count = 500

	normals := make([]float32, 0, count*3)
	tangents := make([]float32, 0, count*4)
	for len(normals) < count*3 {
		n := randomUnit(r)
		tan := randomUnit(r).Scale(float32(0.5 + r.Float64()*3))
		// keep the tangent well away from the normal
		if tan.Reject(n).Length() < 0.2*tan.Length() {
			continue
		}
		w := float32(1)
		if r.IntN(2) == 0 {
			w = -1
		}
		normals = append(normals, n.X, n.Y, n.Z)
		tangents = append(tangents, tan.X, tan.Y, tan.Z, w)
	}

	o, err := orientation.NewBuilder().
		VertexCount(count).
		Normals(orientation.Float32s(normals, 0)).
		Tangents(orientation.Float32s(tangents, 0)).
		Build()
	require.NoError(t, err)
	assert.Equal(t, orientation.ModeTangents, o.Mode())

	for i := 0; i < count; i++ {
		n := math.Vec3{X: normals[i*3], Y: normals[i*3+1], Z: normals[i*3+2]}
		tw := math.Vec4{X: tangents[i*4], Y: tangents[i*4+1], Z: tangents[i*4+2], W: tangents[i*4+3]}
		wantT := tw.XYZ().Reject(n).Normalize()
		wantB := n.Cross(wantT).Scale(tw.W)

		f := o.Frame(i)
		assertVec(t, n, f.Normal, axisTolerance, "vertex %d normal", i)
		assertVec(t, wantT, f.Tangent, axisTolerance, "vertex %d tangent", i)
		assertVec(t, wantB, f.Bitangent, axisTolerance, "vertex %d bitangent", i)
		assertOrthonormal(t, f, "vertex %d", i)
		assert.InDelta(t, 1, o.Quat(i).Length(), orthoTolerance)
	}
}

func TestFramesAreOrthonormal(t *testing.T) {
	meshes := []*meshgen.Mesh{
		meshgen.Quad(),
		meshgen.Grid(5, 3),
		meshgen.Sphere(12, 16),
		meshgen.Cube(false),
		meshgen.Cube(true),
	}
	modes := []orientation.Mode{orientation.ModeTangents, orientation.ModeUVs, orientation.ModeNormals}

	for _, m := range meshes {
		for _, mode := range modes {
			t.Run(m.Name+"/"+mode.String(), func(t *testing.T) {
				o := build(t, m, meshgen.Inputs{Mode: mode})
				assert.Equal(t, mode, o.Mode())
				require.Equal(t, len(m.Vertices), o.VertexCount())
				for i := 0; i < o.VertexCount(); i++ {
					q := o.Quat(i)
					require.True(t, q.IsFinite(), "vertex %d: %v", i, q)
					assert.InDelta(t, 1, q.Length(), orthoTolerance, "vertex %d", i)
					assertOrthonormal(t, o.Frame(i), "vertex %d", i)

					n := m.Vertices[i].Normal
					assertVec(t, math.Vec3{X: n[0], Y: n[1], Z: n[2]}, o.Frame(i).Normal, axisTolerance, "vertex %d", i)
				}
			})
		}
	}
}

func TestDecodeMatchesGonumRotation(t *testing.T) {
	o := build(t, meshgen.Sphere(6, 9), meshgen.Inputs{Mode: orientation.ModeUVs})

	rotate := func(q quat.Number, v r3.Vec) r3.Vec {
		p := quat.Mul(quat.Mul(q, quat.Number{Imag: v.X, Jmag: v.Y, Kmag: v.Z}), quat.Conj(q))
		return r3.Vec{X: p.Imag, Y: p.Jmag, Z: p.Kmag}
	}

	for i := 0; i < o.VertexCount(); i++ {
		q := o.Quat(i).ToNumber()
		f := o.Frame(i)
		assertVec(t, math.Vec3FromR3(rotate(q, r3.Vec{X: 1})), f.Tangent, orthoTolerance, "vertex %d", i)
		assertVec(t, math.Vec3FromR3(rotate(q, r3.Vec{Z: 1})), f.Normal, orthoTolerance, "vertex %d", i)
	}
}

func TestMirroredUVsMatchTangentSigns(t *testing.T) {
	m := meshgen.Cube(true)
	fromUVs := build(t, m, meshgen.Inputs{Mode: orientation.ModeUVs})
	fromTangents := build(t, m, meshgen.Inputs{Mode: orientation.ModeTangents})

	for i := range m.Vertices {
		a, b := fromUVs.Quat(i), fromTangents.Quat(i)
		assert.InDelta(t, b.X, a.X, orthoTolerance, "vertex %d", i)
		assert.InDelta(t, b.Y, a.Y, orthoTolerance, "vertex %d", i)
		assert.InDelta(t, b.Z, a.Z, orthoTolerance, "vertex %d", i)
		assert.InDelta(t, b.W, a.W, orthoTolerance, "vertex %d", i)

		wantReflected := m.Vertices[i].Tangent[3] < 0
		assert.Equal(t, wantReflected, fromUVs.Frame(i).Reflected(), "vertex %d", i)
		assert.Equal(t, wantReflected, fromUVs.Quat(i).W < 0, "vertex %d", i)
	}
}

func tangents(o *orientation.Orientation) []math.Vec3 {
	out := make([]math.Vec3, o.VertexCount())
	for i := range out {
		out[i] = o.Frame(i).Tangent
	}
	return out
}

func TestUVModeScaleInvariance(t *testing.T) {
	want := tangents(build(t, meshgen.Sphere(6, 8), meshgen.Inputs{Mode: orientation.ModeUVs}))

	for _, s := range []float32{1e-30, 0.05, 3, 20, 1e30} {
		m := meshgen.Sphere(6, 8)
		m.Transform(func(p [3]float32) [3]float32 {
			return [3]float32{p[0] * s, p[1] * s, p[2] * s}
		})
		got := tangents(build(t, m, meshgen.Inputs{Mode: orientation.ModeUVs}))
		if diff := cmp.Diff(want, got, cmpopts.EquateApprox(0, axisTolerance)); diff != "" {
			t.Errorf("scale %v changed tangents (-want +got):\n%s", s, diff)
		}
	}
}

func TestUVModeTranslationInvariance(t *testing.T) {
	want := tangents(build(t, meshgen.Sphere(6, 8), meshgen.Inputs{Mode: orientation.ModeUVs}))

	for _, off := range [][2]float32{{0.5, -0.25}, {-1, 2}} {
		m := meshgen.Sphere(6, 8)
		m.TransformUV(func(uv [2]float32) [2]float32 {
			return [2]float32{uv[0] + off[0], uv[1] + off[1]}
		})
		got := tangents(build(t, m, meshgen.Inputs{Mode: orientation.ModeUVs}))
		if diff := cmp.Diff(want, got, cmpopts.EquateApprox(0, axisTolerance)); diff != "" {
			t.Errorf("uv offset %v changed tangents (-want +got):\n%s", off, diff)
		}
	}
}

func TestBuildIsIdempotent(t *testing.T) {
	m := meshgen.Sphere(10, 14)
	b, err := m.Builder(meshgen.Inputs{Mode: orientation.ModeUVs})
	require.NoError(t, err)

	first, err := b.Build()
	require.NoError(t, err)
	second, err := b.Build()
	require.NoError(t, err)

	if diff := cmp.Diff(first.Quats(), second.Quats()); diff != "" {
		t.Errorf("second build differs (-first +second):\n%s", diff)
	}
}

func TestWorkersDoNotChangeOutput(t *testing.T) {
	m := meshgen.Grid(120, 90)
	m.Transform(func(p [3]float32) [3]float32 {
		return [3]float32{p[0], p[1], float32(gomath.Sin(float64(p[0]) * 0.3))}
	})

	for _, mode := range []orientation.Mode{orientation.ModeTangents, orientation.ModeUVs, orientation.ModeNormals} {
		b, err := m.Builder(meshgen.Inputs{Mode: mode})
		require.NoError(t, err)

		serial, err := b.Workers(1).Build()
		require.NoError(t, err)
		parallel, err := b.Workers(4).Build()
		require.NoError(t, err)

		if diff := cmp.Diff(serial.Quats(), parallel.Quats()); diff != "" {
			t.Errorf("%s: worker count changed output (-serial +parallel):\n%s", mode, diff)
		}
		assert.Equal(t, serial.Stats(), parallel.Stats())
	}
}

func TestDegenerateUVTriangle(t *testing.T) {
	normals := []float32{0, 0, 1, 0, 0, 1, 0, 0, 1}
	positions := []float32{0, 0, 0, 1, 0, 0, 0, 1, 0}

	tests := []struct {
		name string
		uvs  []float32
	}{
		{"duplicate uv", []float32{0, 0, 0, 0, 1, 1}},
		{"all uvs equal", []float32{0.3, 0.3, 0.3, 0.3, 0.3, 0.3}},
		{"collinear uvs", []float32{0, 0, 0.1, 0.1, 0.3, 0.3}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o, err := orientation.NewBuilder().
				VertexCount(3).
				Normals(orientation.Float32s(normals, 0)).
				UVs(orientation.Float32s(tt.uvs, 0)).
				Positions(orientation.Float32s(positions, 0)).
				TriangleCount(1).
				Triangles16([]uint16{0, 1, 2}).
				Build()
			require.NoError(t, err)

			assert.Equal(t, orientation.Stats{DegenerateTriangles: 1, FallbackVertices: 3}, o.Stats())
			for i := 0; i < 3; i++ {
				q := o.Quat(i)
				require.True(t, q.IsFinite(), "vertex %d: %v", i, q)
				f := o.Frame(i)
				assertOrthonormal(t, f, "vertex %d", i)
				assertVec(t, math.AxisZ, f.Normal, axisTolerance)
				assert.False(t, f.Reflected())
			}
		})
	}
}

func TestIsolatedVertexFallsBack(t *testing.T) {
	m := meshgen.Quad()
	m.Vertices = append(m.Vertices, meshgen.Vertex{Normal: [3]float32{0, 1, 0}})

	o := build(t, m, meshgen.Inputs{Mode: orientation.ModeUVs})
	assert.Equal(t, 1, o.Stats().FallbackVertices)
	f := o.Frame(4)
	assertOrthonormal(t, f)
	assertVec(t, math.AxisY, f.Normal, axisTolerance)
}

func TestTangentParallelToNormalFallsBack(t *testing.T) {
	o, err := orientation.NewBuilder().
		VertexCount(2).
		Normals(orientation.Float32s([]float32{0, 0, 1, 0, 1, 0}, 0)).
		Tangents(orientation.Float32s([]float32{0, 0, 2, 1, 0, 0, 0, -1}, 0)).
		Build()
	require.NoError(t, err)

	assert.Equal(t, 2, o.Stats().FallbackVertices)
	for i := 0; i < 2; i++ {
		assertOrthonormal(t, o.Frame(i), "vertex %d", i)
	}
}

func TestTangentMagnitudeDoesNotMatter(t *testing.T) {
	tests := []struct {
		name    string
		normal  []float32
		tangent []float32
		want    math.Vec3
	}{
		{"huge tangent", []float32{0, 0, 1}, []float32{0, 1e20, 0, 1}, math.AxisY},
		{"tiny tangent", []float32{0, 0, 1}, []float32{0, 1e-20, 0, 1}, math.AxisY},
		{"huge oblique tangent", []float32{0, 0, 1}, []float32{3e25, 0, 4e25, -1}, math.AxisX},
		{"huge normal", []float32{0, 0, 1e20}, []float32{1, 0, 0, 1}, math.AxisX},
		{"tiny normal", []float32{0, 1e-25, 0}, []float32{0, 0, 1, 1}, math.AxisZ},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o, err := orientation.NewBuilder().
				VertexCount(1).
				Normals(orientation.Float32s(tt.normal, 0)).
				Tangents(orientation.Float32s(tt.tangent, 0)).
				Build()
			require.NoError(t, err)

			assert.Equal(t, orientation.Stats{}, o.Stats())
			f := o.Frame(0)
			assertOrthonormal(t, f)
			assertVec(t, tt.want, f.Tangent, axisTolerance)
			assertVec(t, math.Vec3{X: tt.normal[0], Y: tt.normal[1], Z: tt.normal[2]}.Normalize(), f.Normal, axisTolerance)
			assert.Equal(t, tt.tangent[3] < 0, f.Reflected())
		})
	}
}

func TestHugeNormalOnly(t *testing.T) {
	o, err := orientation.NewBuilder().
		VertexCount(1).
		Normals(orientation.Float32s([]float32{0, 0, 1e20}, 0)).
		Build()
	require.NoError(t, err)
	assertVec(t, math.AxisZ, o.Frame(0).Normal, axisTolerance)
}

func TestNormalsOnly(t *testing.T) {
	o, err := orientation.NewBuilder().
		VertexCount(1).
		Normals(orientation.Float32s([]float32{0, 0, 1}, 0)).
		Build()
	require.NoError(t, err)

	assert.Equal(t, orientation.ModeNormals, o.Mode())
	f := o.Frame(0)
	assertVec(t, math.AxisX, f.Tangent, axisTolerance)
	assertVec(t, math.AxisY, f.Bitangent, axisTolerance)
	assert.InDelta(t, 1, o.Quat(0).W, axisTolerance)
}

func TestTangentsTakePriority(t *testing.T) {
	m := meshgen.Quad()
	b, err := m.Builder(meshgen.Inputs{Mode: orientation.ModeUVs})
	require.NoError(t, err)
	b.Tangents(orientation.Bytes(m.Attribute(meshgen.TangentOffset), meshgen.VertexStride))

	o, err := b.Build()
	require.NoError(t, err)
	assert.Equal(t, orientation.ModeTangents, o.Mode())
}

func TestAutoInputsResolveByPriority(t *testing.T) {
	m := meshgen.Cube(true)
	auto := build(t, m, meshgen.Inputs{Auto: true, Index16: true})
	fromTangents := build(t, m, meshgen.Inputs{Mode: orientation.ModeTangents})

	assert.Equal(t, orientation.ModeTangents, auto.Mode())
	if diff := cmp.Diff(fromTangents.Quats(), auto.Quats()); diff != "" {
		t.Errorf("auto inputs differ from tangents (-want +got):\n%s", diff)
	}
}

func TestInterleavedMatchesTight(t *testing.T) {
	m := meshgen.Sphere(5, 7)

	var normals, uvs, positions []float32
	for _, v := range m.Vertices {
		normals = append(normals, v.Normal[:]...)
		uvs = append(uvs, v.TexCoord[:]...)
		positions = append(positions, v.Position[:]...)
	}

	tight, err := orientation.NewBuilder().
		VertexCount(len(m.Vertices)).
		Normals(orientation.Float32s(normals, 0)).
		UVs(orientation.Float32s(uvs, 8)).
		Positions(orientation.Float32s(positions, 0)).
		TriangleCount(m.TriangleCount()).
		Triangles32(m.Indices).
		Build()
	require.NoError(t, err)

	interleaved := build(t, m, meshgen.Inputs{Mode: orientation.ModeUVs})
	wide := build(t, m, meshgen.Inputs{Mode: orientation.ModeUVs, Index16: true})

	if diff := cmp.Diff(tight.Quats(), interleaved.Quats()); diff != "" {
		t.Errorf("interleaved input differs (-tight +interleaved):\n%s", diff)
	}
	if diff := cmp.Diff(interleaved.Quats(), wide.Quats()); diff != "" {
		t.Errorf("16-bit indices differ (-32 +16):\n%s", diff)
	}
}

func TestVec3sView(t *testing.T) {
	normals := []math.Vec3{math.AxisZ, math.AxisY}
	o, err := orientation.NewBuilder().
		VertexCount(2).
		Normals(orientation.Vec3s(normals)).
		Build()
	require.NoError(t, err)
	assertVec(t, math.AxisY, o.Frame(1).Normal, axisTolerance)
}

func TestConfigurationErrors(t *testing.T) {
	normals := func() orientation.Buffer {
		return orientation.Float32s([]float32{0, 0, 1, 0, 0, 1, 0, 0, 1}, 0)
	}
	uvs := func() orientation.Buffer { return orientation.Float32s([]float32{0, 0, 1, 0, 0, 1}, 0) }
	positions := func() orientation.Buffer { return orientation.Float32s([]float32{0, 0, 0, 1, 0, 0, 0, 1, 0}, 0) }
	full := func() *orientation.Builder {
		return orientation.NewBuilder().VertexCount(3).Normals(normals()).UVs(uvs()).Positions(positions())
	}
	nan := float32(gomath.NaN())

	tests := []struct {
		name    string
		builder *orientation.Builder
		want    error
	}{
		{"empty", orientation.NewBuilder(), orientation.ErrNoVertexCount},
		{"no vertex count", orientation.NewBuilder().Normals(normals()), orientation.ErrNoVertexCount},
		{"negative vertex count", orientation.NewBuilder().VertexCount(-2).Normals(normals()), orientation.ErrNoVertexCount},
		{"no normals", orientation.NewBuilder().VertexCount(3), orientation.ErrNoNormals},
		{"uvs without positions", orientation.NewBuilder().VertexCount(3).Normals(normals()).UVs(uvs()), orientation.ErrIncompleteInputs},
		{"uvs and positions without indices", full(), orientation.ErrIncompleteInputs},
		{"indices only", orientation.NewBuilder().VertexCount(3).Normals(normals()).TriangleCount(1).Triangles32([]uint32{0, 1, 2}), orientation.ErrIncompleteInputs},
		{"zero triangle count", full().Triangles32([]uint32{0, 1, 2}), orientation.ErrTriangleCount},
		{"short index buffer", full().TriangleCount(2).Triangles32([]uint32{0, 1, 2}), orientation.ErrTriangleCount},
		{"index out of range", full().TriangleCount(1).Triangles32([]uint32{0, 1, 3}), orientation.ErrIndexOutOfRange},
		{"16-bit index out of range", full().TriangleCount(1).Triangles16([]uint16{0, 9, 1}), orientation.ErrIndexOutOfRange},
		{"short normals", orientation.NewBuilder().VertexCount(4).Normals(normals()), orientation.ErrBufferTooShort},
		{"short strided normals", orientation.NewBuilder().VertexCount(3).Normals(orientation.Float32s(make([]float32, 9), 16)), orientation.ErrBufferTooShort},
		{"stride below element size", orientation.NewBuilder().VertexCount(3).Normals(orientation.Float32s(make([]float32, 9), 8)), orientation.ErrBadStride},
		{"short tangents", orientation.NewBuilder().VertexCount(3).Normals(normals()).Tangents(orientation.Float32s([]float32{1, 0, 0, 1}, 0)), orientation.ErrBufferTooShort},
		{"short uvs", full().UVs(orientation.Float32s([]float32{0, 0}, 0)).TriangleCount(1).Triangles32([]uint32{0, 1, 2}), orientation.ErrBufferTooShort},
		{"nan normal", orientation.NewBuilder().VertexCount(1).Normals(orientation.Float32s([]float32{0, nan, 1}, 0)), orientation.ErrNonFinite},
		{"zero normal", orientation.NewBuilder().VertexCount(1).Normals(orientation.Float32s([]float32{0, 0, 0}, 0)), orientation.ErrNonFinite},
		{"nan tangent", orientation.NewBuilder().VertexCount(1).Normals(orientation.Float32s([]float32{0, 0, 1}, 0)).Tangents(orientation.Float32s([]float32{1, 0, 0, nan}, 0)), orientation.ErrNonFinite},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o, err := tt.builder.Build()
			assert.Nil(t, o)
			assert.ErrorIs(t, err, tt.want)
			assert.ErrorIs(t, err, orientation.ErrConfiguration)
		})
	}
}

func TestNonFiniteUVsAreDegenerate(t *testing.T) {
	nan := float32(gomath.NaN())
	o, err := orientation.NewBuilder().
		VertexCount(3).
		Normals(orientation.Float32s([]float32{0, 0, 1, 0, 0, 1, 0, 0, 1}, 0)).
		UVs(orientation.Float32s([]float32{0, 0, nan, 0, 0, 1}, 0)).
		Positions(orientation.Float32s([]float32{0, 0, 0, 1, 0, 0, 0, 1, 0}, 0)).
		TriangleCount(1).
		Triangles32([]uint32{0, 1, 2}).
		Build()
	require.NoError(t, err)
	assert.Equal(t, 1, o.Stats().DegenerateTriangles)
	for i := 0; i < 3; i++ {
		assert.True(t, o.Quat(i).IsFinite())
	}
}

func TestOutputIsOwned(t *testing.T) {
	m := meshgen.Quad()
	o := build(t, m, meshgen.Inputs{Mode: orientation.ModeUVs})
	before := o.Quats()

	quats := o.Quats()
	quats[0] = math.Quat{}
	for i := range m.Vertices {
		m.Vertices[i].Normal = [3]float32{1, 0, 0}
	}

	if diff := cmp.Diff(before, o.Quats()); diff != "" {
		t.Errorf("output changed after mutating inputs (-before +after):\n%s", diff)
	}
}

func TestFloat32sLayout(t *testing.T) {
	o := build(t, meshgen.Cube(true), meshgen.Inputs{Mode: orientation.ModeTangents})
	packed := o.Float32s()
	require.Len(t, packed, o.VertexCount()*4)
	for i := 0; i < o.VertexCount(); i++ {
		q := o.Quat(i)
		assert.Equal(t, []float32{q.X, q.Y, q.Z, q.W}, packed[i*4:i*4+4])
	}
}

func TestSNorm16KeepsReflection(t *testing.T) {
	// A tangent of -X around +Z is a half turn, so the rotation has w == 0
	// and only the storage bias keeps the sign.
	for _, w := range []float32{1, -1} {
		o, err := orientation.NewBuilder().
			VertexCount(1).
			Normals(orientation.Float32s([]float32{0, 0, 1}, 0)).
			Tangents(orientation.Float32s([]float32{-1, 0, 0, w}, 0)).
			Build()
		require.NoError(t, err)

		q := o.Quat(0)
		assert.Equal(t, w < 0, q.W < 0, "w=%v quat=%v", w, q)

		packed := o.SNorm16()[0]
		assert.Equal(t, [4]int16{0, 0, int16(32767 * w), int16(w)}, packed)

		f := orientation.DecodeFrame(orientation.UnpackSNorm16(packed))
		assertVec(t, math.Vec3{X: -1}, f.Tangent, 1e-3)
		assertVec(t, math.Vec3{Y: -w}, f.Bitangent, 1e-3)
		assertVec(t, math.AxisZ, f.Normal, 1e-3)
	}
}

func TestSNorm16RoundTrip(t *testing.T) {
	o := build(t, meshgen.Cube(true), meshgen.Inputs{Mode: orientation.ModeUVs})
	for i, p := range o.SNorm16() {
		want := o.Frame(i)
		got := orientation.DecodeFrame(orientation.UnpackSNorm16(p))
		assertVec(t, want.Tangent, got.Tangent, 1e-3, "vertex %d", i)
		assertVec(t, want.Bitangent, got.Bitangent, 1e-3, "vertex %d", i)
		assertVec(t, want.Normal, got.Normal, 1e-3, "vertex %d", i)
	}
}

func TestBuildLogsSummary(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	m := meshgen.Quad()
	b, err := m.Builder(meshgen.Inputs{Mode: orientation.ModeUVs})
	require.NoError(t, err)

	_, err = b.Logger(zap.New(core)).Build()
	require.NoError(t, err)

	entries := logs.FilterMessage("surface orientation built").All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, "uvs", fields["mode"])
	assert.Equal(t, int64(4), fields["vertices"])
	assert.Equal(t, int64(2), fields["triangles"])

	_, err = orientation.NewBuilder().Logger(zap.New(core)).Build()
	require.Error(t, err)
	assert.Equal(t, 1, logs.FilterMessage("surface orientation rejected").Len())
}

func TestModeString(t *testing.T) {
	assert.Equal(t, "tangents", orientation.ModeTangents.String())
	assert.Equal(t, "uvs", orientation.ModeUVs.String())
	assert.Equal(t, "normals", orientation.ModeNormals.String())
	assert.Equal(t, "Mode(0)", orientation.Mode(0).String())
}
