package orientation

import (
	"fmt"
	gomath "math"

	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/Faultbox/surface-orientation/pkg/math"
)

const (
	// degenerateUVSine is the smallest |sin| of the angle between a
	// triangle's two UV edges that still yields a usable tangent.
	degenerateUVSine = 1e-6

	// parallelTangentRatio is the squared fraction of a unit tangent that
	// must remain after removing its normal component.
	parallelTangentRatio = 1e-8

	// minChunk is the smallest vertex range handed to one worker.
	minChunk = 1024
)

// Stats reports local geometry problems that were handled during a build.
type Stats struct {
	// DegenerateTriangles counts triangles skipped for a singular UV mapping
	// or non-finite contributions.
	DegenerateTriangles int
	// FallbackVertices counts vertices that received an arbitrary tangent
	// because their own data could not define one.
	FallbackVertices int
}

// computation is the state of one Build call.
type computation struct {
	mode  Mode
	count int

	normals   view
	tangents  view
	uvs       view
	positions view
	indices   indexBuffer
	nTris     int
	workers   int

	// Mode UVs accumulators.
	tan []math.Vec3
	bit []math.Vec3

	out   []math.Quat
	stats Stats
}

func newComputation(b *Builder, mode Mode) *computation {
	c := &computation{
		mode:    mode,
		count:   b.vertexCount,
		normals: b.normals.view(float3Size),
		workers: b.workers,
		out:     make([]math.Quat, b.vertexCount),
	}
	switch mode {
	case ModeTangents:
		c.tangents = b.tangents.view(float4Size)
	case ModeUVs:
		c.uvs = b.uvs.view(float2Size)
		c.positions = b.positions.view(float3Size)
		c.indices = b.indices
		c.nTris = b.triangleCount
	}
	return c
}

func (c *computation) triangles() int {
	return c.nTris
}

func (c *computation) run() error {
	var vertex func(i int) (fallback bool, err error)
	switch c.mode {
	case ModeTangents:
		vertex = c.fromTangent
	case ModeUVs:
		c.accumulate()
		vertex = c.fromAccumulated
	default:
		vertex = c.fromNormal
	}
	return c.eachVertex(vertex)
}

// eachVertex runs fn over all vertices, split into ranges across workers.
// Each vertex is independent, so the split never changes the result.
func (c *computation) eachVertex(fn func(i int) (bool, error)) error {
	chunk := c.count
	if c.workers > 1 {
		chunk = (c.count + c.workers - 1) / c.workers
		if chunk < minChunk {
			chunk = minChunk
		}
	}
	nChunks := (c.count + chunk - 1) / chunk
	fallbacks := make([]int, nChunks)

	var g errgroup.Group
	g.SetLimit(c.workers)
	for k := 0; k < nChunks; k++ {
		start := k * chunk
		end := min(start+chunk, c.count)
		g.Go(func() error {
			for i := start; i < end; i++ {
				fb, err := fn(i)
				if err != nil {
					return err
				}
				if fb {
					fallbacks[k]++
				}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	for _, n := range fallbacks {
		c.stats.FallbackVertices += n
	}
	return nil
}

// normal reads and normalizes the normal of vertex i.
func (c *computation) normal(i int) (math.Vec3, error) {
	n := c.normals.vec3(i)
	if !n.IsFinite() {
		return math.Vec3{}, fmt.Errorf("%w: normal %d is %v", ErrNonFinite, i, n)
	}
	n = n.Normalize()
	if n == (math.Vec3{}) {
		return math.Vec3{}, fmt.Errorf("%w: normal %d has zero length", ErrNonFinite, i)
	}
	return n, nil
}

// fromTangent uses the supplied tangent and sign.
func (c *computation) fromTangent(i int) (bool, error) {
	n, err := c.normal(i)
	if err != nil {
		return false, err
	}
	tw := c.tangents.vec4(i)
	if !tw.XYZ().IsFinite() || !isFinite(tw.W) {
		return false, fmt.Errorf("%w: tangent %d is %v", ErrNonFinite, i, tw)
	}

	t, ok := orthogonalize(tw.XYZ(), n)
	if !ok {
		c.out[i] = packFrame(arbitraryTangent(n), n, tw.W < 0, floatBias)
		return true, nil
	}
	c.out[i] = packFrame(t, n, tw.W < 0, floatBias)
	return false, nil
}

// fromNormal builds a frame from the normal alone.
func (c *computation) fromNormal(i int) (bool, error) {
	n, err := c.normal(i)
	if err != nil {
		return false, err
	}
	c.out[i] = packFrame(arbitraryTangent(n), n, false, floatBias)
	return false, nil
}

// accumulate sums the unnormalized per-triangle tangent and bitangent into
// every vertex of the triangle. Larger and more stretched triangles weigh
// more. The pass is sequential so the summation order is fixed.
func (c *computation) accumulate() {
	c.tan = make([]math.Vec3, c.count)
	c.bit = make([]math.Vec3, c.count)

	for tri := 0; tri < c.nTris; tri++ {
		i0 := int(c.indices.at(tri * 3))
		i1 := int(c.indices.at(tri*3 + 1))
		i2 := int(c.indices.at(tri*3 + 2))

		p0 := c.positions.vec3(i0).R3()
		e1 := r3.Sub(c.positions.vec3(i1).R3(), p0)
		e2 := r3.Sub(c.positions.vec3(i2).R3(), p0)

		// The UV solve runs in float64 so extreme position or UV scales
		// neither overflow nor underflow before the result is rounded.
		w0 := c.uvs.vec2(i0)
		d1 := c.uvs.vec2(i1).Sub(w0)
		d2 := c.uvs.vec2(i2).Sub(w0)

		det := d1.Cross(d2)
		if gomath.IsNaN(det) || gomath.IsInf(det, 0) ||
			gomath.Abs(det) <= degenerateUVSine*float64(d1.Length())*float64(d2.Length()) {
			c.stats.DegenerateTriangles++
			continue
		}
		r := 1 / det

		t := math.Vec3FromR3(r3.Scale(r, r3.Sub(r3.Scale(float64(d2.Y), e1), r3.Scale(float64(d1.Y), e2))))
		b := math.Vec3FromR3(r3.Scale(r, r3.Sub(r3.Scale(float64(d1.X), e2), r3.Scale(float64(d2.X), e1))))
		if !t.IsFinite() || !b.IsFinite() {
			c.stats.DegenerateTriangles++
			continue
		}

		for _, v := range [3]int{i0, i1, i2} {
			c.tan[v] = c.tan[v].Add(t)
			c.bit[v] = c.bit[v].Add(b)
		}
	}
}

// fromAccumulated orthonormalizes the accumulated tangent of vertex i and
// resolves handedness from the accumulated bitangent.
func (c *computation) fromAccumulated(i int) (bool, error) {
	n, err := c.normal(i)
	if err != nil {
		return false, err
	}
	t, ok := orthogonalize(c.tan[i], n)
	if !ok || !t.IsFinite() {
		c.out[i] = packFrame(arbitraryTangent(n), n, false, floatBias)
		return true, nil
	}
	reflected := n.Cross(t).Dot(c.bit[i]) < 0
	c.out[i] = packFrame(t, n, reflected, floatBias)
	return false, nil
}

// orthogonalize removes the n component of t (Gram-Schmidt) and normalizes
// it. It fails when t is zero or parallel to n. t is normalized first so the
// parallel test does not depend on its magnitude.
func orthogonalize(t, n math.Vec3) (math.Vec3, bool) {
	u := t.Normalize()
	if u == (math.Vec3{}) {
		return math.Vec3{}, false
	}
	r := u.Reject(n)
	if rSq := r.LengthSq(); rSq == 0 || rSq <= parallelTangentRatio {
		return math.Vec3{}, false
	}
	return r.Normalize(), true
}

// arbitraryTangent returns a unit vector orthogonal to the unit vector n,
// derived from the world axis least aligned with n.
func arbitraryTangent(n math.Vec3) math.Vec3 {
	return n.LeastAlignedAxis().Reject(n).Normalize()
}
