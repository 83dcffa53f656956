package orientation

import (
	"github.com/Faultbox/surface-orientation/pkg/math"
)

// Orientation is the result of a build: one unit quaternion per vertex.
// It owns its data and keeps no reference to the builder's inputs.
type Orientation struct {
	mode  Mode
	quats []math.Quat
	stats Stats
}

// VertexCount returns the number of vertices.
func (o *Orientation) VertexCount() int {
	return len(o.quats)
}

// Mode returns the input combination the build used.
func (o *Orientation) Mode() Mode {
	return o.mode
}

// Stats returns the degenerate geometry handled during the build.
func (o *Orientation) Stats() Stats {
	return o.stats
}

// Quat returns the quaternion of vertex i.
func (o *Orientation) Quat(i int) math.Quat {
	return o.quats[i]
}

// Quats returns a copy of all quaternions, indexed by vertex.
func (o *Orientation) Quats() []math.Quat {
	out := make([]math.Quat, len(o.quats))
	copy(out, o.quats)
	return out
}

// Float32s returns the quaternions tightly packed as x, y, z, w.
func (o *Orientation) Float32s() []float32 {
	out := make([]float32, 0, len(o.quats)*4)
	for _, q := range o.quats {
		out = append(out, q.X, q.Y, q.Z, q.W)
	}
	return out
}

// SNorm16 returns the quaternions quantized for a 16-bit vertex attribute.
func (o *Orientation) SNorm16() [][4]int16 {
	out := make([][4]int16, len(o.quats))
	for i, q := range o.quats {
		out[i] = PackSNorm16(q)
	}
	return out
}

// Frame decodes the tangent frame of vertex i.
func (o *Orientation) Frame(i int) Frame {
	return DecodeFrame(o.quats[i])
}
