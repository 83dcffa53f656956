package orientation

import (
	gomath "math"

	"github.com/Faultbox/surface-orientation/pkg/math"
)

// Storage biases: the smallest |w| a packed quaternion may have in a given
// storage format, so that the sign of w survives and can carry the
// bitangent reflection.
const (
	floatBias  = float32(1.0 / (1<<31 - 1))
	snorm16Max = 1<<15 - 1
	snormBias  = float32(1.0 / snorm16Max)
)

// packFrame encodes the orthonormal frame (t, n x t, n) as a unit
// quaternion with w >= bias. When reflected is set the bitangent is -(n x t)
// and the whole quaternion is negated, which leaves the rotation unchanged
// but makes w negative.
func packFrame(t, n math.Vec3, reflected bool, bias float32) math.Quat {
	b := n.Cross(t)
	q := math.QuatFromMat3(math.Mat3FromColumns(t, b, n))
	return applyBias(q, reflected, bias)
}

// applyBias makes w positive, raises it to at least bias while keeping the
// quaternion unit length, then negates it when reflected.
func applyBias(q math.Quat, reflected bool, bias float32) math.Quat {
	if q.W < 0 {
		q = q.Neg()
	}
	if q.W < bias {
		f := float32(gomath.Sqrt(float64(1 - bias*bias)))
		q = math.Quat{X: q.X * f, Y: q.Y * f, Z: q.Z * f, W: bias}
	}
	if reflected {
		q = q.Neg()
	}
	return q
}

// Frame is a decoded tangent frame.
type Frame struct {
	Tangent   math.Vec3
	Bitangent math.Vec3
	Normal    math.Vec3
}

// Reflected reports whether the bitangent is opposite to cross(normal,
// tangent).
func (f Frame) Reflected() bool {
	return f.Normal.Cross(f.Tangent).Dot(f.Bitangent) < 0
}

// DecodeFrame reconstructs the frame packed into q. The bitangent is flipped
// when q.W is negative.
func DecodeFrame(q math.Quat) Frame {
	f := Frame{
		Tangent:   q.Rotate(math.AxisX),
		Bitangent: q.Rotate(math.AxisY),
		Normal:    q.Rotate(math.AxisZ),
	}
	if q.W < 0 {
		f.Bitangent = f.Bitangent.Neg()
	}
	return f
}

// PackSNorm16 quantizes q to signed normalized 16-bit components, re-biasing
// w so that its sign is not lost to rounding.
func PackSNorm16(q math.Quat) [4]int16 {
	q = applyBias(q, q.W < 0, snormBias)
	return [4]int16{snorm16(q.X), snorm16(q.Y), snorm16(q.Z), snorm16(q.W)}
}

// UnpackSNorm16 converts a 16-bit packed quaternion back to float32.
func UnpackSNorm16(p [4]int16) math.Quat {
	return math.Quat{
		X: unsnorm16(p[0]),
		Y: unsnorm16(p[1]),
		Z: unsnorm16(p[2]),
		W: unsnorm16(p[3]),
	}
}

func snorm16(f float32) int16 {
	f = max(-1, min(1, f))
	return int16(gomath.Round(float64(f) * snorm16Max))
}

func unsnorm16(v int16) float32 {
	return max(-1, float32(v)/snorm16Max)
}

func isFinite(f float32) bool {
	return !gomath.IsNaN(float64(f)) && !gomath.IsInf(float64(f), 0)
}
