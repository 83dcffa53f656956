package orientation

import (
	"encoding/binary"
	"fmt"
	gomath "math"
	"unsafe"

	"github.com/Faultbox/surface-orientation/pkg/math"
)

// Element sizes in bytes.
const (
	float2Size = 8
	float3Size = 12
	float4Size = 16
)

// Buffer is a read-only strided view into caller memory. It never copies or
// owns the data; Build reads it and the result holds no reference to it.
//
// Stride is the byte distance between consecutive elements. A stride of 0
// means the elements are tightly packed. Components are float32 in native
// byte order.
type Buffer struct {
	data   []byte
	stride int
	set    bool
}

// Bytes returns a view over raw vertex bytes, e.g. an interleaved vertex
// buffer sliced at the attribute offset.
func Bytes(data []byte, stride int) Buffer {
	return Buffer{data: data, stride: stride, set: true}
}

// Float32s returns a view over a float32 slice. stride is in bytes.
func Float32s(data []float32, stride int) Buffer {
	raw := unsafe.Slice((*byte)(unsafe.Pointer(unsafe.SliceData(data))), len(data)*4)
	return Buffer{data: raw, stride: stride, set: true}
}

// Vec3s returns a tightly packed view over a Vec3 slice.
func Vec3s(data []math.Vec3) Buffer {
	raw := unsafe.Slice((*byte)(unsafe.Pointer(unsafe.SliceData(data))), len(data)*float3Size)
	return Buffer{data: raw, set: true}
}

// IsSet reports whether the buffer was supplied.
func (b Buffer) IsSet() bool {
	return b.set
}

// check verifies that count elements of elemSize bytes fit in the view.
func (b Buffer) check(name string, count, elemSize int) error {
	stride := b.stride
	if stride == 0 {
		stride = elemSize
	}
	if stride < elemSize {
		return fmt.Errorf("%w: %s stride %d < %d", ErrBadStride, name, b.stride, elemSize)
	}
	need := (count-1)*stride + elemSize
	if len(b.data) < need {
		return fmt.Errorf("%w: %s needs %d bytes, have %d", ErrBufferTooShort, name, need, len(b.data))
	}
	return nil
}

// view is a validated Buffer with its effective stride resolved.
type view struct {
	data   []byte
	stride int
}

func (b Buffer) view(elemSize int) view {
	stride := b.stride
	if stride == 0 {
		stride = elemSize
	}
	return view{data: b.data, stride: stride}
}

func (v view) float(off int) float32 {
	return gomath.Float32frombits(binary.NativeEndian.Uint32(v.data[off:]))
}

func (v view) vec2(i int) math.Vec2 {
	off := i * v.stride
	return math.Vec2{X: v.float(off), Y: v.float(off + 4)}
}

func (v view) vec3(i int) math.Vec3 {
	off := i * v.stride
	return math.Vec3{X: v.float(off), Y: v.float(off + 4), Z: v.float(off + 8)}
}

func (v view) vec4(i int) math.Vec4 {
	off := i * v.stride
	return math.Vec4{X: v.float(off), Y: v.float(off + 4), Z: v.float(off + 8), W: v.float(off + 12)}
}
