package orientation

import (
	"errors"
	"fmt"
)

// ErrConfiguration is the root of every error returned by Build. A build that
// fails produces no output.
var ErrConfiguration = errors.New("surface orientation: invalid configuration")

// Build configuration errors. All of them wrap ErrConfiguration.
var (
	ErrNoVertexCount    = fmt.Errorf("%w: vertex count must be positive", ErrConfiguration)
	ErrNoNormals        = fmt.Errorf("%w: normals are required", ErrConfiguration)
	ErrIncompleteInputs = fmt.Errorf("%w: unsupported combination of inputs", ErrConfiguration)
	ErrBufferTooShort   = fmt.Errorf("%w: buffer too short", ErrConfiguration)
	ErrBadStride        = fmt.Errorf("%w: stride smaller than element", ErrConfiguration)
	ErrTriangleCount    = fmt.Errorf("%w: bad triangle count", ErrConfiguration)
	ErrIndexOutOfRange  = fmt.Errorf("%w: index out of range", ErrConfiguration)
	ErrNonFinite        = fmt.Errorf("%w: non-finite vertex data", ErrConfiguration)
)
