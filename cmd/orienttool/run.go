package main

import (
	"fmt"
	gomath "math"

	"go.uber.org/zap"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/Faultbox/surface-orientation/internal/config"
	"github.com/Faultbox/surface-orientation/internal/logger"
	"github.com/Faultbox/surface-orientation/pkg/formats"
	"github.com/Faultbox/surface-orientation/pkg/math"
	"github.com/Faultbox/surface-orientation/pkg/meshgen"
	"github.com/Faultbox/surface-orientation/pkg/orientation"
)

// verifyTolerance bounds the float64 error of decoded frames.
const verifyTolerance = 1e-4

func loggerOptions(c config.LoggingConfig) logger.Options {
	opts := logger.Options{
		Level:   c.Level,
		Console: logger.ConsoleFor(c.Quiet),
	}
	if c.LogFile != "" {
		opts.File = logger.DefaultFileConfig(c.LogFile)
		opts.File.MaxSizeMB = c.MaxSizeMB
		opts.File.MaxBackups = c.MaxBackups
		opts.File.MaxAgeDays = c.MaxAgeDays
	}
	return opts
}

// generateMesh builds the configured mesh and applies the position scale.
func generateMesh(c config.MeshConfig) (*meshgen.Mesh, error) {
	mesh, err := meshgen.Generate(c.Name, c.Params())
	if err != nil {
		return nil, err
	}
	if c.Scale != 1 {
		s := c.Scale
		mesh.Transform(func(p [3]float32) [3]float32 {
			return [3]float32{p[0] * s, p[1] * s, p[2] * s}
		})
	}
	return mesh, nil
}

func buildOrientation(c config.BuildConfig, mesh *meshgen.Mesh, log *zap.Logger) (*orientation.Orientation, error) {
	in, err := c.Inputs()
	if err != nil {
		return nil, err
	}
	b, err := mesh.Builder(in)
	if err != nil {
		return nil, err
	}
	o, err := b.Workers(c.Workers).Logger(log).Build()
	if err != nil {
		return nil, fmt.Errorf("building %s orientations: %w", mesh.Name, err)
	}

	if s := o.Stats(); s != (orientation.Stats{}) {
		logger.Warn("mesh needed fallback tangents",
			zap.String("mesh", mesh.Name),
			zap.Stringer("mode", o.Mode()),
			zap.Int("degenerate_triangles", s.DegenerateTriangles),
			zap.Int("fallback_vertices", s.FallbackVertices))
	}
	return o, nil
}

// encodeOutput serializes o in the configured format and encoding.
func encodeOutput(c config.OutputConfig, o *orientation.Orientation) ([]byte, error) {
	enc, err := formats.ParseQTANEncoding(c.Encoding)
	if err != nil {
		return nil, err
	}

	file := &formats.QTAN{Version: formats.QTANCurrentVersion, Encoding: enc}
	if enc == formats.QTANSNorm16 {
		file.Packed = o.SNorm16()
	} else {
		file.Quats = o.Quats()
	}

	switch c.Format {
	case "yaml":
		return file.MarshalYAML()
	case "bin", "":
		return file.Marshal()
	default:
		return nil, fmt.Errorf("unknown output format %q", c.Format)
	}
}

// verifyReport summarizes frame quality.
type verifyReport struct {
	Vertices          int
	Reflected         int
	WorstOrtho        float64
	WorstOrthoVertex  int
	WorstNormal       float64
	WorstNormalVertex int
}

// OK reports whether both error measures are within tol.
func (r verifyReport) OK(tol float64) bool {
	return r.WorstOrtho <= tol && r.WorstNormal <= tol
}

// verify decodes every frame in float64 and measures how far it is from
// orthonormal and how far its normal is from the mesh normal.
func verify(mesh *meshgen.Mesh, o *orientation.Orientation) verifyReport {
	r := verifyReport{Vertices: o.VertexCount()}
	for i := range o.VertexCount() {
		f := o.Frame(i)
		t, b, n := f.Tangent.R3(), f.Bitangent.R3(), f.Normal.R3()

		ortho := max(
			gomath.Abs(r3.Norm(t)-1),
			gomath.Abs(r3.Norm(b)-1),
			gomath.Abs(r3.Norm(n)-1),
			gomath.Abs(r3.Dot(t, b)),
			gomath.Abs(r3.Dot(t, n)),
			gomath.Abs(r3.Dot(b, n)),
		)
		if ortho > r.WorstOrtho {
			r.WorstOrtho, r.WorstOrthoVertex = ortho, i
		}

		want := math.Vec3{X: mesh.Vertices[i].Normal[0], Y: mesh.Vertices[i].Normal[1], Z: mesh.Vertices[i].Normal[2]}
		dn := r3.Norm(r3.Sub(n, want.Normalize().R3()))
		if dn > r.WorstNormal {
			r.WorstNormal, r.WorstNormalVertex = dn, i
		}

		if f.Reflected() {
			r.Reflected++
		}
	}
	return r
}
