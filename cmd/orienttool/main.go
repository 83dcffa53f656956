// orienttool builds packed tangent-frame quaternions for procedural meshes.
package main

import (
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/Faultbox/surface-orientation/internal/config"
	"github.com/Faultbox/surface-orientation/internal/logger"
	"github.com/Faultbox/surface-orientation/pkg/meshgen"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]
	args := os.Args[2:]

	var err error
	switch command {
	case "build", "b":
		err = withConfig(args, cmdBuild)
	case "verify", "v":
		err = withConfig(args, cmdVerify)
	case "info", "i":
		err = withConfig(args, cmdInfo)
	case "config":
		err = withConfig(args, cmdConfig)
	case "meshes":
		for _, name := range meshgen.Names() {
			fmt.Println(name)
		}
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`orienttool - tangent-frame quaternion builder

Usage:
  orienttool <command> [options]

Commands:
  build    Build orientations for a generated mesh and write them (-o)
  verify   Build and check that every decoded frame is orthonormal
  info     Print mesh statistics and the resolved build mode
  meshes   List available mesh generators
  config   Print the effective config (-save writes it to the config dir)

Options:
  -config <file>       Config file (default ./orienttool.yaml)
  -mesh <name>         quad, grid, sphere, cube
  -mirror              Mirror UVs on alternate cube faces
  -scale <f>           Uniform position scale
  -mode <mode>         auto, tangents, uvs, normals
  -index16             Use 16-bit indices
  -workers <n>         Goroutines for per-vertex passes
  -o <file>            Output file
  -format <fmt>        bin, yaml
  -encoding <enc>      float32, snorm16
  -debug, -quiet       Logging verbosity
  -save                With config: write the effective config

Examples:
  orienttool build -mesh sphere -o sphere.qtan
  orienttool build -mesh cube -mirror -format yaml -encoding snorm16 -o cube.yaml
  orienttool verify -mesh grid -mode normals -workers 4`)
}

// withConfig parses flags, loads config, sets up logging and runs fn.
func withConfig(args []string, fn func(*config.Config) error) error {
	if err := config.ParseFlags(args); err != nil {
		return err
	}
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	if err := logger.Init(loggerOptions(cfg.Logging)); err != nil {
		return fmt.Errorf("initializing logger: %w", err)
	}
	defer logger.Sync()

	logger.Debug("config loaded",
		zap.String("mesh", cfg.Mesh.Name),
		zap.String("mode", cfg.Build.Mode),
		zap.Int("workers", cfg.Build.Workers))

	if err := fn(cfg); err != nil {
		logger.Error("command failed", zap.Error(err))
		return err
	}
	return nil
}

func cmdBuild(cfg *config.Config) error {
	mesh, err := generateMesh(cfg.Mesh)
	if err != nil {
		return err
	}
	o, err := buildOrientation(cfg.Build, mesh, logger.Named("orientation"))
	if err != nil {
		return err
	}

	if cfg.Output.Path == "" {
		fmt.Printf("Built %d quaternions (%s mode); use -o to write them\n", o.VertexCount(), o.Mode())
		return nil
	}

	data, err := encodeOutput(cfg.Output, o)
	if err != nil {
		return err
	}
	if err := os.WriteFile(cfg.Output.Path, data, 0644); err != nil {
		return fmt.Errorf("writing %s: %w", cfg.Output.Path, err)
	}

	logger.Info("orientations written",
		zap.String("path", cfg.Output.Path),
		zap.String("format", cfg.Output.Format),
		zap.String("encoding", cfg.Output.Encoding),
		zap.Int("bytes", len(data)))
	fmt.Printf("Wrote %d quaternions to %s\n", o.VertexCount(), cfg.Output.Path)
	return nil
}

func cmdVerify(cfg *config.Config) error {
	mesh, err := generateMesh(cfg.Mesh)
	if err != nil {
		return err
	}
	o, err := buildOrientation(cfg.Build, mesh, logger.Named("orientation"))
	if err != nil {
		return err
	}

	r := verify(mesh, o)
	fmt.Printf("Vertices:          %d\n", r.Vertices)
	fmt.Printf("Mode:              %s\n", o.Mode())
	fmt.Printf("Reflected frames:  %d\n", r.Reflected)
	fmt.Printf("Worst orthonormal: %.3g (vertex %d)\n", r.WorstOrtho, r.WorstOrthoVertex)
	fmt.Printf("Worst normal:      %.3g (vertex %d)\n", r.WorstNormal, r.WorstNormalVertex)

	if !r.OK(verifyTolerance) {
		return fmt.Errorf("frames exceed tolerance %g", verifyTolerance)
	}
	fmt.Println("OK")
	return nil
}

func cmdInfo(cfg *config.Config) error {
	mesh, err := generateMesh(cfg.Mesh)
	if err != nil {
		return err
	}
	o, err := buildOrientation(cfg.Build, mesh, logger.Named("orientation"))
	if err != nil {
		return err
	}

	stats := o.Stats()
	b := mesh.Bounds
	fmt.Printf("Mesh:       %s\n", mesh.Name)
	fmt.Printf("Vertices:   %d\n", len(mesh.Vertices))
	fmt.Printf("Triangles:  %d\n", mesh.TriangleCount())
	fmt.Printf("Bounds:     (%.2f, %.2f, %.2f) - (%.2f, %.2f, %.2f)\n",
		b.Min[0], b.Min[1], b.Min[2], b.Max[0], b.Max[1], b.Max[2])
	fmt.Printf("Mode:       %s\n", o.Mode())
	fmt.Printf("Degenerate: %d triangles\n", stats.DegenerateTriangles)
	fmt.Printf("Fallback:   %d vertices\n", stats.FallbackVertices)
	return nil
}

func cmdConfig(cfg *config.Config) error {
	data, err := cfg.Marshal()
	if err != nil {
		return err
	}
	fmt.Print(string(data))

	if config.SaveRequested() {
		path, err := cfg.Save()
		if err != nil {
			return fmt.Errorf("saving config: %w", err)
		}
		fmt.Printf("Saved to %s\n", path)
	}
	return nil
}
