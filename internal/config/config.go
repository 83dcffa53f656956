// Package config handles orienttool configuration loading and management.
package config

import (
	"fmt"

	"github.com/Faultbox/surface-orientation/pkg/formats"
	"github.com/Faultbox/surface-orientation/pkg/meshgen"
	"github.com/Faultbox/surface-orientation/pkg/orientation"
)

// Config holds all tool settings.
type Config struct {
	Mesh    MeshConfig    `yaml:"mesh"`
	Build   BuildConfig   `yaml:"build"`
	Output  OutputConfig  `yaml:"output"`
	Logging LoggingConfig `yaml:"logging"`
}

// MeshConfig selects the generated input mesh.
type MeshConfig struct {
	Name     string  `yaml:"name"` // quad, grid, sphere, cube
	Cols     int     `yaml:"cols"`
	Rows     int     `yaml:"rows"`
	Rings    int     `yaml:"rings"`
	Segments int     `yaml:"segments"`
	Mirror   bool    `yaml:"mirror"`
	Scale    float32 `yaml:"scale"`
}

// BuildConfig holds orientation build settings.
type BuildConfig struct {
	Mode    string `yaml:"mode"` // auto, tangents, uvs, normals
	Index16 bool   `yaml:"index16"`
	Workers int    `yaml:"workers"`
}

// OutputConfig holds result output settings.
type OutputConfig struct {
	Path     string `yaml:"path"`     // empty writes nothing
	Format   string `yaml:"format"`   // bin, yaml
	Encoding string `yaml:"encoding"` // float32, snorm16
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level      string `yaml:"level"`
	LogFile    string `yaml:"log_file"`
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
	MaxAgeDays int    `yaml:"max_age_days"`
	Quiet      bool   `yaml:"quiet"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Mesh: MeshConfig{
			Name:     "sphere",
			Cols:     8,
			Rows:     8,
			Rings:    16,
			Segments: 32,
			Scale:    1,
		},
		Build: BuildConfig{
			Mode:    "auto",
			Workers: 1,
		},
		Output: OutputConfig{
			Format:   "bin",
			Encoding: "float32",
		},
		Logging: LoggingConfig{
			Level:      "info",
			MaxSizeMB:  20,
			MaxBackups: 3,
			MaxAgeDays: 14,
		},
	}
}

// Params returns the generator parameters.
func (m MeshConfig) Params() meshgen.Params {
	return meshgen.Params{
		Cols:     m.Cols,
		Rows:     m.Rows,
		Rings:    m.Rings,
		Segments: m.Segments,
		Mirror:   m.Mirror,
	}
}

// Inputs maps the configured mode to the mesh attributes handed to the
// builder. "auto" hands over every attribute and lets the builder pick.
func (b BuildConfig) Inputs() (meshgen.Inputs, error) {
	in := meshgen.Inputs{Index16: b.Index16}
	switch b.Mode {
	case "auto", "":
		in.Auto = true
	case "tangents":
		in.Mode = orientation.ModeTangents
	case "uvs":
		in.Mode = orientation.ModeUVs
	case "normals":
		in.Mode = orientation.ModeNormals
	default:
		return in, fmt.Errorf("unknown build mode %q (want auto, tangents, uvs or normals)", b.Mode)
	}
	return in, nil
}

// Validate checks values that cannot be corrected silently.
func (c *Config) Validate() error {
	if _, err := c.Build.Inputs(); err != nil {
		return err
	}
	if c.Build.Workers < 1 {
		return fmt.Errorf("workers must be at least 1, got %d", c.Build.Workers)
	}
	if c.Mesh.Scale <= 0 {
		return fmt.Errorf("mesh scale must be positive, got %v", c.Mesh.Scale)
	}
	switch c.Output.Format {
	case "bin", "yaml":
	default:
		return fmt.Errorf("unknown output format %q (want bin or yaml)", c.Output.Format)
	}
	if _, err := formats.ParseQTANEncoding(c.Output.Encoding); err != nil {
		return err
	}
	return nil
}
