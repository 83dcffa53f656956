package config

import "flag"

var (
	flagConfig   = flag.String("config", "", "Path to config file")
	flagDebug    = flag.Bool("debug", false, "Enable debug logging")
	flagQuiet    = flag.Bool("quiet", false, "Disable console logging")
	flagMesh     = flag.String("mesh", "", "Generated mesh: quad, grid, sphere, cube")
	flagMirror   = flag.Bool("mirror", false, "Mirror UVs on alternate cube faces")
	flagScale    = flag.Float64("scale", 0, "Uniform position scale")
	flagMode     = flag.String("mode", "", "Input mode: auto, tangents, uvs, normals")
	flagIndex16  = flag.Bool("index16", false, "Use 16-bit indices")
	flagWorkers  = flag.Int("workers", 0, "Goroutines for per-vertex passes")
	flagOutput   = flag.String("o", "", "Write quaternions to this file")
	flagFormat   = flag.String("format", "", "Output format: bin, yaml")
	flagEncoding = flag.String("encoding", "", "Output encoding: float32, snorm16")
	flagSave     = flag.Bool("save", false, "Write the effective config to the user config directory")
)

// ParseFlags parses command-line flags for a subcommand.
func ParseFlags(args []string) error {
	return flag.CommandLine.Parse(args)
}

// SaveRequested reports whether -save was given.
func SaveRequested() bool {
	return *flagSave
}

// ConfigPath returns the explicit config path if provided via -config.
func ConfigPath() string {
	return *flagConfig
}

// applyFlags applies CLI flag overrides to the config.
func applyFlags(cfg *Config) {
	if *flagDebug {
		cfg.Logging.Level = "debug"
	}
	if *flagQuiet {
		cfg.Logging.Quiet = true
	}
	if *flagMesh != "" {
		cfg.Mesh.Name = *flagMesh
	}
	if *flagMirror {
		cfg.Mesh.Mirror = true
	}
	if *flagScale > 0 {
		cfg.Mesh.Scale = float32(*flagScale)
	}
	if *flagMode != "" {
		cfg.Build.Mode = *flagMode
	}
	if *flagIndex16 {
		cfg.Build.Index16 = true
	}
	if *flagWorkers > 0 {
		cfg.Build.Workers = *flagWorkers
	}
	if *flagOutput != "" {
		cfg.Output.Path = *flagOutput
	}
	if *flagFormat != "" {
		cfg.Output.Format = *flagFormat
	}
	if *flagEncoding != "" {
		cfg.Output.Encoding = *flagEncoding
	}
}
