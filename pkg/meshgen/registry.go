package meshgen

import (
	"fmt"
	"sort"
)

// Params configures a named generator.
type Params struct {
	Cols     int  `yaml:"cols"`
	Rows     int  `yaml:"rows"`
	Rings    int  `yaml:"rings"`
	Segments int  `yaml:"segments"`
	Mirror   bool `yaml:"mirror"`
}

var generators = map[string]func(Params) *Mesh{
	"quad":   func(Params) *Mesh { return Quad() },
	"grid":   func(p Params) *Mesh { return Grid(max(p.Cols, 1), max(p.Rows, 1)) },
	"sphere": func(p Params) *Mesh { return Sphere(max(p.Rings, 2), max(p.Segments, 3)) },
	"cube":   func(p Params) *Mesh { return Cube(p.Mirror) },
}

// Names returns the available generator names, sorted.
func Names() []string {
	names := make([]string, 0, len(generators))
	for name := range generators {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Generate builds the named mesh.
func Generate(name string, p Params) (*Mesh, error) {
	gen, ok := generators[name]
	if !ok {
		return nil, fmt.Errorf("unknown mesh %q (available: %v)", name, Names())
	}
	return gen(p), nil
}
