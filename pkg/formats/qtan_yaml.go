package formats

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/Faultbox/surface-orientation/pkg/math"
)

// qtanDocument is the YAML form of a QTAN file.
type qtanDocument struct {
	Version  string       `yaml:"version"`
	Encoding string       `yaml:"encoding"`
	Count    int          `yaml:"count"`
	Quats    [][4]float32 `yaml:"quats,omitempty,flow"`
	Packed   [][4]int16   `yaml:"packed,omitempty,flow"`
}

// MarshalYAML encodes the file as a YAML document, one [x, y, z, w] row per
// vertex.
func (q *QTAN) MarshalYAML() ([]byte, error) {
	doc := qtanDocument{
		Version:  QTANCurrentVersion.String(),
		Encoding: q.Encoding.String(),
		Count:    q.VertexCount(),
		Packed:   q.Packed,
	}
	if q.Encoding == QTANFloat32 {
		doc.Quats = make([][4]float32, len(q.Quats))
		for i, v := range q.Quats {
			doc.Quats[i] = [4]float32{v.X, v.Y, v.Z, v.W}
		}
	}
	return yaml.Marshal(&doc)
}

// ParseQTANYAML parses the YAML form produced by MarshalYAML.
func ParseQTANYAML(data []byte) (*QTAN, error) {
	var doc qtanDocument
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parsing QTAN yaml: %w", err)
	}

	var version QTANVersion
	if _, err := fmt.Sscanf(doc.Version, "%d.%d", &version.Major, &version.Minor); err != nil {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedQTANVersion, doc.Version)
	}
	if version.Major != QTANCurrentVersion.Major {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedQTANVersion, version)
	}
	enc, err := ParseQTANEncoding(doc.Encoding)
	if err != nil {
		return nil, err
	}

	if (enc == QTANFloat32 && len(doc.Packed) > 0) || (enc == QTANSNorm16 && len(doc.Quats) > 0) {
		return nil, fmt.Errorf("%w: %s document has rows of the other encoding", ErrQTANEncodingMismatch, enc)
	}

	q := &QTAN{Version: version, Encoding: enc, Packed: doc.Packed}
	for _, v := range doc.Quats {
		q.Quats = append(q.Quats, math.Quat{X: v[0], Y: v[1], Z: v[2], W: v[3]})
	}
	if q.VertexCount() != doc.Count {
		return nil, fmt.Errorf("%w: count %d, have %d", ErrTruncatedQTANData, doc.Count, q.VertexCount())
	}
	return q, nil
}
