// Package formats reads and writes files holding packed tangent-frame
// quaternions.
package formats

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/Faultbox/surface-orientation/pkg/math"
)

// QTAN format errors.
var (
	ErrInvalidQTANMagic       = errors.New("invalid QTAN magic: expected 'QTAN'")
	ErrUnsupportedQTANVersion = errors.New("unsupported QTAN version")
	ErrTruncatedQTANData      = errors.New("truncated QTAN data")
	ErrUnknownQTANEncoding    = errors.New("unknown QTAN encoding")
	ErrQTANEncodingMismatch   = errors.New("QTAN rows do not match encoding")
)

const (
	qtanMagic      = "QTAN"
	qtanHeaderSize = 12
)

// QTANVersion represents the QTAN file version.
type QTANVersion struct {
	Major uint8
	Minor uint8
}

// String returns the version as "Major.Minor".
func (v QTANVersion) String() string {
	return fmt.Sprintf("%d.%d", v.Major, v.Minor)
}

// QTANCurrentVersion is the version written by Marshal.
var QTANCurrentVersion = QTANVersion{Major: 1, Minor: 0}

// QTANEncoding selects how quaternion components are stored.
type QTANEncoding uint8

// Encodings.
const (
	QTANFloat32 QTANEncoding = 0 // 4 x float32 per vertex
	QTANSNorm16 QTANEncoding = 1 // 4 x int16 per vertex, value/32767
)

// String returns the encoding name.
func (e QTANEncoding) String() string {
	switch e {
	case QTANFloat32:
		return "float32"
	case QTANSNorm16:
		return "snorm16"
	default:
		return fmt.Sprintf("Unknown(%d)", e)
	}
}

// ParseQTANEncoding converts a name to an encoding.
func ParseQTANEncoding(name string) (QTANEncoding, error) {
	switch name {
	case "float32", "":
		return QTANFloat32, nil
	case "snorm16":
		return QTANSNorm16, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownQTANEncoding, name)
	}
}

// elemSize returns the bytes per vertex.
func (e QTANEncoding) elemSize() int {
	if e == QTANSNorm16 {
		return 8
	}
	return 16
}

// QTAN is a parsed quaternion file. Exactly one of Quats and Packed is
// populated, depending on Encoding.
type QTAN struct {
	Version  QTANVersion
	Encoding QTANEncoding
	Quats    []math.Quat
	Packed   [][4]int16
}

// VertexCount returns the number of stored quaternions.
func (q *QTAN) VertexCount() int {
	if q.Encoding == QTANSNorm16 {
		return len(q.Packed)
	}
	return len(q.Quats)
}

// Marshal encodes the file. Layout (little endian):
//
//	"QTAN" | minor u8 | major u8 | encoding u8 | reserved u8 | count u32 | data
func (q *QTAN) Marshal() ([]byte, error) {
	if q.Encoding != QTANFloat32 && q.Encoding != QTANSNorm16 {
		return nil, fmt.Errorf("%w: %d", ErrUnknownQTANEncoding, q.Encoding)
	}

	buf := new(bytes.Buffer)
	buf.Grow(qtanHeaderSize + q.VertexCount()*q.Encoding.elemSize())

	buf.WriteString(qtanMagic)
	buf.WriteByte(QTANCurrentVersion.Minor)
	buf.WriteByte(QTANCurrentVersion.Major)
	buf.WriteByte(byte(q.Encoding))
	buf.WriteByte(0)
	if err := binary.Write(buf, binary.LittleEndian, uint32(q.VertexCount())); err != nil {
		return nil, fmt.Errorf("writing QTAN header: %w", err)
	}

	var rows any = q.Quats
	if q.Encoding == QTANSNorm16 {
		rows = q.Packed
	}
	if err := binary.Write(buf, binary.LittleEndian, rows); err != nil {
		return nil, fmt.Errorf("writing QTAN rows: %w", err)
	}
	return buf.Bytes(), nil
}

// WriteTo writes the encoded file to w.
func (q *QTAN) WriteTo(w io.Writer) (int64, error) {
	data, err := q.Marshal()
	if err != nil {
		return 0, err
	}
	n, err := w.Write(data)
	return int64(n), err
}

// ParseQTAN parses a QTAN file from raw bytes.
func ParseQTAN(data []byte) (*QTAN, error) {
	if len(data) < qtanHeaderSize {
		return nil, ErrTruncatedQTANData
	}

	if string(data[0:4]) != qtanMagic {
		return nil, ErrInvalidQTANMagic
	}

	// Version is stored as [minor, major]
	version := QTANVersion{
		Major: data[5],
		Minor: data[4],
	}
	if version.Major != QTANCurrentVersion.Major {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedQTANVersion, version)
	}

	enc := QTANEncoding(data[6])
	if enc != QTANFloat32 && enc != QTANSNorm16 {
		return nil, fmt.Errorf("%w: %d", ErrUnknownQTANEncoding, data[6])
	}

	count := int(binary.LittleEndian.Uint32(data[8:12]))
	body := data[qtanHeaderSize:]
	if need := count * enc.elemSize(); len(body) < need {
		return nil, fmt.Errorf("%w: %d vertices need %d bytes, have %d", ErrTruncatedQTANData, count, need, len(body))
	}

	q := &QTAN{Version: version, Encoding: enc}
	r := bytes.NewReader(body)
	if enc == QTANSNorm16 {
		q.Packed = make([][4]int16, count)
		if err := binary.Read(r, binary.LittleEndian, q.Packed); err != nil {
			return nil, fmt.Errorf("%w: reading packed quaternions", ErrTruncatedQTANData)
		}
	} else {
		q.Quats = make([]math.Quat, count)
		if err := binary.Read(r, binary.LittleEndian, q.Quats); err != nil {
			return nil, fmt.Errorf("%w: reading quaternions", ErrTruncatedQTANData)
		}
	}
	return q, nil
}

// ParseQTANFile parses a QTAN file from disk.
func ParseQTANFile(path string) (*QTAN, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading QTAN file: %w", err)
	}
	return ParseQTAN(data)
}
