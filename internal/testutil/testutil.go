// Package testutil builds synthetic containers, name tables and property
// streams byte by byte for tests.
package testutil

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/meigma/pak/internal/paktype"
)

// MockByteSource implements a simple in-memory byte source for tests.
type MockByteSource struct {
	data []byte
}

// NewMockByteSource returns a byte source backed by the provided data.
func NewMockByteSource(data []byte) *MockByteSource {
	return &MockByteSource{data: data}
}

// ReadAt implements io.ReaderAt semantics over the backing slice.
func (m *MockByteSource) ReadAt(p []byte, off int64) (int, error) {
	if off >= int64(len(m.data)) {
		return 0, io.EOF
	}
	n := copy(p, m.data[off:])
	if n < len(p) {
		return n, io.EOF
	}
	return n, nil
}

// Size returns the total size of the backing data.
func (m *MockByteSource) Size() int64 {
	return int64(len(m.data))
}

// Names is a minimal name resolver. Unknown names are appended by Add and
// by the Stream builder, never by Index.
type Names struct {
	list  []string
	index map[string]uint64
}

// NewNames returns a resolver holding names in index order.
func NewNames(names ...string) *Names {
	n := &Names{index: make(map[string]uint64)}
	for _, s := range names {
		n.Add(s)
	}
	return n
}

// Add returns the index of name, appending it if needed.
func (n *Names) Add(name string) uint64 {
	if idx, ok := n.index[name]; ok {
		return idx
	}
	idx := uint64(len(n.list))
	n.list = append(n.list, name)
	n.index[name] = idx
	return idx
}

// List returns the names in index order.
func (n *Names) List() []string {
	return append([]string(nil), n.list...)
}

// Name resolves an index, including the instance number in the high half.
func (n *Names) Name(idx uint64) (string, error) {
	base := idx & math.MaxUint32
	if base >= uint64(len(n.list)) {
		return "", fmt.Errorf("%w: index %d", paktype.ErrUnknownName, base)
	}
	if inst := idx >> 32; inst > 0 {
		return n.list[base] + "_" + strconv.FormatUint(inst-1, 10), nil
	}
	return n.list[base], nil
}

// Index resolves a name, including a trailing _N instance suffix.
func (n *Names) Index(name string) (uint64, error) {
	if idx, ok := n.index[name]; ok {
		return idx, nil
	}
	if i := strings.LastIndexByte(name, '_'); i >= 0 {
		if num, err := strconv.ParseUint(name[i+1:], 10, 31); err == nil {
			if idx, ok := n.index[name[:i]]; ok {
				return (num+1)<<32 | idx, nil
			}
		}
	}
	return 0, fmt.Errorf("%w: %q", paktype.ErrUnknownName, name)
}

// Stream assembles little-endian bytes. Name writes the index of a name,
// adding it to the resolver when missing.
type Stream struct {
	names *Names
	buf   []byte
}

// NewStream returns an empty stream that resolves names through names.
func NewStream(names *Names) *Stream {
	return &Stream{names: names}
}

// Bytes returns the assembled bytes.
func (s *Stream) Bytes() []byte { return s.buf }

// Len returns the number of bytes assembled so far.
func (s *Stream) Len() int { return len(s.buf) }

func (s *Stream) U8(v uint8) *Stream {
	s.buf = append(s.buf, v)
	return s
}

func (s *Stream) U16(v uint16) *Stream {
	s.buf = binary.LittleEndian.AppendUint16(s.buf, v)
	return s
}

func (s *Stream) U32(v uint32) *Stream {
	s.buf = binary.LittleEndian.AppendUint32(s.buf, v)
	return s
}

func (s *Stream) I32(v int32) *Stream { return s.U32(uint32(v)) }

func (s *Stream) U64(v uint64) *Stream {
	s.buf = binary.LittleEndian.AppendUint64(s.buf, v)
	return s
}

func (s *Stream) I64(v int64) *Stream { return s.U64(uint64(v)) }

func (s *Stream) F32(v float32) *Stream { return s.U32(math.Float32bits(v)) }

func (s *Stream) Zero(n int) *Stream {
	s.buf = append(s.buf, make([]byte, n)...)
	return s
}

func (s *Stream) Raw(p []byte) *Stream {
	s.buf = append(s.buf, p...)
	return s
}

// Name writes the 8-byte index of name.
func (s *Stream) Name(name string) *Stream {
	return s.U64(s.names.Add(name))
}

// FString writes an ASCII string with its length and terminator.
func (s *Stream) FString(v string) *Stream {
	s.I32(int32(len(v) + 1))
	s.buf = append(s.buf, v...)
	return s.U8(0)
}

// Tag writes a field name and tag.
func (s *Stream) Tag(field, tag string) *Stream {
	return s.Name(field).Name(tag)
}

// Int writes a complete IntProperty field.
func (s *Stream) Int(field string, v int32) *Stream {
	return s.Tag(field, "IntProperty").U64(4).U8(0).I32(v)
}

// Float writes a complete FloatProperty field.
func (s *Stream) Float(field string, v float32) *Stream {
	return s.Tag(field, "FloatProperty").U64(4).U8(0).F32(v)
}

// Bool writes a complete BoolProperty field.
func (s *Stream) Bool(field string, v bool) *Stream {
	b := uint8(0)
	if v {
		b = 1
	}
	return s.Tag(field, "BoolProperty").U64(0).U8(b).U8(0)
}

// Enum writes a complete EnumProperty field.
func (s *Stream) Enum(field, typ, value string) *Stream {
	return s.Tag(field, "EnumProperty").U64(8).Name(typ).U8(0).Name(value)
}

// None writes the table terminator.
func (s *Stream) None() *Stream {
	return s.Name("None")
}

// End writes the table terminator, four zero bytes and the stream trailer.
func (s *Stream) End() *Stream {
	return s.None().Zero(4).Raw([]byte{0xC1, 0x83, 0x2A, 0x9E})
}
