package uasset

import (
	"encoding/binary"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/meigma/pak/internal/cursor"
	"github.com/meigma/pak/internal/paktype"
	"github.com/meigma/pak/internal/sizing"
)

// NameTable is the interned name table of a header member. Indexes are
// 64-bit: the low half selects a base name and a non-zero high half N
// denotes instance N-1, written "base_{N-1}".
type NameTable struct {
	layout Layout

	header  []byte
	entries [][]byte
	footer  []byte

	names []string
	index map[string]uint32
}

// ParseNameTable reads the name table of a header member. The header bytes
// before the first entry and the footer bytes after the last one are kept
// so Build can reproduce the member.
func ParseNameTable(data []byte, layout Layout) (*NameTable, error) {
	if len(data) < layout.headerSize() {
		return nil, fmt.Errorf("%w: header is %d bytes, want at least %d",
			ErrTruncated, len(data), layout.headerSize())
	}
	count := int32(binary.LittleEndian.Uint32(data[layout.NameCount:]))
	start := int32(binary.LittleEndian.Uint32(data[layout.NameOffset:]))
	if count < 0 {
		return nil, fmt.Errorf("%w: name count %d", ErrMalformed, count)
	}
	if int(start) < layout.headerSize() || int(start) > len(data) {
		return nil, fmt.Errorf("%w: name table offset %d in %d bytes", ErrMalformed, start, len(data))
	}

	nt := &NameTable{
		layout: layout,
		header: append([]byte(nil), data[:start]...),
		index:  make(map[string]uint32, min(int(count), len(data)/9)),
	}
	r := cursor.NewReader(data)
	if err := r.SetOffset(int(start)); err != nil {
		return nil, err
	}
	for i := range count {
		from := r.Offset()
		name, err := r.FString()
		if err != nil {
			return nil, fmt.Errorf("name %d: %w", i, err)
		}
		if err := r.Skip(4); err != nil {
			return nil, fmt.Errorf("name %d hash: %w", i, err)
		}
		raw, err := r.Slice(from, r.Offset())
		if err != nil {
			return nil, err
		}
		nt.append(name, append([]byte(nil), raw...))
	}
	if r.Remaining() < layout.footerSize() {
		return nil, fmt.Errorf("%w: footer is %d bytes, want at least %d",
			ErrTruncated, r.Remaining(), layout.footerSize())
	}
	footer, err := r.Bytes(r.Remaining())
	if err != nil {
		return nil, err
	}
	nt.footer = footer
	return nt, nil
}

func (nt *NameTable) append(name string, raw []byte) {
	if _, ok := nt.index[name]; !ok {
		nt.index[name] = uint32(len(nt.names))
	}
	nt.names = append(nt.names, name)
	nt.entries = append(nt.entries, raw)
}

// Len returns the number of base names.
func (nt *NameTable) Len() int {
	return len(nt.names)
}

// Names returns the base names in index order.
func (nt *NameTable) Names() []string {
	return append([]string(nil), nt.names...)
}

// Contains reports whether name is a base name of the table.
func (nt *NameTable) Contains(name string) bool {
	_, ok := nt.index[name]
	return ok
}

// Name resolves an index to its qualified name.
func (nt *NameTable) Name(idx uint64) (string, error) {
	base := idx & math.MaxUint32
	if base >= uint64(len(nt.names)) {
		return "", fmt.Errorf("%w: index %d of %d names", ErrUnknownName, base, len(nt.names))
	}
	name := nt.names[base]
	if inst := idx >> 32; inst != 0 {
		return name + "_" + strconv.FormatUint(inst-1, 10), nil
	}
	return name, nil
}

// Index resolves a qualified name to its index. A name that is not a base
// name is split at its last underscore into base and instance number.
func (nt *NameTable) Index(name string) (uint64, error) {
	if i, ok := nt.index[name]; ok {
		return uint64(i), nil
	}
	if i := strings.LastIndexByte(name, '_'); i >= 0 {
		if n, ok := instance(name[i+1:]); ok {
			if base, ok := nt.index[name[:i]]; ok {
				return (n+1)<<32 | uint64(base), nil
			}
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownName, name)
}

// instance parses a canonical decimal instance number: no sign and no
// leading zeros, so every packed index has exactly one spelling.
func instance(s string) (uint64, bool) {
	if s == "" || (len(s) > 1 && s[0] == '0') {
		return 0, false
	}
	n, err := strconv.ParseUint(s, 10, 32)
	if err != nil || n == math.MaxUint32 {
		return 0, false
	}
	return n, true
}

// Build reassembles the header member. When streamSize is not negative the
// footer's companion size field is set to streamSize-4.
func (nt *NameTable) Build(streamSize int64) ([]byte, error) {
	if streamSize >= 0 && streamSize < 4 {
		return nil, fmt.Errorf("%w: stream size %d", ErrMalformed, streamSize)
	}
	size := len(nt.header) + len(nt.footer)
	for _, e := range nt.entries {
		size += len(e)
	}
	out := make([]byte, 0, size)
	out = append(out, nt.header...)
	for _, e := range nt.entries {
		out = append(out, e...)
	}
	footer := len(out)
	out = append(out, nt.footer...)
	if streamSize >= 0 {
		binary.LittleEndian.PutUint64(out[footer+nt.layout.FooterStreamSize:], uint64(streamSize-4))
	}
	return out, nil
}

// AddEntry appends name to the table and returns its index. Names already
// present are left alone. The header fields listed in the layout, the name
// count and the footer serial offset are advanced to account for the new
// entry.
//
// New entries carry a zero hash; the engine's name hash is not computed.
func (nt *NameTable) AddEntry(name string) (uint64, error) {
	if i, ok := nt.index[name]; ok {
		return uint64(i), nil
	}
	if len(nt.names) >= math.MaxInt32 {
		return 0, fmt.Errorf("%w: name table is full", paktype.ErrSizeOverflow)
	}
	w := cursor.NewWriter(len(name) + 9)
	if err := w.FString(name); err != nil {
		return 0, err
	}
	w.Uint32(0)
	entry := w.Bytes()
	grow, err := sizing.ToInt32(len(entry), paktype.ErrSizeOverflow)
	if err != nil {
		return 0, err
	}

	for _, off := range nt.layout.Shifted {
		if v := int32(binary.LittleEndian.Uint32(nt.header[off:])); v != 0 {
			binary.LittleEndian.PutUint32(nt.header[off:], uint32(v+grow))
		}
	}
	count := binary.LittleEndian.Uint32(nt.header[nt.layout.NameCount:])
	binary.LittleEndian.PutUint32(nt.header[nt.layout.NameCount:], count+1)
	serial := nt.footer[nt.layout.FooterSerialOffset:]
	binary.LittleEndian.PutUint64(serial, binary.LittleEndian.Uint64(serial)+uint64(grow))

	idx := uint64(len(nt.names))
	nt.append(name, entry)
	return idx, nil
}
