package property

import (
	"bytes"
	"fmt"

	"github.com/meigma/pak/internal/cursor"
	"github.com/meigma/pak/internal/paktype"
	"github.com/meigma/pak/internal/sizing"
)

// Names resolves name indexes in both directions. *uasset.NameTable
// implements it.
type Names interface {
	Name(idx uint64) (string, error)
	Index(name string) (uint64, error)
}

// StreamTrailer ends every property stream after the closing None and four
// zero bytes.
var StreamTrailer = [4]byte{0xC1, 0x83, 0x2A, 0x9E}

type decodeFunc func(d *decoder) (Property, error)

// decoders is the tag dispatch table. It is filled in init because the
// container decoders recurse into decodeTable.
var decoders map[Kind]decodeFunc

func init() {
	decoders = map[Kind]decodeFunc{
		KindInt8:   decodeInt(KindInt8),
		KindInt16:  decodeInt(KindInt16),
		KindInt:    decodeInt(KindInt),
		KindInt64:  decodeInt(KindInt64),
		KindUInt16: decodeUInt(KindUInt16),
		KindUInt32: decodeUInt(KindUInt32),
		KindUInt64: decodeUInt(KindUInt64),
		KindFloat:  decodeFloat,
		KindBool:   decodeBool,
		KindStr:    decodeStr,
		KindName:   decodeName,
		KindEnum:   decodeEnum,
		KindByte:   decodeByte,
		KindStruct: decodeStruct,
		KindText:   decodeText,
		KindArray:  decodeArray,
		KindMap:    decodeMap,
	}
}

type decoder struct {
	r     *cursor.Reader
	names Names
	none  uint64
}

func newDecoder(data []byte, names Names) (*decoder, error) {
	none, err := names.Index(NoneName)
	if err != nil {
		return nil, fmt.Errorf("resolve %s sentinel: %w", NoneName, err)
	}
	return &decoder{r: cursor.NewReader(data), names: names, none: none}, nil
}

// Decode parses a complete property stream: one table, the None sentinel,
// four zero bytes and the stream trailer.
func Decode(data []byte, names Names) (*Table, error) {
	d, err := newDecoder(data, names)
	if err != nil {
		return nil, err
	}
	t, err := d.table()
	if err != nil {
		return nil, err
	}
	tail, err := d.r.Bytes(8)
	if err != nil {
		return nil, fmt.Errorf("stream trailer: %w", err)
	}
	if !bytes.Equal(tail[:4], []byte{0, 0, 0, 0}) || !bytes.Equal(tail[4:], StreamTrailer[:]) {
		return nil, fmt.Errorf("%w: stream trailer % x", ErrMalformed, tail)
	}
	if n := d.r.Remaining(); n != 0 {
		return nil, fmt.Errorf("%w: %d bytes after stream trailer", ErrMalformed, n)
	}
	return t, nil
}

// DecodeTable parses one table terminated by None from the start of data
// and returns it with the number of bytes consumed.
func DecodeTable(data []byte, names Names) (*Table, int, error) {
	d, err := newDecoder(data, names)
	if err != nil {
		return nil, 0, err
	}
	t, err := d.table()
	if err != nil {
		return nil, 0, err
	}
	return t, d.r.Offset(), nil
}

func (d *decoder) table() (*Table, error) {
	t := NewTable()
	for {
		idx, err := d.r.Uint64()
		if err != nil {
			return nil, err
		}
		if idx == d.none {
			return t, nil
		}
		name, err := d.names.Name(idx)
		if err != nil {
			return nil, fmt.Errorf("field name: %w", err)
		}
		kind, err := d.kind()
		if err != nil {
			return nil, fmt.Errorf("field %q: %w", name, err)
		}
		fn, ok := decoders[kind]
		if !ok {
			return nil, fmt.Errorf("%w: field %q has tag %q", ErrUnsupportedType, name, kind)
		}
		p, err := fn(d)
		if err != nil {
			return nil, fmt.Errorf("field %q: %w", name, err)
		}
		t.add(Field{Name: name, Property: p})
	}
}

func (d *decoder) name() (string, error) {
	idx, err := d.r.Uint64()
	if err != nil {
		return "", err
	}
	return d.names.Name(idx)
}

func (d *decoder) kind() (Kind, error) {
	s, err := d.name()
	return Kind(s), err
}

// pad consumes the property-GUID flag, which must be clear.
func (d *decoder) pad() error {
	b, err := d.r.Uint8()
	if err != nil {
		return err
	}
	if b != 0 {
		return fmt.Errorf("%w: property GUID flag 0x%02x at offset %d", ErrMalformed, b, d.r.Offset()-1)
	}
	return nil
}

// size reads a declared size and checks it against want.
func (d *decoder) size(want uint64) error {
	n, err := d.r.Uint64()
	if err != nil {
		return err
	}
	if n != want {
		return fmt.Errorf("%w: declared size %d, want %d", ErrMalformed, n, want)
	}
	return nil
}

// span reads a declared size and returns the payload length it allows.
func (d *decoder) span() (int, error) {
	n, err := d.r.Uint64()
	if err != nil {
		return 0, err
	}
	if n > uint64(d.r.Remaining()) {
		return 0, fmt.Errorf("%w: declared size %d exceeds %d remaining bytes", ErrTruncated, n, d.r.Remaining())
	}
	return sizing.ToInt(int64(n), paktype.ErrSizeOverflow)
}

// expectConsumed checks that a payload declared as n bytes starting at
// start ended exactly where the reader now is.
func (d *decoder) expectConsumed(start, n int) error {
	if got := d.r.Offset() - start; got != n {
		return fmt.Errorf("%w: payload is %d bytes, declared %d", ErrMalformed, got, n)
	}
	return nil
}

func decodeInt(kind Kind) decodeFunc {
	return func(d *decoder) (Property, error) {
		if err := d.size(kind.width()); err != nil {
			return nil, err
		}
		if err := d.pad(); err != nil {
			return nil, err
		}
		var (
			v   int64
			err error
		)
		switch kind {
		case KindInt8:
			var x int8
			x, err = d.r.Int8()
			v = int64(x)
		case KindInt16:
			var x int16
			x, err = d.r.Int16()
			v = int64(x)
		case KindInt:
			var x int32
			x, err = d.r.Int32()
			v = int64(x)
		default:
			v, err = d.r.Int64()
		}
		if err != nil {
			return nil, err
		}
		return &Int{kind: kind, value: v}, nil
	}
}

func decodeUInt(kind Kind) decodeFunc {
	return func(d *decoder) (Property, error) {
		if err := d.size(kind.width()); err != nil {
			return nil, err
		}
		if err := d.pad(); err != nil {
			return nil, err
		}
		var (
			v   uint64
			err error
		)
		switch kind {
		case KindUInt16:
			var x uint16
			x, err = d.r.Uint16()
			v = uint64(x)
		case KindUInt32:
			var x uint32
			x, err = d.r.Uint32()
			v = uint64(x)
		default:
			v, err = d.r.Uint64()
		}
		if err != nil {
			return nil, err
		}
		return &UInt{kind: kind, value: v}, nil
	}
}

func decodeFloat(d *decoder) (Property, error) {
	if err := d.size(4); err != nil {
		return nil, err
	}
	if err := d.pad(); err != nil {
		return nil, err
	}
	v, err := d.r.Float32()
	if err != nil {
		return nil, err
	}
	return &Float{Value: v}, nil
}

func decodeBool(d *decoder) (Property, error) {
	if err := d.size(0); err != nil {
		return nil, err
	}
	v, err := d.r.Uint8()
	if err != nil {
		return nil, err
	}
	if v > 1 {
		return nil, fmt.Errorf("%w: bool value 0x%02x", ErrMalformed, v)
	}
	if err := d.pad(); err != nil {
		return nil, err
	}
	return &Bool{Value: v == 1}, nil
}

func decodeStr(d *decoder) (Property, error) {
	n, err := d.span()
	if err != nil {
		return nil, err
	}
	if err := d.pad(); err != nil {
		return nil, err
	}
	raw, err := d.r.Bytes(n)
	if err != nil {
		return nil, err
	}
	return &Str{Raw: raw}, nil
}

func decodeName(d *decoder) (Property, error) {
	if err := d.size(8); err != nil {
		return nil, err
	}
	if err := d.pad(); err != nil {
		return nil, err
	}
	v, err := d.name()
	if err != nil {
		return nil, err
	}
	return &Name{Value: v}, nil
}

func decodeEnum(d *decoder) (Property, error) {
	if err := d.size(8); err != nil {
		return nil, err
	}
	typ, err := d.name()
	if err != nil {
		return nil, err
	}
	if err := d.pad(); err != nil {
		return nil, err
	}
	v, err := d.name()
	if err != nil {
		return nil, err
	}
	return &Enum{Type: typ, Value: v}, nil
}

func decodeByte(d *decoder) (Property, error) {
	if err := d.size(1); err != nil {
		return nil, err
	}
	enum, err := d.r.Uint64()
	if err != nil {
		return nil, err
	}
	if err := d.pad(); err != nil {
		return nil, err
	}
	v, err := d.r.Uint8()
	if err != nil {
		return nil, err
	}
	return &Byte{EnumName: enum, Value: v}, nil
}

func decodeStruct(d *decoder) (Property, error) {
	n, err := d.span()
	if err != nil {
		return nil, err
	}
	p := &Struct{}
	if p.Type, err = d.name(); err != nil {
		return nil, err
	}
	if err := d.reserved(p.Reserved[:]); err != nil {
		return nil, err
	}
	start := d.r.Offset()
	switch p.Type {
	case StructVector:
		for i := range p.Vector {
			if p.Vector[i], err = d.r.Int32(); err != nil {
				return nil, err
			}
		}
	case StructLinearColor:
		for i := range p.Color {
			if p.Color[i], err = d.r.Float32(); err != nil {
				return nil, err
			}
		}
	default:
		if p.Table, err = d.table(); err != nil {
			return nil, fmt.Errorf("struct %s: %w", p.Type, err)
		}
	}
	if err := d.expectConsumed(start, n); err != nil {
		return nil, fmt.Errorf("struct %s: %w", p.Type, err)
	}
	return p, nil
}

func (d *decoder) reserved(dst []byte) error {
	b, err := d.r.Bytes(len(dst))
	if err != nil {
		return err
	}
	copy(dst, b)
	return nil
}

const (
	textHistoryBase = 0
	textHistoryNone = -1
	textKeyMarker   = 0x21
)

func decodeText(d *decoder) (Property, error) {
	n, err := d.span()
	if err != nil {
		return nil, err
	}
	if err := d.pad(); err != nil {
		return nil, err
	}
	start := d.r.Offset()
	p := &Text{}
	if err := d.reserved(p.Flags[:]); err != nil {
		return nil, err
	}
	history, err := d.r.Int8()
	if err != nil {
		return nil, err
	}
	switch history {
	case textHistoryNone:
		v, err := d.r.Int32()
		if err != nil {
			return nil, err
		}
		if v != 0 {
			return nil, fmt.Errorf("%w: absent text carries 0x%x", ErrMalformed, v)
		}
	case textHistoryBase:
		if p.Namespace, err = d.r.FString(); err != nil {
			return nil, err
		}
		marker, err := d.r.Int32()
		if err != nil {
			return nil, err
		}
		if marker != textKeyMarker {
			return nil, fmt.Errorf("%w: text key marker 0x%x", ErrMalformed, marker)
		}
		if p.Key, err = d.r.HexDigest(); err != nil {
			return nil, err
		}
		if p.Value, err = d.r.FString(); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("%w: text history type %d", ErrMalformed, history)
	}
	if err := d.expectConsumed(start, n); err != nil {
		return nil, fmt.Errorf("text: %w", err)
	}
	if p.raw, err = d.r.Slice(start, start+n); err != nil {
		return nil, err
	}
	p.raw = append([]byte(nil), p.raw...)
	p.orig = p.fields()
	return p, nil
}

// structHeaderSize is the element header of a struct array: name, tag,
// size, struct kind and the reserved bytes.
const structHeaderSize = 8 + 8 + 8 + 8 + ReservedSize

func decodeArray(d *decoder) (Property, error) {
	n, err := d.span()
	if err != nil {
		return nil, err
	}
	elem, err := d.kind()
	if err != nil {
		return nil, err
	}
	if err := d.pad(); err != nil {
		return nil, err
	}
	start := d.r.Offset()
	count, err := d.r.Int32()
	if err != nil {
		return nil, err
	}
	if count < 0 {
		return nil, fmt.Errorf("%w: array count %d", ErrMalformed, count)
	}
	p := &Array{Elem: elem}
	switch elem {
	case KindInt:
		if err := d.fixedElems(n, count, 4); err != nil {
			return nil, err
		}
		p.ints = make([]int32, count)
		for i := range p.ints {
			if p.ints[i], err = d.r.Int32(); err != nil {
				return nil, err
			}
		}
	case KindFloat:
		if err := d.fixedElems(n, count, 4); err != nil {
			return nil, err
		}
		p.floats = make([]float32, count)
		for i := range p.floats {
			if p.floats[i], err = d.r.Float32(); err != nil {
				return nil, err
			}
		}
	case KindEnum, KindName:
		if err := d.fixedElems(n, count, 8); err != nil {
			return nil, err
		}
		p.names = make([]string, count)
		for i := range p.names {
			if p.names[i], err = d.name(); err != nil {
				return nil, err
			}
		}
	case KindStruct:
		if err := d.structElems(p, count); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("%w: array of %s", ErrUnsupportedType, elem)
	}
	if err := d.expectConsumed(start, n); err != nil {
		return nil, fmt.Errorf("array of %s: %w", elem, err)
	}
	return p, nil
}

func (d *decoder) fixedElems(n int, count int32, width int) error {
	if want := 4 + int(count)*width; n != want {
		return fmt.Errorf("%w: array of %d elements declares %d bytes, want %d", ErrMalformed, count, n, want)
	}
	return nil
}

func (d *decoder) structElems(p *Array, count int32) error {
	var err error
	if p.StructName, err = d.name(); err != nil {
		return err
	}
	tag, err := d.kind()
	if err != nil {
		return err
	}
	if tag != KindStruct {
		return fmt.Errorf("%w: struct array element tag %q", ErrMalformed, tag)
	}
	size, err := d.r.Uint64()
	if err != nil {
		return err
	}
	if p.StructType, err = d.name(); err != nil {
		return err
	}
	if err := d.reserved(p.Reserved[:]); err != nil {
		return err
	}
	start := d.r.Offset()
	p.structs = make([]*Table, 0, min(int(count), d.r.Remaining()/8))
	for range count {
		t, err := d.table()
		if err != nil {
			return fmt.Errorf("struct %s element %d: %w", p.StructType, len(p.structs), err)
		}
		p.structs = append(p.structs, t)
	}
	if got := uint64(d.r.Offset() - start); got != size {
		return fmt.Errorf("%w: struct elements are %d bytes, declared %d", ErrMalformed, got, size)
	}
	return nil
}

func decodeMap(d *decoder) (Property, error) {
	n, err := d.span()
	if err != nil {
		return nil, err
	}
	p := &Map{}
	if p.Key, err = d.kind(); err != nil {
		return nil, err
	}
	value, err := d.kind()
	if err != nil {
		return nil, err
	}
	if value != KindStruct {
		return nil, fmt.Errorf("%w: map values of %s", ErrUnsupportedType, value)
	}
	if err := d.reserved(p.Reserved[:1]); err != nil {
		return nil, err
	}
	start := d.r.Offset()
	if err := d.reserved(p.Reserved[1:]); err != nil {
		return nil, err
	}
	if !bytes.Equal(p.Reserved[1:], []byte{0, 0, 0, 0}) {
		return nil, fmt.Errorf("%w: map removes keys", ErrMalformed)
	}
	count, err := d.r.Int32()
	if err != nil {
		return nil, err
	}
	if count < 0 {
		return nil, fmt.Errorf("%w: map count %d", ErrMalformed, count)
	}
	p.entries = make([]MapEntry, 0, min(int(count), d.r.Remaining()/8))
	for range count {
		var e MapEntry
		switch p.Key {
		case KindInt:
			if e.Key.Int, err = d.r.Int32(); err != nil {
				return nil, err
			}
		case KindName, KindEnum:
			if e.Key.Name, err = d.name(); err != nil {
				return nil, err
			}
		default:
			return nil, fmt.Errorf("%w: map keys of %s", ErrUnsupportedType, p.Key)
		}
		if e.Value, err = d.table(); err != nil {
			return nil, fmt.Errorf("map entry %d: %w", len(p.entries), err)
		}
		p.entries = append(p.entries, e)
	}
	if err := d.expectConsumed(start, n); err != nil {
		return nil, fmt.Errorf("map: %w", err)
	}
	return p, nil
}
