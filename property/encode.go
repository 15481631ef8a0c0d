package property

import (
	"fmt"

	"github.com/meigma/pak/internal/cursor"
)

type encoder struct {
	w     *cursor.Writer
	names Names
	none  uint64
}

func newEncoder(names Names, capacity int) (*encoder, error) {
	none, err := names.Index(NoneName)
	if err != nil {
		return nil, fmt.Errorf("resolve %s sentinel: %w", NoneName, err)
	}
	return &encoder{w: cursor.NewWriter(capacity), names: names, none: none}, nil
}

// Encode serializes a complete property stream: the table, the None
// sentinel, four zero bytes and the stream trailer. Every name is resolved
// again through names, so renamed values and added names take effect.
func Encode(t *Table, names Names) ([]byte, error) {
	e, err := newEncoder(names, 4096)
	if err != nil {
		return nil, err
	}
	if err := e.table(t); err != nil {
		return nil, err
	}
	e.w.Zero(4)
	e.w.Raw(StreamTrailer[:])
	return e.w.Bytes(), nil
}

// EncodeTable serializes one table followed by the None sentinel.
func EncodeTable(t *Table, names Names) ([]byte, error) {
	e, err := newEncoder(names, 256)
	if err != nil {
		return nil, err
	}
	if err := e.table(t); err != nil {
		return nil, err
	}
	return e.w.Bytes(), nil
}

func (e *encoder) table(t *Table) error {
	if t != nil {
		for _, f := range t.fields {
			if err := e.name(f.Name); err != nil {
				return fmt.Errorf("field name: %w", err)
			}
			if err := e.name(string(f.Property.Kind())); err != nil {
				return fmt.Errorf("field %q: %w", f.Name, err)
			}
			if err := f.Property.encode(e); err != nil {
				return fmt.Errorf("field %q: %w", f.Name, err)
			}
		}
	}
	e.w.Uint64(e.none)
	return nil
}

func (e *encoder) name(s string) error {
	idx, err := e.names.Index(s)
	if err != nil {
		return err
	}
	e.w.Uint64(idx)
	return nil
}

// reserve writes a placeholder size field and returns its offset.
func (e *encoder) reserve() int {
	off := e.w.Len()
	e.w.Uint64(0)
	return off
}

// fill sets the size field at off to the bytes written since start.
func (e *encoder) fill(off, start int) {
	e.w.PutUint64At(off, uint64(e.w.Len()-start))
}

func (p *Int) encode(e *encoder) error {
	e.w.Uint64(p.kind.width())
	e.w.Uint8(0)
	switch p.kind {
	case KindInt8:
		e.w.Int8(int8(p.value))
	case KindInt16:
		e.w.Int16(int16(p.value))
	case KindInt:
		e.w.Int32(int32(p.value))
	default:
		e.w.Int64(p.value)
	}
	return nil
}

func (p *UInt) encode(e *encoder) error {
	e.w.Uint64(p.kind.width())
	e.w.Uint8(0)
	switch p.kind {
	case KindUInt16:
		e.w.Uint16(uint16(p.value))
	case KindUInt32:
		e.w.Uint32(uint32(p.value))
	default:
		e.w.Uint64(p.value)
	}
	return nil
}

func (p *Float) encode(e *encoder) error {
	e.w.Uint64(4)
	e.w.Uint8(0)
	e.w.Float32(p.Value)
	return nil
}

func (p *Bool) encode(e *encoder) error {
	e.w.Uint64(0)
	if p.Value {
		e.w.Uint8(1)
	} else {
		e.w.Uint8(0)
	}
	e.w.Uint8(0)
	return nil
}

func (p *Str) encode(e *encoder) error {
	e.w.Uint64(uint64(len(p.Raw)))
	e.w.Uint8(0)
	e.w.Raw(p.Raw)
	return nil
}

func (p *Name) encode(e *encoder) error {
	e.w.Uint64(8)
	e.w.Uint8(0)
	return e.name(p.Value)
}

func (p *Enum) encode(e *encoder) error {
	e.w.Uint64(8)
	if err := e.name(p.Type); err != nil {
		return err
	}
	e.w.Uint8(0)
	return e.name(p.Value)
}

func (p *Byte) encode(e *encoder) error {
	e.w.Uint64(1)
	e.w.Uint64(p.EnumName)
	e.w.Uint8(0)
	e.w.Uint8(p.Value)
	return nil
}

func (p *Struct) encode(e *encoder) error {
	off := e.reserve()
	if err := e.name(p.Type); err != nil {
		return err
	}
	e.w.Raw(p.Reserved[:])
	start := e.w.Len()
	switch p.Type {
	case StructVector:
		for _, v := range p.Vector {
			e.w.Int32(v)
		}
	case StructLinearColor:
		for _, v := range p.Color {
			e.w.Float32(v)
		}
	default:
		if err := e.table(p.Table); err != nil {
			return fmt.Errorf("struct %s: %w", p.Type, err)
		}
	}
	e.fill(off, start)
	return nil
}

func (p *Text) encode(e *encoder) error {
	off := e.reserve()
	e.w.Uint8(0)
	start := e.w.Len()
	switch {
	case p.raw != nil && p.fields() == p.orig:
		e.w.Raw(p.raw)
	case p.Absent():
		e.w.Raw(p.Flags[:])
		e.w.Int8(textHistoryNone)
		e.w.Int32(0)
	default:
		e.w.Raw(p.Flags[:])
		e.w.Int8(textHistoryBase)
		if err := e.w.FString(p.Namespace); err != nil {
			return err
		}
		e.w.Int32(textKeyMarker)
		if err := e.w.HexDigest(p.Key); err != nil {
			return err
		}
		if err := e.w.FString(p.Value); err != nil {
			return err
		}
	}
	e.fill(off, start)
	return nil
}

func (p *Array) encode(e *encoder) error {
	off := e.reserve()
	if err := e.name(string(p.Elem)); err != nil {
		return err
	}
	e.w.Uint8(0)
	start := e.w.Len()
	e.w.Int32(int32(p.Len()))
	switch p.Elem {
	case KindInt:
		for _, v := range p.ints {
			e.w.Int32(v)
		}
	case KindFloat:
		for _, v := range p.floats {
			e.w.Float32(v)
		}
	case KindEnum, KindName:
		for _, v := range p.names {
			if err := e.name(v); err != nil {
				return err
			}
		}
	case KindStruct:
		if err := e.name(p.StructName); err != nil {
			return err
		}
		if err := e.name(string(KindStruct)); err != nil {
			return err
		}
		sizeOff := e.reserve()
		if err := e.name(p.StructType); err != nil {
			return err
		}
		e.w.Raw(p.Reserved[:])
		elems := e.w.Len()
		for i, t := range p.structs {
			if err := e.table(t); err != nil {
				return fmt.Errorf("struct %s element %d: %w", p.StructType, i, err)
			}
		}
		e.fill(sizeOff, elems)
	default:
		return fmt.Errorf("%w: array of %s", ErrUnsupportedType, p.Elem)
	}
	e.fill(off, start)
	return nil
}

func (p *Map) encode(e *encoder) error {
	off := e.reserve()
	if err := e.name(string(p.Key)); err != nil {
		return err
	}
	if err := e.name(string(KindStruct)); err != nil {
		return err
	}
	e.w.Uint8(p.Reserved[0])
	start := e.w.Len()
	e.w.Raw(p.Reserved[1:])
	e.w.Int32(int32(len(p.entries)))
	for i, entry := range p.entries {
		switch p.Key {
		case KindInt:
			e.w.Int32(entry.Key.Int)
		case KindName, KindEnum:
			if err := e.name(entry.Key.Name); err != nil {
				return err
			}
		default:
			return fmt.Errorf("%w: map keys of %s", ErrUnsupportedType, p.Key)
		}
		if err := e.table(entry.Value); err != nil {
			return fmt.Errorf("map entry %d: %w", i, err)
		}
	}
	e.fill(off, start)
	return nil
}
