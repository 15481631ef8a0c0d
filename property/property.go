package property

import (
	"fmt"

	"github.com/meigma/pak/internal/cursor"
)

// Property is one tagged value of a table. The set of implementations is
// closed: *Int, *UInt, *Float, *Bool, *Str, *Name, *Enum, *Byte, *Struct,
// *Text, *Array and *Map.
type Property interface {
	// Kind returns the tag the property is serialized with.
	Kind() Kind

	// Clone returns a deep copy that shares no mutable state with the receiver.
	Clone() Property

	encode(e *encoder) error
}

// Int is a signed integer of 1, 2, 4 or 8 bytes.
type Int struct {
	kind  Kind
	value int64
}

// NewInt returns an integer property of the given signed kind.
func NewInt(kind Kind, v int64) (*Int, error) {
	if !kind.signed() {
		return nil, fmt.Errorf("%w: %s is not a signed integer kind", ErrTypeMismatch, kind)
	}
	p := &Int{kind: kind}
	if err := p.Set(v); err != nil {
		return nil, err
	}
	return p, nil
}

// Kind returns the signed integer kind it was created with.
func (p *Int) Kind() Kind { return p.kind }

// Value returns the stored integer.
func (p *Int) Value() int64 { return p.value }

// Set replaces the value. Values outside the kind's width are rejected.
func (p *Int) Set(v int64) error {
	lo, hi := p.kind.signedRange()
	if v < lo || v > hi {
		return fmt.Errorf("%w: %d does not fit %s", ErrValueRange, v, p.kind)
	}
	p.value = v
	return nil
}

// Clone returns a copy.
func (p *Int) Clone() Property {
	c := *p
	return &c
}

// UInt is an unsigned integer of 2, 4 or 8 bytes.
type UInt struct {
	kind  Kind
	value uint64
}

// NewUInt returns an integer property of the given unsigned kind.
func NewUInt(kind Kind, v uint64) (*UInt, error) {
	if !kind.unsigned() {
		return nil, fmt.Errorf("%w: %s is not an unsigned integer kind", ErrTypeMismatch, kind)
	}
	p := &UInt{kind: kind}
	if err := p.Set(v); err != nil {
		return nil, err
	}
	return p, nil
}

// Kind returns the unsigned integer kind it was created with.
func (p *UInt) Kind() Kind { return p.kind }

// Value returns the stored integer.
func (p *UInt) Value() uint64 { return p.value }

// Set replaces the value. Values outside the kind's width are rejected.
func (p *UInt) Set(v uint64) error {
	if v > p.kind.unsignedMax() {
		return fmt.Errorf("%w: %d does not fit %s", ErrValueRange, v, p.kind)
	}
	p.value = v
	return nil
}

// Clone returns a copy.
func (p *UInt) Clone() Property {
	c := *p
	return &c
}

// Float is a 32-bit IEEE 754 value.
type Float struct {
	Value float32
}

// Kind returns KindFloat.
func (p *Float) Kind() Kind { return KindFloat }

// Clone returns a copy.
func (p *Float) Clone() Property {
	c := *p
	return &c
}

// Bool is a boolean stored in the property tag itself.
type Bool struct {
	Value bool
}

// Kind returns KindBool.
func (p *Bool) Kind() Kind { return KindBool }

// Clone returns a copy.
func (p *Bool) Clone() Property {
	c := *p
	return &c
}

// Str holds an engine string payload. Raw is kept undecoded so unedited
// strings are written back byte for byte.
type Str struct {
	Raw []byte
}

// Kind returns KindStr.
func (p *Str) Kind() Kind { return KindStr }

// Value decodes the payload as a length-prefixed engine string.
func (p *Str) Value() (string, error) {
	if len(p.Raw) == 0 {
		return "", nil
	}
	return cursor.NewReader(p.Raw).FString()
}

// SetValue replaces the payload with the engine encoding of s.
func (p *Str) SetValue(s string) error {
	w := cursor.NewWriter(len(s) + 5)
	if err := w.FString(s); err != nil {
		return err
	}
	p.Raw = w.Bytes()
	return nil
}

// Clone returns a deep copy.
func (p *Str) Clone() Property {
	return &Str{Raw: append([]byte(nil), p.Raw...)}
}

// Name holds an interned name, resolved through the name table on encode.
type Name struct {
	Value string
}

// Kind returns KindName.
func (p *Name) Kind() Kind { return KindName }

// Clone returns a copy.
func (p *Name) Clone() Property {
	c := *p
	return &c
}

// Enum holds an enumerator type name and value name, for example
// "EJobEnum" and "EJobEnum::JE_Monk".
type Enum struct {
	Type  string
	Value string
}

// Kind returns KindEnum.
func (p *Enum) Kind() Kind { return KindEnum }

// Clone returns a copy.
func (p *Enum) Clone() Property {
	c := *p
	return &c
}

// Byte is a single byte. EnumName is the raw name index stored ahead of
// the value, normally the index of "None".
type Byte struct {
	EnumName uint64
	Value    uint8
}

// Kind returns KindByte.
func (p *Byte) Kind() Kind { return KindByte }

// Clone returns a copy.
func (p *Byte) Clone() Property {
	c := *p
	return &c
}
