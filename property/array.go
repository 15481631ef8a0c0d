package property

import "fmt"

// Array is a homogeneous sequence. Exactly one of the element slices is
// populated, selected by Elem. Elements can be replaced but not inserted
// or removed, so the serialized count always matches.
type Array struct {
	Elem Kind

	ints    []int32
	floats  []float32
	names   []string
	structs []*Table

	// Struct element header.
	StructName string
	StructType string
	Reserved   [ReservedSize]byte
}

// NewIntArray returns an array of IntProperty elements.
func NewIntArray(v []int32) *Array {
	return &Array{Elem: KindInt, ints: append([]int32(nil), v...)}
}

// NewFloatArray returns an array of FloatProperty elements.
func NewFloatArray(v []float32) *Array {
	return &Array{Elem: KindFloat, floats: append([]float32(nil), v...)}
}

// NewNameArray returns an array of EnumProperty or NameProperty elements.
func NewNameArray(elem Kind, v []string) (*Array, error) {
	if elem != KindEnum && elem != KindName {
		return nil, fmt.Errorf("%w: %s elements are not names", ErrTypeMismatch, elem)
	}
	return &Array{Elem: elem, names: append([]string(nil), v...)}, nil
}

// NewStructArray returns an array of nested tables. name is the field name
// repeated in the element header and typ the struct kind of each element.
func NewStructArray(name, typ string, v []*Table) *Array {
	return &Array{Elem: KindStruct, StructName: name, StructType: typ, structs: append([]*Table(nil), v...)}
}

// Kind returns KindArray.
func (p *Array) Kind() Kind { return KindArray }

// Len returns the element count.
func (p *Array) Len() int {
	switch p.Elem {
	case KindInt:
		return len(p.ints)
	case KindFloat:
		return len(p.floats)
	case KindEnum, KindName:
		return len(p.names)
	case KindStruct:
		return len(p.structs)
	}
	return 0
}

func (p *Array) check(want Kind, i int) error {
	if p.Elem != want && !(want == KindEnum && p.Elem == KindName) {
		return fmt.Errorf("%w: array of %s, not %s", ErrTypeMismatch, p.Elem, want)
	}
	if i < 0 || i >= p.Len() {
		return fmt.Errorf("%w: index %d of %d elements", ErrValueRange, i, p.Len())
	}
	return nil
}

// Int returns element i of an IntProperty array.
func (p *Array) Int(i int) (int32, error) {
	if err := p.check(KindInt, i); err != nil {
		return 0, err
	}
	return p.ints[i], nil
}

// SetInt replaces element i of an IntProperty array.
func (p *Array) SetInt(i int, v int32) error {
	if err := p.check(KindInt, i); err != nil {
		return err
	}
	p.ints[i] = v
	return nil
}

// Float returns element i of a FloatProperty array.
func (p *Array) Float(i int) (float32, error) {
	if err := p.check(KindFloat, i); err != nil {
		return 0, err
	}
	return p.floats[i], nil
}

// SetFloat replaces element i of a FloatProperty array.
func (p *Array) SetFloat(i int, v float32) error {
	if err := p.check(KindFloat, i); err != nil {
		return err
	}
	p.floats[i] = v
	return nil
}

// Enum returns element i of an EnumProperty or NameProperty array.
func (p *Array) Enum(i int) (string, error) {
	if err := p.check(KindEnum, i); err != nil {
		return "", err
	}
	return p.names[i], nil
}

// SetEnum replaces element i of an EnumProperty or NameProperty array.
func (p *Array) SetEnum(i int, v string) error {
	if err := p.check(KindEnum, i); err != nil {
		return err
	}
	p.names[i] = v
	return nil
}

// Name returns element i of a NameProperty array.
func (p *Array) Name(i int) (string, error) {
	if err := p.check(KindName, i); err != nil {
		return "", err
	}
	return p.names[i], nil
}

// SetName replaces element i of a NameProperty array.
func (p *Array) SetName(i int, v string) error {
	if err := p.check(KindName, i); err != nil {
		return err
	}
	p.names[i] = v
	return nil
}

// Struct returns element i of a StructProperty array. The table is live:
// edits to it are serialized with the array.
func (p *Array) Struct(i int) (*Table, error) {
	if err := p.check(KindStruct, i); err != nil {
		return nil, err
	}
	return p.structs[i], nil
}

// Ints returns a copy of the elements of an IntProperty array.
func (p *Array) Ints() []int32 { return append([]int32(nil), p.ints...) }

// Floats returns a copy of the elements of a FloatProperty array.
func (p *Array) Floats() []float32 { return append([]float32(nil), p.floats...) }

// Strings returns a copy of the elements of an EnumProperty or NameProperty array.
func (p *Array) Strings() []string { return append([]string(nil), p.names...) }

// Structs returns the element tables of a StructProperty array.
func (p *Array) Structs() []*Table { return append([]*Table(nil), p.structs...) }

// Clone returns a deep copy.
func (p *Array) Clone() Property {
	c := *p
	c.ints = append([]int32(nil), p.ints...)
	c.floats = append([]float32(nil), p.floats...)
	c.names = append([]string(nil), p.names...)
	c.structs = nil
	for _, t := range p.structs {
		c.structs = append(c.structs, t.Clone())
	}
	return &c
}
