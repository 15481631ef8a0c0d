package property

// ReservedSize is the length of the struct GUID and property-GUID flag
// that follow a struct kind name.
const ReservedSize = 17

// Struct is a nested value. Its payload depends on Type: a Vector holds
// three int32 components, a LinearColor four floats, and every other kind
// a nested Table.
type Struct struct {
	Type     string
	Reserved [ReservedSize]byte

	Vector [3]int32
	Color  [4]float32
	Table  *Table
}

// NewStruct returns a struct of the given kind holding a nested table.
func NewStruct(typ string, t *Table) *Struct {
	return &Struct{Type: typ, Table: t}
}

// Kind returns KindStruct.
func (p *Struct) Kind() Kind { return KindStruct }

// Fixed reports whether the struct has a fixed binary payload instead of a
// nested table.
func (p *Struct) Fixed() bool {
	return p.Type == StructVector || p.Type == StructLinearColor
}

// Clone returns a deep copy.
func (p *Struct) Clone() Property {
	c := *p
	if p.Table != nil {
		c.Table = p.Table.Clone()
	}
	return &c
}
