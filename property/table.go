package property

import "fmt"

// Field is one named entry of a table.
type Field struct {
	Name     string
	Property Property
}

// Table is an ordered set of named properties. Field order is the stream
// order and is preserved on encode.
type Table struct {
	fields []Field
	index  map[string]int
}

// NewTable returns a table holding fields in order. Later duplicates of a
// name are kept for encoding but shadowed for lookup.
func NewTable(fields ...Field) *Table {
	t := &Table{index: make(map[string]int, len(fields))}
	for _, f := range fields {
		t.add(f)
	}
	return t
}

func (t *Table) add(f Field) {
	if _, ok := t.index[f.Name]; !ok {
		t.index[f.Name] = len(t.fields)
	}
	t.fields = append(t.fields, f)
}

// Len returns the number of fields.
func (t *Table) Len() int { return len(t.fields) }

// Fields returns the fields in order. The properties are live.
func (t *Table) Fields() []Field {
	return append([]Field(nil), t.fields...)
}

// Names returns the field names in order.
func (t *Table) Names() []string {
	out := make([]string, len(t.fields))
	for i, f := range t.fields {
		out[i] = f.Name
	}
	return out
}

// Lookup returns the property stored under name.
func (t *Table) Lookup(name string) (Property, bool) {
	i, ok := t.index[name]
	if !ok {
		return nil, false
	}
	return t.fields[i].Property, true
}

// Get returns the property stored under name, or nil.
func (t *Table) Get(name string) Property {
	p, _ := t.Lookup(name)
	return p
}

// Replace swaps the property stored under name for p, which must have the
// same kind.
func (t *Table) Replace(name string, p Property) error {
	i, ok := t.index[name]
	if !ok {
		return fmt.Errorf("%w: %q", ErrNoField, name)
	}
	if have := t.fields[i].Property.Kind(); have != p.Kind() {
		return fmt.Errorf("%w: field %q is %s, not %s", ErrTypeMismatch, name, have, p.Kind())
	}
	t.fields[i].Property = p
	return nil
}

// Clone returns a deep copy of the table.
func (t *Table) Clone() *Table {
	if t == nil {
		return nil
	}
	c := &Table{
		fields: make([]Field, len(t.fields)),
		index:  make(map[string]int, len(t.index)),
	}
	for i, f := range t.fields {
		c.fields[i] = Field{Name: f.Name, Property: f.Property.Clone()}
	}
	for k, v := range t.index {
		c.index[k] = v
	}
	return c
}

func field[T Property](t *Table, name string) (T, error) {
	var zero T
	p, ok := t.Lookup(name)
	if !ok {
		return zero, fmt.Errorf("%w: %q", ErrNoField, name)
	}
	v, ok := p.(T)
	if !ok {
		return zero, fmt.Errorf("%w: field %q is %s", ErrTypeMismatch, name, p.Kind())
	}
	return v, nil
}

// Int returns the value of a signed integer field.
func (t *Table) Int(name string) (int64, error) {
	p, err := field[*Int](t, name)
	if err != nil {
		return 0, err
	}
	return p.Value(), nil
}

// SetInt sets a signed integer field, checking the value against its width.
func (t *Table) SetInt(name string, v int64) error {
	p, err := field[*Int](t, name)
	if err != nil {
		return err
	}
	if err := p.Set(v); err != nil {
		return fmt.Errorf("field %q: %w", name, err)
	}
	return nil
}

// UInt returns the value of an unsigned integer field.
func (t *Table) UInt(name string) (uint64, error) {
	p, err := field[*UInt](t, name)
	if err != nil {
		return 0, err
	}
	return p.Value(), nil
}

// SetUInt sets an unsigned integer field, checking the value against its width.
func (t *Table) SetUInt(name string, v uint64) error {
	p, err := field[*UInt](t, name)
	if err != nil {
		return err
	}
	if err := p.Set(v); err != nil {
		return fmt.Errorf("field %q: %w", name, err)
	}
	return nil
}

// Float returns the value of a float field.
func (t *Table) Float(name string) (float32, error) {
	p, err := field[*Float](t, name)
	if err != nil {
		return 0, err
	}
	return p.Value, nil
}

// SetFloat sets a float field.
func (t *Table) SetFloat(name string, v float32) error {
	p, err := field[*Float](t, name)
	if err != nil {
		return err
	}
	p.Value = v
	return nil
}

// Bool returns the value of a bool field.
func (t *Table) Bool(name string) (bool, error) {
	p, err := field[*Bool](t, name)
	if err != nil {
		return false, err
	}
	return p.Value, nil
}

// SetBool sets a bool field.
func (t *Table) SetBool(name string, v bool) error {
	p, err := field[*Bool](t, name)
	if err != nil {
		return err
	}
	p.Value = v
	return nil
}

// Text returns the string of a localized text field.
func (t *Table) Text(name string) (string, error) {
	p, err := field[*Text](t, name)
	if err != nil {
		return "", err
	}
	return p.Value, nil
}

// SetText sets the string of a localized text field.
func (t *Table) SetText(name, v string) error {
	p, err := field[*Text](t, name)
	if err != nil {
		return err
	}
	if err := p.Set(v); err != nil {
		return fmt.Errorf("field %q: %w", name, err)
	}
	return nil
}

// Enum returns the value name of an enumerator field.
func (t *Table) Enum(name string) (string, error) {
	p, err := field[*Enum](t, name)
	if err != nil {
		return "", err
	}
	return p.Value, nil
}

// SetEnum sets the value name of an enumerator field. The name must exist
// in the asset's name table when the table is encoded.
func (t *Table) SetEnum(name, v string) error {
	p, err := field[*Enum](t, name)
	if err != nil {
		return err
	}
	p.Value = v
	return nil
}

// NameValue returns the value of a name field.
func (t *Table) NameValue(name string) (string, error) {
	p, err := field[*Name](t, name)
	if err != nil {
		return "", err
	}
	return p.Value, nil
}

// SetName sets the value of a name field.
func (t *Table) SetName(name, v string) error {
	p, err := field[*Name](t, name)
	if err != nil {
		return err
	}
	p.Value = v
	return nil
}

// Struct returns a struct field.
func (t *Table) Struct(name string) (*Struct, error) {
	return field[*Struct](t, name)
}

// Array returns an array field.
func (t *Table) Array(name string) (*Array, error) {
	return field[*Array](t, name)
}

// Map returns a map field.
func (t *Table) Map(name string) (*Map, error) {
	return field[*Map](t, name)
}
