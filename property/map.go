package property

// MapKey is the key of one map entry: Int for IntProperty keys, Name for
// NameProperty and EnumProperty keys.
type MapKey struct {
	Int  int32
	Name string
}

// MapEntry is one key and its nested table.
type MapEntry struct {
	Key   MapKey
	Value *Table
}

// Map is a keyed collection of nested tables. Values are always
// StructProperty; the entry count is fixed after load.
type Map struct {
	Key      Kind
	Reserved [5]byte
	entries  []MapEntry
}

// NewMap returns a map with the given key kind and entries.
func NewMap(key Kind, entries []MapEntry) *Map {
	return &Map{Key: key, entries: append([]MapEntry(nil), entries...)}
}

// Kind returns KindMap.
func (p *Map) Kind() Kind { return KindMap }

// Len returns the entry count.
func (p *Map) Len() int { return len(p.entries) }

// Entries returns the entries in stream order. The tables are live.
func (p *Map) Entries() []MapEntry {
	return append([]MapEntry(nil), p.entries...)
}

// LookupInt returns the table stored under an integer key.
func (p *Map) LookupInt(k int32) (*Table, bool) {
	if p.Key != KindInt {
		return nil, false
	}
	for _, e := range p.entries {
		if e.Key.Int == k {
			return e.Value, true
		}
	}
	return nil, false
}

// LookupName returns the table stored under a name or enumerator key.
func (p *Map) LookupName(k string) (*Table, bool) {
	if p.Key == KindInt {
		return nil, false
	}
	for _, e := range p.entries {
		if e.Key.Name == k {
			return e.Value, true
		}
	}
	return nil, false
}

// Clone returns a deep copy.
func (p *Map) Clone() Property {
	c := *p
	c.entries = make([]MapEntry, len(p.entries))
	for i, e := range p.entries {
		c.entries[i] = MapEntry{Key: e.Key, Value: e.Value.Clone()}
	}
	return &c
}
