package uasset

// Layout locates the header fields the name table reads and patches. The
// offsets belong to one package file version.
type Layout struct {
	// NameCount is the header offset of the int32 name count.
	NameCount int

	// NameOffset is the header offset of the int32 holding the position
	// of the first name entry.
	NameOffset int

	// Shifted lists the header offsets of int32 fields that grow by the
	// length of every name added to the table. Fields holding zero mark
	// absent sections and are left alone.
	Shifted []int

	// FooterStreamSize is the footer offset of the int64 that stores the
	// companion stream size minus four.
	FooterStreamSize int

	// FooterSerialOffset is the footer offset of the int64 that grows by
	// the length of every name added to the table.
	FooterSerialOffset int
}

// DefaultLayout returns the layout of the supported package version.
func DefaultLayout() Layout {
	return Layout{
		NameCount:  0x29,
		NameOffset: 0x2D,
		Shifted: []int{
			0x18, // total header size
			0x3D, // export offset
			0x45, // import offset
			0x49, // depends offset
			0x51, // soft package references offset
			0x59, // thumbnail table offset
		},
		FooterStreamSize:   0,
		FooterSerialOffset: 8,
	}
}

// headerSize returns the smallest header that holds every int32 field.
func (l Layout) headerSize() int {
	n := max(l.NameCount, l.NameOffset) + 4
	for _, off := range l.Shifted {
		n = max(n, off+4)
	}
	return n
}

// footerSize returns the smallest footer that holds both int64 fields.
func (l Layout) footerSize() int {
	return max(l.FooterStreamSize, l.FooterSerialOffset) + 8
}
