package paktype

// Chunk is a byte range of one independently compressed block, relative to
// the entry's base offset.
type Chunk struct {
	Start int64
	End   int64
}

// Size returns the stored length of the chunk.
func (c Chunk) Size() int64 {
	return c.End - c.Start
}

// Entry is one table-of-contents record of a container.
type Entry struct {
	// Path is the member path relative to the container mount point.
	Path string

	// Offset is the position of the entry's in-data header copy.
	Offset int64

	// Size is the stored size; the compressed size for compressed entries.
	Size int64

	// RawSize is the decompressed size.
	RawSize int64

	// Method is the 1-based index into the trailer's method list, 0 for raw entries.
	Method uint32

	// Hash is the SHA-1 of the stored bytes.
	Hash [20]byte

	// Chunks holds the compressed block ranges. Raw entries carry a single
	// implicit chunk covering the data that follows the header copy.
	Chunks []Chunk

	// Encrypted is the stored encryption flag. Encrypted entries are not supported.
	Encrypted bool

	// BlockSize is the decompressed size of every chunk but the last.
	BlockSize uint32
}

// Compressed reports whether the entry's data is chunk-compressed.
func (e *Entry) Compressed() bool {
	return e.Method != 0
}
