package pak

import (
	"bytes"
	"crypto/sha1" //nolint:gosec // the container format uses SHA-1
	"fmt"

	"github.com/meigma/pak/internal/cursor"
	"github.com/meigma/pak/internal/paktype"
)

const (
	// entryFixedSize is offset, size, raw size, method and SHA-1.
	entryFixedSize = 8 + 8 + 8 + 4 + sha1.Size

	// rawHeaderSize is the in-data header ahead of a raw member's bytes:
	// the fixed fields, the encrypted flag and the block size.
	rawHeaderSize = entryFixedSize + 1 + 4

	// chunkRecordSize is one compressed block's start and end.
	chunkRecordSize = 16
)

// compressedHeaderSize returns the in-data header size of a member with n
// compressed chunks.
func compressedHeaderSize(n int) int {
	return entryFixedSize + 4 + n*chunkRecordSize + 1 + 4
}

func (c *Container) readTOC() error {
	f := &c.trailer
	if f.tocOffset < 0 || f.tocSize < 0 || f.tocOffset+f.tocSize > c.size-footerSize-methodBlockSize {
		return fmt.Errorf("%w: table of contents [%d, +%d) outside %d-byte container",
			ErrTruncated, f.tocOffset, f.tocSize, c.size)
	}
	toc, err := c.readAt(f.tocOffset, f.tocSize)
	if err != nil {
		return err
	}
	if sum := sha1.Sum(toc); !bytes.Equal(sum[:], f.tocHash[:]) { //nolint:gosec // format digest
		return fmt.Errorf("%w: table of contents SHA-1 %x, footer records %x", ErrIntegrity, sum, f.tocHash)
	}

	r := cursor.NewReader(toc)
	if c.mount, err = r.FString(); err != nil {
		return fmt.Errorf("mount point: %w", err)
	}
	count, err := r.Uint32()
	if err != nil {
		return fmt.Errorf("entry count: %w", err)
	}
	for i := range count {
		e, err := readEntry(r)
		if err != nil {
			return fmt.Errorf("entry %d: %w", i, err)
		}
		if err := c.addEntry(e); err != nil {
			return err
		}
	}
	if r.Remaining() != 0 {
		return fmt.Errorf("%w: %d bytes after %d entries", ErrMalformed, r.Remaining(), count)
	}
	return nil
}

func readEntry(r *cursor.Reader) (Entry, error) {
	var (
		e   Entry
		err error
	)
	if e.Path, err = r.FString(); err != nil {
		return e, err
	}
	if e.Offset, err = r.Int64(); err != nil {
		return e, err
	}
	if e.Size, err = r.Int64(); err != nil {
		return e, err
	}
	if e.RawSize, err = r.Int64(); err != nil {
		return e, err
	}
	if e.Method, err = r.Uint32(); err != nil {
		return e, err
	}
	hash, err := r.Bytes(sha1.Size)
	if err != nil {
		return e, err
	}
	copy(e.Hash[:], hash)
	if e.Offset < 0 || e.Size < 0 || e.RawSize < 0 {
		return e, fmt.Errorf("%w: %q has negative offset or size", ErrMalformed, e.Path)
	}

	if e.Compressed() {
		n, err := r.Uint32()
		if err != nil {
			return e, err
		}
		if int64(n) > int64(r.Remaining()/chunkRecordSize) {
			return e, fmt.Errorf("%w: %q lists %d chunks", ErrTruncated, e.Path, n)
		}
		e.Chunks = make([]paktype.Chunk, n)
		for i := range e.Chunks {
			if e.Chunks[i].Start, err = r.Int64(); err != nil {
				return e, err
			}
			if e.Chunks[i].End, err = r.Int64(); err != nil {
				return e, err
			}
			if e.Chunks[i].Start < 0 || e.Chunks[i].End < e.Chunks[i].Start {
				return e, fmt.Errorf("%w: %q chunk %d is [%d, %d)", ErrMalformed, e.Path, i,
					e.Chunks[i].Start, e.Chunks[i].End)
			}
		}
	} else {
		e.Chunks = []paktype.Chunk{{Start: rawHeaderSize, End: rawHeaderSize + e.Size}}
	}

	encrypted, err := r.Uint8()
	if err != nil {
		return e, err
	}
	e.Encrypted = encrypted != 0
	if e.BlockSize, err = r.Uint32(); err != nil {
		return e, err
	}
	return e, nil
}

// appendEntry writes an entry record from the size field on. The table of
// contents precedes it with the entry offset and the in-data header copy
// with eight zero bytes.
func appendEntry(w *cursor.Writer, e *Entry) {
	w.Int64(e.Size)
	w.Int64(e.RawSize)
	w.Uint32(e.Method)
	w.Raw(e.Hash[:])
	if e.Compressed() {
		w.Uint32(uint32(len(e.Chunks)))
		for _, ch := range e.Chunks {
			w.Int64(ch.Start)
			w.Int64(ch.End)
		}
	}
	if e.Encrypted {
		w.Uint8(1)
	} else {
		w.Uint8(0)
	}
	w.Uint32(e.BlockSize)
}
