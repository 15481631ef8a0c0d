package pak

import (
	"bytes"
	"crypto/sha1" //nolint:gosec // the container format uses SHA-1
	"errors"
	"fmt"
	"io"

	"github.com/meigma/pak/internal/cursor"
	"github.com/meigma/pak/internal/paktype"
	"github.com/meigma/pak/internal/sizing"
)

const (
	methodSlots    = 5
	methodNameSize = 32

	// methodBlockSize is the length of the compression method names that
	// end the container.
	methodBlockSize = methodSlots * methodNameSize

	// footerSize is magic, TOC offset, TOC size and TOC SHA-1.
	footerSize = 8 + 8 + 8 + sha1.Size

	// footerPadSize is the encryption key GUID and encrypted-index flag
	// written ahead of the footer.
	footerPadSize = 17
)

// footer is the fixed trailer of a container.
type footer struct {
	magic     uint64
	tocOffset int64
	tocSize   int64
	tocHash   [sha1.Size]byte
	methods   [methodBlockSize]byte
}

// readAt reads n bytes at off, failing with ErrTruncated when the range
// leaves the container.
func (c *Container) readAt(off, n int64) ([]byte, error) {
	if off < 0 || n < 0 || !sizing.InRange(off, n, c.size) {
		return nil, fmt.Errorf("%w: range [%d, +%d) of %d bytes", ErrTruncated, off, n, c.size)
	}
	size, err := sizing.ToInt(n, ErrSizeOverflow)
	if err != nil {
		return nil, err
	}
	buf := make([]byte, size)
	read, err := c.src.ReadAt(buf, off)
	if read == size {
		return buf, nil
	}
	if err == nil || errors.Is(err, io.EOF) {
		err = io.ErrUnexpectedEOF
	}
	return nil, fmt.Errorf("%w: read at %d: %v", ErrTruncated, off, err)
}

func (c *Container) readTrailer() error {
	const tail = footerSize + methodBlockSize
	if c.size < tail {
		return fmt.Errorf("%w: container is %d bytes, trailer needs %d", ErrTruncated, c.size, tail)
	}
	buf, err := c.readAt(c.size-tail, tail)
	if err != nil {
		return err
	}
	r := cursor.NewReader(buf)
	f := &c.trailer
	if f.magic, err = r.Uint64(); err != nil {
		return err
	}
	if f.tocOffset, err = r.Int64(); err != nil {
		return err
	}
	if f.tocSize, err = r.Int64(); err != nil {
		return err
	}
	hash, err := r.Bytes(sha1.Size)
	if err != nil {
		return err
	}
	copy(f.tocHash[:], hash)
	methods, err := r.Bytes(methodBlockSize)
	if err != nil {
		return err
	}
	copy(f.methods[:], methods)

	c.magic = f.magic
	for i := range c.methods {
		name := f.methods[i*methodNameSize : (i+1)*methodNameSize]
		if n := bytes.IndexByte(name, 0); n >= 0 {
			name = name[:n]
		}
		c.methods[i] = string(name)
	}
	return nil
}

// outputMethods returns the method block of a rebuilt container: DEFLATE
// in the first slot, which every rebuilt entry references, and the second
// slot cleared. Later slots are carried over from the source.
func (f *footer) outputMethods() [methodBlockSize]byte {
	out := f.methods
	clear(out[:2*methodNameSize])
	copy(out[:methodNameSize], string(paktype.MethodZlib))
	return out
}

// appendTrailer writes the footer padding, the footer and the method block.
func appendTrailer(w *cursor.Writer, magic uint64, tocOffset, tocSize int64, tocHash [sha1.Size]byte, methods [methodBlockSize]byte) {
	w.Zero(footerPadSize)
	w.Uint64(magic)
	w.Int64(tocOffset)
	w.Int64(tocSize)
	w.Raw(tocHash[:])
	w.Raw(methods[:])
}
