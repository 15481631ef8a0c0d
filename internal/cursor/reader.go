// Package cursor implements the sequential little-endian reader and writer
// used by every binary layer of the container and asset codecs.
//
// A Reader or Writer owns its position; callers thread the value through
// their parse or build functions instead of sharing a stream.
package cursor

import (
	"encoding/binary"
	"fmt"
	"math"

	"golang.org/x/text/encoding/unicode"

	"github.com/meigma/pak/internal/paktype"
)

// DigestSize is the length of a SHA-1 digest.
const DigestSize = 20

// HexDigestSize is the length of a hex text key, without its terminator.
const HexDigestSize = 32

var (
	utf16Decoding = unicode.UTF16(unicode.LittleEndian, unicode.UseBOM)
	utf16Encoding = unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM)
)

// Reader reads fixed-width values from an immutable buffer.
type Reader struct {
	buf []byte
	off int
}

// NewReader returns a Reader positioned at the start of buf.
func NewReader(buf []byte) *Reader {
	return &Reader{buf: buf}
}

// Offset returns the current read position.
func (r *Reader) Offset() int {
	return r.off
}

// Len returns the size of the underlying buffer.
func (r *Reader) Len() int {
	return len(r.buf)
}

// Remaining returns the number of unread bytes.
func (r *Reader) Remaining() int {
	return len(r.buf) - r.off
}

// SetOffset moves the read position to off.
func (r *Reader) SetOffset(off int) error {
	if off < 0 || off > len(r.buf) {
		return fmt.Errorf("%w: seek to %d in %d bytes", paktype.ErrTruncated, off, len(r.buf))
	}
	r.off = off
	return nil
}

// Skip advances the read position by n bytes.
func (r *Reader) Skip(n int) error {
	_, err := r.take(n)
	return err
}

func (r *Reader) take(n int) ([]byte, error) {
	if n < 0 || n > len(r.buf)-r.off {
		return nil, fmt.Errorf("%w: need %d bytes at offset %d, have %d",
			paktype.ErrTruncated, n, r.off, len(r.buf)-r.off)
	}
	p := r.buf[r.off : r.off+n]
	r.off += n
	return p, nil
}

// Bytes returns a copy of the next n bytes.
func (r *Reader) Bytes(n int) ([]byte, error) {
	p, err := r.take(n)
	if err != nil {
		return nil, err
	}
	out := make([]byte, n)
	copy(out, p)
	return out, nil
}

// Slice returns the buffer bytes between start and end without copying.
func (r *Reader) Slice(start, end int) ([]byte, error) {
	if start < 0 || end < start || end > len(r.buf) {
		return nil, fmt.Errorf("%w: span [%d, %d) of %d bytes", paktype.ErrTruncated, start, end, len(r.buf))
	}
	return r.buf[start:end], nil
}

// Uint8 reads one byte.
func (r *Reader) Uint8() (uint8, error) {
	p, err := r.take(1)
	if err != nil {
		return 0, err
	}
	return p[0], nil
}

// Int8 reads one signed byte.
func (r *Reader) Int8() (int8, error) {
	v, err := r.Uint8()
	return int8(v), err
}

// Uint16 reads a little-endian uint16.
func (r *Reader) Uint16() (uint16, error) {
	p, err := r.take(2)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(p), nil
}

// Int16 reads a little-endian int16.
func (r *Reader) Int16() (int16, error) {
	v, err := r.Uint16()
	return int16(v), err
}

// Uint32 reads a little-endian uint32.
func (r *Reader) Uint32() (uint32, error) {
	p, err := r.take(4)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(p), nil
}

// Int32 reads a little-endian int32.
func (r *Reader) Int32() (int32, error) {
	v, err := r.Uint32()
	return int32(v), err
}

// Uint64 reads a little-endian uint64.
func (r *Reader) Uint64() (uint64, error) {
	p, err := r.take(8)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(p), nil
}

// Int64 reads a little-endian int64.
func (r *Reader) Int64() (int64, error) {
	v, err := r.Uint64()
	return int64(v), err
}

// Float32 reads a little-endian IEEE 754 float.
func (r *Reader) Float32() (float32, error) {
	v, err := r.Uint32()
	return math.Float32frombits(v), err
}

// String reads a string whose length field has already been consumed.
// A negative size means -2*size bytes of UTF-16; a positive size means size
// bytes of UTF-8. Both include a NUL terminator, which is stripped.
func (r *Reader) String(size int32) (string, error) {
	switch {
	case size == 0:
		return "", nil
	case size < 0:
		n := -2 * int64(size)
		if n > int64(r.Remaining()) {
			return "", fmt.Errorf("%w: UTF-16 string of %d bytes at offset %d", paktype.ErrTruncated, n, r.off)
		}
		p, err := r.take(int(n))
		if err != nil {
			return "", err
		}
		decoded, err := utf16Decoding.NewDecoder().Bytes(p)
		if err != nil {
			return "", fmt.Errorf("%w: decode UTF-16 string: %v", paktype.ErrMalformed, err)
		}
		return trimNUL(string(decoded)), nil
	default:
		p, err := r.take(int(size))
		if err != nil {
			return "", err
		}
		return trimNUL(string(p)), nil
	}
}

// FString reads an int32 length followed by the string it describes.
func (r *Reader) FString() (string, error) {
	size, err := r.Int32()
	if err != nil {
		return "", err
	}
	return r.String(size)
}

// Digest reads a 20-byte digest followed by a NUL byte.
func (r *Reader) Digest() ([DigestSize]byte, error) {
	var d [DigestSize]byte
	p, err := r.take(DigestSize + 1)
	if err != nil {
		return d, err
	}
	if p[DigestSize] != 0 {
		return d, fmt.Errorf("%w: digest terminator is 0x%02x", paktype.ErrMalformed, p[DigestSize])
	}
	copy(d[:], p)
	return d, nil
}

// HexDigest reads a 32-character text key followed by a NUL byte.
func (r *Reader) HexDigest() (string, error) {
	p, err := r.take(HexDigestSize + 1)
	if err != nil {
		return "", err
	}
	if p[HexDigestSize] != 0 {
		return "", fmt.Errorf("%w: text key terminator is 0x%02x", paktype.ErrMalformed, p[HexDigestSize])
	}
	return string(p[:HexDigestSize]), nil
}

func trimNUL(s string) string {
	if n := len(s); n > 0 && s[n-1] == 0 {
		return s[:n-1]
	}
	return s
}
