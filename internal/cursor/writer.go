package cursor

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/meigma/pak/internal/paktype"
	"github.com/meigma/pak/internal/sizing"
)

// Writer appends little-endian values to a growable buffer.
type Writer struct {
	buf []byte
}

// NewWriter returns an empty Writer with room for capacity bytes.
func NewWriter(capacity int) *Writer {
	return &Writer{buf: make([]byte, 0, capacity)}
}

// Bytes returns the written bytes. The slice aliases the writer's buffer.
func (w *Writer) Bytes() []byte {
	return w.buf
}

// Len returns the number of bytes written.
func (w *Writer) Len() int {
	return len(w.buf)
}

// Write implements io.Writer. It never fails.
func (w *Writer) Write(p []byte) (int, error) {
	w.buf = append(w.buf, p...)
	return len(p), nil
}

// Raw appends p verbatim.
func (w *Writer) Raw(p []byte) {
	w.buf = append(w.buf, p...)
}

// Zero appends n zero bytes.
func (w *Writer) Zero(n int) {
	for range n {
		w.buf = append(w.buf, 0)
	}
}

// Uint8 appends one byte.
func (w *Writer) Uint8(v uint8) {
	w.buf = append(w.buf, v)
}

// Int8 appends one signed byte.
func (w *Writer) Int8(v int8) {
	w.Uint8(uint8(v))
}

// Uint16 appends a little-endian uint16.
func (w *Writer) Uint16(v uint16) {
	w.buf = binary.LittleEndian.AppendUint16(w.buf, v)
}

// Int16 appends a little-endian int16.
func (w *Writer) Int16(v int16) {
	w.Uint16(uint16(v))
}

// Uint32 appends a little-endian uint32.
func (w *Writer) Uint32(v uint32) {
	w.buf = binary.LittleEndian.AppendUint32(w.buf, v)
}

// Int32 appends a little-endian int32.
func (w *Writer) Int32(v int32) {
	w.Uint32(uint32(v))
}

// Uint64 appends a little-endian uint64.
func (w *Writer) Uint64(v uint64) {
	w.buf = binary.LittleEndian.AppendUint64(w.buf, v)
}

// Int64 appends a little-endian int64.
func (w *Writer) Int64(v int64) {
	w.Uint64(uint64(v))
}

// Float32 appends a little-endian IEEE 754 float.
func (w *Writer) Float32(v float32) {
	w.Uint32(math.Float32bits(v))
}

// PutUint32At overwrites four bytes at off. It is used to back-fill size
// fields once the payload they describe has been written.
func (w *Writer) PutUint32At(off int, v uint32) {
	binary.LittleEndian.PutUint32(w.buf[off:off+4], v)
}

// PutUint64At overwrites eight bytes at off.
func (w *Writer) PutUint64At(off int, v uint64) {
	binary.LittleEndian.PutUint64(w.buf[off:off+8], v)
}

// String appends the encoded form of s without a length field and returns
// the signed length a reader needs to decode it again.
func (w *Writer) String(s string) (int32, error) {
	p, size, err := EncodeString(s)
	if err != nil {
		return 0, err
	}
	w.Raw(p)
	return size, nil
}

// FString appends an int32 length followed by the encoded form of s.
func (w *Writer) FString(s string) error {
	p, size, err := EncodeString(s)
	if err != nil {
		return err
	}
	w.Int32(size)
	w.Raw(p)
	return nil
}

// Digest appends a 20-byte digest followed by a NUL byte.
func (w *Writer) Digest(d [DigestSize]byte) {
	w.Raw(d[:])
	w.Uint8(0)
}

// HexDigest appends a 32-character text key followed by a NUL byte.
func (w *Writer) HexDigest(s string) error {
	if len(s) != HexDigestSize {
		return fmt.Errorf("%w: text key is %d bytes, want %d", paktype.ErrMalformed, len(s), HexDigestSize)
	}
	w.Raw([]byte(s))
	w.Uint8(0)
	return nil
}

// EncodeString returns the NUL-terminated encoding of s and its signed
// length. Strings whose UTF-8 form contains any byte with the high bit set
// are written as UTF-16LE with a negative length counted in code units.
func EncodeString(s string) ([]byte, int32, error) {
	wide := false
	for i := 0; i < len(s); i++ {
		if s[i] >= 0x80 {
			wide = true
			break
		}
	}
	if !wide {
		p := make([]byte, 0, len(s)+1)
		p = append(p, s...)
		p = append(p, 0)
		size, err := sizing.ToInt32(len(p), paktype.ErrSizeOverflow)
		return p, size, err
	}
	p, err := utf16Encoding.NewEncoder().Bytes([]byte(s))
	if err != nil {
		return nil, 0, fmt.Errorf("%w: encode UTF-16 string: %v", paktype.ErrMalformed, err)
	}
	p = append(p, 0, 0)
	units, err := sizing.ToInt32(len(p)/2, paktype.ErrSizeOverflow)
	if err != nil {
		return nil, 0, err
	}
	return p, -units, nil
}
