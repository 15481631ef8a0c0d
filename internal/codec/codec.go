// Package codec compresses and decompresses the independently coded chunks
// of container entries.
//
// Decoding tries the method the container advertises for an entry and, if
// that fails, DEFLATE (zlib framing). Containers in the wild label DEFLATE
// chunks with other method names, so the fallback is part of the format.
// Encoding always produces DEFLATE.
package codec

import (
	"bytes"
	"fmt"
	"io"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zlib"
	"github.com/pierrec/lz4/v4"

	"github.com/meigma/pak/internal/paktype"
)

// Decoder decodes chunks. The zero value is not usable; use NewDecoder.
type Decoder struct {
	zstd *DecoderPool
}

// NewDecoder returns a Decoder whose zstd decoders are limited to maxMemory
// bytes (0 for no limit).
func NewDecoder(maxMemory uint64) *Decoder {
	return &Decoder{zstd: NewDecoderPool(maxMemory)}
}

// Result reports how a chunk was decoded.
type Result struct {
	Data []byte

	// FellBack is set when the advertised method failed and DEFLATE succeeded.
	FellBack bool
}

// Decompress decodes one chunk that expands to rawSize bytes. Output of
// any other length is an error on both the primary and the fallback path.
func (d *Decoder) Decompress(method paktype.Method, data []byte, rawSize int) (Result, error) {
	primary, err := d.decode(method, data, rawSize)
	if err == nil {
		err = checkSize(primary, rawSize)
	}
	if err == nil {
		return Result{Data: primary}, nil
	}
	if method == paktype.MethodZlib {
		return Result{}, fmt.Errorf("%w: %s: %v", paktype.ErrDecompression, method, err)
	}

	out, ferr := inflate(data, rawSize)
	if ferr == nil {
		ferr = checkSize(out, rawSize)
	}
	if ferr != nil {
		return Result{}, fmt.Errorf("%w: %s: %v; deflate fallback: %v",
			paktype.ErrDecompression, method, err, ferr)
	}
	return Result{Data: out, FellBack: true}, nil
}

func (d *Decoder) decode(method paktype.Method, data []byte, rawSize int) ([]byte, error) {
	var (
		out []byte
		err error
	)
	switch method {
	case paktype.MethodZstd:
		out, err = d.unzstd(data, rawSize)
	case paktype.MethodZlib:
		out, err = inflate(data, rawSize)
	case paktype.MethodGzip:
		out, err = gunzip(data, rawSize)
	case paktype.MethodLZ4:
		out, err = unlz4(data, rawSize)
	default:
		return nil, fmt.Errorf("no decoder for method %q", method)
	}
	if err != nil {
		return nil, err
	}
	return out, nil
}

func checkSize(out []byte, rawSize int) error {
	if len(out) != rawSize {
		return fmt.Errorf("decoded %d bytes, want %d", len(out), rawSize)
	}
	return nil
}

func (d *Decoder) unzstd(data []byte, rawSize int) ([]byte, error) {
	dec, release, err := d.zstd.Get()
	if err != nil {
		return nil, err
	}
	defer release()
	return dec.DecodeAll(data, make([]byte, 0, rawSize))
}

func inflate(data []byte, rawSize int) ([]byte, error) {
	zr, err := zlib.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	defer zr.Close()
	return readAll(zr, rawSize)
}

func gunzip(data []byte, rawSize int) ([]byte, error) {
	gr, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	defer gr.Close()
	return readAll(gr, rawSize)
}

func unlz4(data []byte, rawSize int) ([]byte, error) {
	out := make([]byte, rawSize)
	n, err := lz4.UncompressBlock(data, out)
	if err != nil {
		return nil, err
	}
	return out[:n], nil
}

// readAll reads r to EOF, reading at most one byte beyond rawSize so an
// oversized stream is detected without buffering all of it.
func readAll(r io.Reader, rawSize int) ([]byte, error) {
	var buf bytes.Buffer
	buf.Grow(rawSize)
	if _, err := io.Copy(&buf, io.LimitReader(r, int64(rawSize)+1)); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
