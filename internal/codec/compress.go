package codec

import (
	"bytes"
	"context"
	"fmt"
	"runtime"

	"github.com/klauspost/compress/zlib"
	"golang.org/x/sync/errgroup"
)

// DefaultBlockSize is the decompressed size of every rebuilt chunk but the last.
const DefaultBlockSize = 0x10000

// Compress DEFLATE-compresses one block with zlib framing.
func Compress(block []byte) ([]byte, error) {
	var buf bytes.Buffer
	zw, err := zlib.NewWriterLevel(&buf, zlib.DefaultCompression)
	if err != nil {
		return nil, err
	}
	if _, err := zw.Write(block); err != nil {
		return nil, err
	}
	if err := zw.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// CompressBlocks splits data into blockSize pieces and compresses each one
// independently. Results are returned in input order regardless of worker
// count. Empty data yields no blocks.
//
// workers <= 0 uses GOMAXPROCS; workers == 1 compresses serially.
func CompressBlocks(ctx context.Context, data []byte, blockSize, workers int) ([][]byte, error) {
	if blockSize <= 0 {
		return nil, fmt.Errorf("invalid block size %d", blockSize)
	}
	n := (len(data) + blockSize - 1) / blockSize
	out := make([][]byte, n)
	if n == 0 {
		return out, nil
	}
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i := range n {
		start := i * blockSize
		end := min(start+blockSize, len(data))
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			comp, err := Compress(data[start:end])
			if err != nil {
				return fmt.Errorf("compress block %d: %w", i, err)
			}
			out[i] = comp
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
