package pak

import (
	"context"
	"crypto/sha1" //nolint:gosec // the container format uses SHA-1
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/opencontainers/go-digest"

	"github.com/meigma/pak/internal/codec"
	"github.com/meigma/pak/internal/cursor"
	"github.com/meigma/pak/internal/paktype"
	"github.com/meigma/pak/internal/pathutil"
	"github.com/meigma/pak/internal/sizing"
)

// BuildResult describes a written patch container.
type BuildResult struct {
	// Entries is the number of members in the container.
	Entries int

	// Size is the container length in bytes.
	Size int64

	// Digest is the sha256 digest of the container bytes.
	Digest digest.Digest
}

// Build writes a patch container holding only the modified members.
//
// The mount point is the source mount point joined with the directory
// every modified path shares, and entry paths are relative to it.
// Members stored compressed in the source are recompressed as DEFLATE
// blocks; raw members stay raw. The footer keeps the source magic.
func (c *Container) Build(ctx context.Context, w io.Writer) (*BuildResult, error) {
	paths := c.modified()
	dir := pathutil.CommonDir(paths)

	data := cursor.NewWriter(0)
	toc := cursor.NewWriter(0)
	if err := toc.FString(c.mount + dir); err != nil {
		return nil, fmt.Errorf("mount point: %w", err)
	}
	count, err := sizing.ToUint32(len(paths), ErrSizeOverflow)
	if err != nil {
		return nil, err
	}
	toc.Uint32(count)

	for _, path := range paths {
		src := &c.entries[c.byPath[path]]
		e, body, err := c.pack(ctx, src, c.overlay[path].data)
		if err != nil {
			return nil, fmt.Errorf("build %s: %w", path, err)
		}
		e.Path = pathutil.Rel(path, dir)
		e.Offset = int64(data.Len())

		data.Uint64(0)
		appendEntry(data, &e)
		data.Raw(body)

		if err := toc.FString(e.Path); err != nil {
			return nil, fmt.Errorf("build %s: %w", path, err)
		}
		toc.Int64(e.Offset)
		appendEntry(toc, &e)

		c.log().Debug("packed member",
			slog.String("path", e.Path),
			slog.Bool("compressed", e.Compressed()),
			slog.Int64("raw_size", e.RawSize),
			slog.Int64("size", e.Size))
	}

	tocHash := sha1.Sum(toc.Bytes()) //nolint:gosec // format digest
	trailer := cursor.NewWriter(footerPadSize + footerSize + methodBlockSize)
	appendTrailer(trailer, c.magic, int64(data.Len()), int64(toc.Len()), tocHash, c.trailer.outputMethods())

	digester := digest.Canonical.Digester()
	out := io.MultiWriter(w, digester.Hash())
	var size int64
	for _, part := range [][]byte{data.Bytes(), toc.Bytes(), trailer.Bytes()} {
		n, err := out.Write(part)
		size += int64(n)
		if err != nil {
			return nil, fmt.Errorf("write container: %w", err)
		}
	}

	res := &BuildResult{Entries: len(paths), Size: size, Digest: digester.Digest()}
	c.log().Debug("built container",
		slog.Int("entries", res.Entries),
		slog.String("mount", c.mount+dir),
		slog.Int64("size", res.Size),
		slog.String("digest", res.Digest.String()))
	return res, nil
}

// pack encodes one member's content the way its source entry stored it and
// returns the entry record, without path and offset, and the stored bytes.
func (c *Container) pack(ctx context.Context, src *Entry, content []byte) (Entry, []byte, error) {
	e := Entry{RawSize: int64(len(content))}
	if !src.Compressed() {
		e.Size = e.RawSize
		e.Hash = sha1.Sum(content) //nolint:gosec // format digest
		e.Chunks = []paktype.Chunk{{Start: rawHeaderSize, End: rawHeaderSize + e.Size}}
		return e, content, nil
	}

	workers := c.workers
	if workers < 0 {
		workers = 1
	}
	blocks, err := codec.CompressBlocks(ctx, content, c.blockSize, workers)
	if err != nil {
		return Entry{}, nil, err
	}

	var body []byte
	pos := int64(compressedHeaderSize(len(blocks)))
	e.Chunks = make([]paktype.Chunk, len(blocks))
	for i, b := range blocks {
		e.Chunks[i] = paktype.Chunk{Start: pos, End: pos + int64(len(b))}
		pos += int64(len(b))
		body = append(body, b...)
	}
	e.Size = int64(len(body))
	e.Method = 1
	e.Hash = sha1.Sum(body) //nolint:gosec // format digest
	if e.BlockSize, err = sizing.ToUint32(min(len(content), c.blockSize), ErrSizeOverflow); err != nil {
		return Entry{}, nil, err
	}
	return e, body, nil
}

// BuildFile writes the patch container to path. The file is written to a
// temporary name in the same directory and renamed into place.
func (c *Container) BuildFile(ctx context.Context, path string) (*BuildResult, error) {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".pak-*")
	if err != nil {
		return nil, err
	}
	tmpPath := tmp.Name()

	res, err := c.Build(ctx, tmp)
	if err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return nil, err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return nil, err
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return nil, err
	}
	return res, nil
}
