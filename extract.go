package pak

import (
	"bytes"
	"crypto/sha1" //nolint:gosec // the container format uses SHA-1
	"fmt"
	"io/fs"
	"log/slog"
	"strings"

	"github.com/meigma/pak/internal/pathutil"
	"github.com/meigma/pak/internal/sizing"
)

// resolve maps a full or partial member path to an entry index. An exact
// path wins. Otherwise the base name must identify one entry, or the
// entries sharing it are filtered to those containing name.
func (c *Container) resolve(name string) (int, error) {
	if i, ok := c.byPath[name]; ok {
		return i, nil
	}
	candidates := c.byBase[pathutil.Base(name)]
	switch len(candidates) {
	case 0:
		return 0, &fs.PathError{Op: "resolve", Path: name, Err: fs.ErrNotExist}
	case 1:
		return candidates[0], nil
	}

	match := -1
	for _, i := range candidates {
		if !strings.Contains(c.entries[i].Path, name) {
			continue
		}
		if match >= 0 {
			return 0, fmt.Errorf("%w: %q matches %q and %q",
				ErrAmbiguousPath, name, c.entries[match].Path, c.entries[i].Path)
		}
		match = i
	}
	if match < 0 {
		return 0, fmt.Errorf("%w: %q matches none of %d entries named %q",
			ErrAmbiguousPath, name, len(candidates), pathutil.Base(name))
	}
	return match, nil
}

// ExtractFile returns the content of the member name resolves to. The
// first extraction decodes the member and caches it; later calls return a
// copy of the cached, possibly patched, content.
func (c *Container) ExtractFile(name string) ([]byte, error) {
	i, err := c.resolve(name)
	if err != nil {
		return nil, err
	}
	e := &c.entries[i]
	if m, ok := c.overlay[e.Path]; ok {
		return bytes.Clone(m.data), nil
	}

	data, err := c.read(e)
	if err != nil {
		return nil, fmt.Errorf("extract %s: %w", e.Path, err)
	}
	c.overlay[e.Path] = &member{data: data}
	c.order = append(c.order, e.Path)
	return bytes.Clone(data), nil
}

// read decodes an entry's chunks in order.
func (c *Container) read(e *Entry) ([]byte, error) {
	if e.Encrypted {
		return nil, fmt.Errorf("%w: entry is encrypted", ErrMalformed)
	}
	rawSize, err := sizing.ToInt(e.RawSize, ErrSizeOverflow)
	if err != nil {
		return nil, err
	}

	var (
		out      = make([]byte, 0, rawSize)
		hash     = sha1.New() //nolint:gosec // format digest
		method   = c.method(e)
		fellBack int
	)
	for n, ch := range e.Chunks {
		stored, err := c.readAt(e.Offset+ch.Start, ch.Size())
		if err != nil {
			return nil, fmt.Errorf("chunk %d: %w", n, err)
		}
		hash.Write(stored)
		if !e.Compressed() {
			out = append(out, stored...)
			continue
		}

		want := rawSize - len(out)
		if e.BlockSize > 0 {
			want = min(want, int(e.BlockSize))
		}
		res, err := c.decoder.Decompress(method, stored, want)
		if err != nil {
			return nil, fmt.Errorf("chunk %d: %w", n, err)
		}
		if res.FellBack {
			fellBack++
		}
		out = append(out, res.Data...)
	}

	if len(out) != rawSize {
		return nil, fmt.Errorf("%w: decoded %d bytes, entry records %d", ErrMalformed, len(out), rawSize)
	}
	if c.verifyEntries {
		if sum := hash.Sum(nil); !bytes.Equal(sum, e.Hash[:]) {
			return nil, fmt.Errorf("%w: SHA-1 %x, entry records %x", ErrIntegrity, sum, e.Hash)
		}
	}
	c.log().Debug("extracted member",
		slog.String("path", e.Path),
		slog.String("method", string(method)),
		slog.Int("chunks", len(e.Chunks)),
		slog.Int("fallback_chunks", fellBack),
		slog.Int("size", rawSize))
	return out, nil
}

// PatchFile replaces the content of the member name resolves to. The
// member is marked modified only if data differs from its current
// content; a member that was never extracted is extracted first.
func (c *Container) PatchFile(data []byte, name string) error {
	i, err := c.resolve(name)
	if err != nil {
		return err
	}
	path := c.entries[i].Path
	m, ok := c.overlay[path]
	if !ok {
		if _, err := c.ExtractFile(path); err != nil {
			return err
		}
		m = c.overlay[path]
	}
	if bytes.Equal(m.data, data) {
		c.log().Debug("patch unchanged", slog.String("path", path))
		return nil
	}
	m.data = bytes.Clone(data)
	m.modified = true
	c.log().Debug("patched member", slog.String("path", path), slog.Int("size", len(data)))
	return nil
}

// Modified reports whether the member name resolves to has been patched
// with different content.
func (c *Container) Modified(name string) bool {
	i, err := c.resolve(name)
	if err != nil {
		return false
	}
	m, ok := c.overlay[c.entries[i].Path]
	return ok && m.modified
}

// Reset drops every extracted and patched member.
func (c *Container) Reset() {
	clear(c.overlay)
	c.order = c.order[:0]
}

// modified returns the patched members' paths in first-extraction order.
func (c *Container) modified() []string {
	var out []string
	for _, path := range c.order {
		if c.overlay[path].modified {
			out = append(out, path)
		}
	}
	return out
}
