package pak

import (
	"fmt"
	"io"
	"iter"
	"log/slog"
	"os"

	"github.com/meigma/pak/internal/codec"
	"github.com/meigma/pak/internal/paktype"
	"github.com/meigma/pak/internal/pathutil"
)

// Re-export types from internal/paktype for public API.
type (
	// Entry is one table-of-contents record.
	Entry = paktype.Entry

	// Chunk is the byte range of one compressed block, relative to its entry.
	Chunk = paktype.Chunk

	// Method names a compression method listed in the container trailer.
	Method = paktype.Method
)

// Re-export compression method names.
const (
	MethodNone = paktype.MethodNone
	MethodZlib = paktype.MethodZlib
	MethodGzip = paktype.MethodGzip
	MethodZstd = paktype.MethodZstd
	MethodLZ4  = paktype.MethodLZ4
)

// Container is an opened archive container plus an overlay of extracted
// and patched members.
//
// A Container is not safe for concurrent use.
type Container struct {
	src    io.ReaderAt
	size   int64
	closer io.Closer

	mount   string
	magic   uint64
	methods [methodSlots]string
	trailer footer

	entries []Entry
	byPath  map[string]int
	byBase  map[string][]int

	overlay map[string]*member
	order   []string

	decoder          *codec.Decoder
	verifyEntries    bool
	blockSize        int
	workers          int
	maxDecoderMemory uint64
	logger           *slog.Logger
}

// member is the current content of an extracted member.
type member struct {
	data     []byte
	modified bool
}

// log returns the logger, falling back to a discard logger if nil.
func (c *Container) log() *slog.Logger {
	if c.logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return c.logger
}

// Open opens the container file at path. The caller must Close it.
func Open(path string, opts ...Option) (*Container, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, err
	}
	c, err := New(f, info.Size(), opts...)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	c.closer = f
	return c, nil
}

// New reads the trailer and table of contents of a size-byte container
// served by src. The table's SHA-1 is verified before it is parsed.
func New(src io.ReaderAt, size int64, opts ...Option) (*Container, error) {
	c := &Container{
		src:       src,
		size:      size,
		byPath:    make(map[string]int),
		byBase:    make(map[string][]int),
		overlay:   make(map[string]*member),
		blockSize: codec.DefaultBlockSize,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.decoder = codec.NewDecoder(c.maxDecoderMemory)

	if err := c.readTrailer(); err != nil {
		return nil, err
	}
	if err := c.readTOC(); err != nil {
		return nil, err
	}
	c.log().Debug("opened container",
		slog.String("mount", c.mount),
		slog.Int("entries", len(c.entries)),
		slog.String("methods", fmt.Sprint(c.Methods())))
	return c, nil
}

// Close releases the file opened by Open. It is a no-op for containers
// created with New.
func (c *Container) Close() error {
	if c.closer == nil {
		return nil
	}
	err := c.closer.Close()
	c.closer = nil
	return err
}

// MountPoint returns the directory every entry path is relative to.
func (c *Container) MountPoint() string { return c.mount }

// Magic returns the footer's magic and version value. Build preserves it.
func (c *Container) Magic() uint64 { return c.magic }

// Methods returns the compression methods named in the trailer, in slot
// order. Entry method indexes are 1-based positions in this list.
func (c *Container) Methods() []Method {
	var out []Method
	for _, m := range c.methods {
		if m == "" {
			break
		}
		out = append(out, paktype.ParseMethod(m))
	}
	return out
}

// Len returns the number of entries.
func (c *Container) Len() int { return len(c.entries) }

// Entries returns an iterator over the entries in table order.
func (c *Container) Entries() iter.Seq[Entry] {
	return func(yield func(Entry) bool) {
		for _, e := range c.entries {
			if !yield(e) {
				return
			}
		}
	}
}

// Lookup resolves a member name to its entry.
func (c *Container) Lookup(name string) (Entry, error) {
	i, err := c.resolve(name)
	if err != nil {
		return Entry{}, err
	}
	return c.entries[i], nil
}

// method returns the method named by an entry's 1-based method index.
func (c *Container) method(e *Entry) Method {
	if e.Method == 0 || int(e.Method) > len(c.methods) {
		return MethodNone
	}
	return paktype.ParseMethod(c.methods[e.Method-1])
}

func (c *Container) addEntry(e Entry) error {
	if _, ok := c.byPath[e.Path]; ok {
		return fmt.Errorf("%w: duplicate entry %q", ErrMalformed, e.Path)
	}
	i := len(c.entries)
	c.entries = append(c.entries, e)
	c.byPath[e.Path] = i
	base := pathutil.Base(e.Path)
	c.byBase[base] = append(c.byBase[base], i)
	return nil
}
