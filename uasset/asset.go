package uasset

import (
	"fmt"
	"log/slog"

	"github.com/meigma/pak/property"
)

// Member name suffixes of an asset pair.
const (
	HeaderExt = ".uasset"
	StreamExt = ".uexp"
)

// Archive is the container an asset is read from and written back to.
// *pak.Container implements it.
type Archive interface {
	ExtractFile(name string) ([]byte, error)
	PatchFile(data []byte, name string) error
}

// Asset couples a header member, which carries the name table, with its
// stream member, which carries the property table.
type Asset struct {
	archive Archive
	name    string
	layout  Layout
	logger  *slog.Logger

	names *NameTable
	table *property.Table
	none  uint64
}

// Option configures an Asset.
type Option func(*Asset)

// WithLayout sets the header layout. The default is DefaultLayout().
func WithLayout(l Layout) Option {
	return func(a *Asset) {
		a.layout = l
	}
}

// WithLogger sets the logger for debug output.
func WithLogger(logger *slog.Logger) Option {
	return func(a *Asset) {
		a.logger = logger
	}
}

func (a *Asset) log() *slog.Logger {
	if a.logger != nil {
		return a.logger
	}
	return slog.New(slog.DiscardHandler)
}

// Load extracts name+".uasset" and name+".uexp" from archive and decodes
// them.
func Load(archive Archive, name string, opts ...Option) (*Asset, error) {
	a := &Asset{
		archive: archive,
		name:    name,
		layout:  DefaultLayout(),
	}
	for _, opt := range opts {
		opt(a)
	}

	header, err := archive.ExtractFile(a.HeaderPath())
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", name, err)
	}
	stream, err := archive.ExtractFile(a.StreamPath())
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", name, err)
	}
	if a.names, err = ParseNameTable(header, a.layout); err != nil {
		return nil, fmt.Errorf("load %s: name table: %w", name, err)
	}
	if a.none, err = a.names.Index(property.NoneName); err != nil {
		return nil, fmt.Errorf("load %s: %w", name, err)
	}
	if a.table, err = property.Decode(stream, a.names); err != nil {
		return nil, fmt.Errorf("load %s: properties: %w", name, err)
	}
	a.log().Debug("loaded asset",
		slog.String("name", name),
		slog.Int("names", a.names.Len()),
		slog.Int("fields", a.table.Len()))
	return a, nil
}

// HeaderPath returns the member name of the header.
func (a *Asset) HeaderPath() string { return a.name + HeaderExt }

// StreamPath returns the member name of the property stream.
func (a *Asset) StreamPath() string { return a.name + StreamExt }

// Names returns the asset's name table.
func (a *Asset) Names() *NameTable { return a.names }

// NoneIndex returns the index of the table terminator.
func (a *Asset) NoneIndex() uint64 { return a.none }

// Table returns the top-level property table. It is live: edits are
// written by the next Update.
func (a *Asset) Table() *property.Table { return a.table }

// Field returns a top-level property, or nil if the table has no such field.
func (a *Asset) Field(name string) property.Property {
	return a.table.Get(name)
}

// Build encodes the property stream and then the header, whose footer
// records the new stream size.
func (a *Asset) Build() (header, stream []byte, err error) {
	stream, err = property.Encode(a.table, a.names)
	if err != nil {
		return nil, nil, fmt.Errorf("build %s: properties: %w", a.name, err)
	}
	header, err = a.names.Build(int64(len(stream)))
	if err != nil {
		return nil, nil, fmt.Errorf("build %s: header: %w", a.name, err)
	}
	return header, stream, nil
}

// Update rebuilds both members and hands them back to the archive, which
// marks each one modified only if its bytes changed.
func (a *Asset) Update() error {
	header, stream, err := a.Build()
	if err != nil {
		return err
	}
	if err := a.archive.PatchFile(header, a.HeaderPath()); err != nil {
		return fmt.Errorf("update %s: %w", a.name, err)
	}
	if err := a.archive.PatchFile(stream, a.StreamPath()); err != nil {
		return fmt.Errorf("update %s: %w", a.name, err)
	}
	a.log().Debug("updated asset",
		slog.String("name", a.name),
		slog.Int("header_size", len(header)),
		slog.Int("stream_size", len(stream)))
	return nil
}
