package paktype

import "errors"

// Sentinel errors shared by the container, name table and property codec.
var (
	// ErrTruncated is returned when a read runs past the end of its buffer.
	ErrTruncated = errors.New("pak: truncated input")

	// ErrMalformed is returned when a fixed-size or fixed-tag field does not
	// hold the value the format requires.
	ErrMalformed = errors.New("pak: malformed asset")

	// ErrUnsupportedType is returned for a property tag outside the closed vocabulary.
	ErrUnsupportedType = errors.New("pak: unsupported property type")

	// ErrUnknownName is returned when a name or name index is not in the name table.
	ErrUnknownName = errors.New("pak: unknown name")

	// ErrAmbiguousPath is returned when a member path matches more than one entry.
	ErrAmbiguousPath = errors.New("pak: ambiguous path")

	// ErrIntegrity is returned when a stored SHA-1 digest does not match its data.
	ErrIntegrity = errors.New("pak: integrity check failed")

	// ErrDecompression is returned when no codec can decode a chunk.
	ErrDecompression = errors.New("pak: decompression failed")

	// ErrSizeOverflow is returned when byte counts exceed supported limits.
	ErrSizeOverflow = errors.New("pak: size overflow")

	// ErrValueRange is returned when a value does not fit the width of its property.
	ErrValueRange = errors.New("pak: value out of range")

	// ErrNoField is returned when a property table has no field with the requested name.
	ErrNoField = errors.New("pak: no such field")

	// ErrTypeMismatch is returned when a field holds a different property kind
	// than the accessor expects.
	ErrTypeMismatch = errors.New("pak: property type mismatch")
)
