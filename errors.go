package pak

import "github.com/meigma/pak/internal/paktype"

// Sentinel errors re-exported from internal/paktype.
var (
	// ErrTruncated is returned when the container or a member ends early.
	ErrTruncated = paktype.ErrTruncated

	// ErrMalformed is returned when a fixed field does not hold the value the
	// format requires.
	ErrMalformed = paktype.ErrMalformed

	// ErrAmbiguousPath is returned when a member name matches several entries.
	ErrAmbiguousPath = paktype.ErrAmbiguousPath

	// ErrIntegrity is returned when a stored SHA-1 digest does not match.
	ErrIntegrity = paktype.ErrIntegrity

	// ErrDecompression is returned when a chunk cannot be decoded.
	ErrDecompression = paktype.ErrDecompression

	// ErrSizeOverflow is returned when byte counts exceed supported limits.
	ErrSizeOverflow = paktype.ErrSizeOverflow
)
