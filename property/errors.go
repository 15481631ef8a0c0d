package property

import "github.com/meigma/pak/internal/paktype"

// Errors returned by the codec and the table accessors.
var (
	ErrTruncated       = paktype.ErrTruncated
	ErrMalformed       = paktype.ErrMalformed
	ErrUnsupportedType = paktype.ErrUnsupportedType
	ErrUnknownName     = paktype.ErrUnknownName
	ErrValueRange      = paktype.ErrValueRange
	ErrTypeMismatch    = paktype.ErrTypeMismatch
	ErrNoField         = paktype.ErrNoField
)
