package uasset

import "github.com/meigma/pak/internal/paktype"

// Errors returned when reading or rebuilding an asset.
var (
	ErrTruncated   = paktype.ErrTruncated
	ErrMalformed   = paktype.ErrMalformed
	ErrUnknownName = paktype.ErrUnknownName
)
