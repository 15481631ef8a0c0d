package paktype

import "strings"

// Method names a compression method as advertised in the container trailer.
type Method string

const (
	MethodNone Method = ""
	MethodZlib Method = "Zlib"
	MethodGzip Method = "Gzip"
	MethodZstd Method = "Zstd"
	MethodLZ4  Method = "LZ4"
)

// ParseMethod normalizes a trailer slot name. Unknown names are returned
// as-is so they can still be reported and fall back to DEFLATE.
func ParseMethod(name string) Method {
	switch strings.ToLower(name) {
	case "":
		return MethodNone
	case "zlib":
		return MethodZlib
	case "gzip":
		return MethodGzip
	case "zstd":
		return MethodZstd
	case "lz4":
		return MethodLZ4
	default:
		return Method(name)
	}
}

// String returns the human-readable name of the method.
func (m Method) String() string {
	if m == MethodNone {
		return "none"
	}
	return string(m)
}
