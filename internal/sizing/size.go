// Package sizing provides safe size arithmetic and conversions to prevent overflow.
package sizing

import "math"

// ToInt converts an int64 to int, returning overflowErr if it is negative or
// doesn't fit.
func ToInt(size int64, overflowErr error) (int, error) {
	if size < 0 || uint64(size) > uint64(math.MaxInt) {
		return 0, overflowErr
	}
	return int(size), nil
}

// ToUint32 converts an int to uint32, returning overflowErr if it doesn't fit.
func ToUint32(size int, overflowErr error) (uint32, error) {
	if size < 0 || uint64(size) > math.MaxUint32 {
		return 0, overflowErr
	}
	return uint32(size), nil
}

// ToInt32 converts an int to int32, returning overflowErr if it doesn't fit.
func ToInt32(size int, overflowErr error) (int32, error) {
	if size < math.MinInt32 || size > math.MaxInt32 {
		return 0, overflowErr
	}
	return int32(size), nil
}

// AddInt64 adds two non-negative int64 values, returning (result, false) on overflow.
func AddInt64(a, b int64) (int64, bool) {
	if a < 0 || b < 0 {
		return 0, false
	}
	sum := a + b
	if sum < a {
		return 0, false
	}
	return sum, true
}

// InRange reports whether the half-open range [off, off+length) lies within
// a buffer of the given size.
func InRange(off, length, size int64) bool {
	end, ok := AddInt64(off, length)
	return ok && end <= size
}
