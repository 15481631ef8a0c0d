package property

import "math"

// Kind is a property tag as stored in the name table.
type Kind string

// The closed tag vocabulary.
const (
	KindInt8   Kind = "Int8Property"
	KindInt16  Kind = "Int16Property"
	KindInt    Kind = "IntProperty"
	KindInt64  Kind = "Int64Property"
	KindUInt16 Kind = "UInt16Property"
	KindUInt32 Kind = "UInt32Property"
	KindUInt64 Kind = "UInt64Property"
	KindFloat  Kind = "FloatProperty"
	KindBool   Kind = "BoolProperty"
	KindStr    Kind = "StrProperty"
	KindName   Kind = "NameProperty"
	KindEnum   Kind = "EnumProperty"
	KindByte   Kind = "ByteProperty"
	KindStruct Kind = "StructProperty"
	KindText   Kind = "TextProperty"
	KindArray  Kind = "ArrayProperty"
	KindMap    Kind = "MapProperty"
)

// Names of struct kinds with a fixed binary payload.
const (
	StructVector      = "Vector"
	StructLinearColor = "LinearColor"
)

// NoneName terminates every property table.
const NoneName = "None"

// width returns the declared size of a fixed-width integer kind.
func (k Kind) width() uint64 {
	switch k {
	case KindInt8:
		return 1
	case KindInt16, KindUInt16:
		return 2
	case KindInt, KindUInt32:
		return 4
	case KindInt64, KindUInt64:
		return 8
	default:
		return 0
	}
}

// signedRange returns the inclusive bounds of a signed integer kind.
func (k Kind) signedRange() (int64, int64) {
	switch k {
	case KindInt8:
		return math.MinInt8, math.MaxInt8
	case KindInt16:
		return math.MinInt16, math.MaxInt16
	case KindInt:
		return math.MinInt32, math.MaxInt32
	default:
		return math.MinInt64, math.MaxInt64
	}
}

// unsignedMax returns the upper bound of an unsigned integer kind.
func (k Kind) unsignedMax() uint64 {
	switch k {
	case KindUInt16:
		return math.MaxUint16
	case KindUInt32:
		return math.MaxUint32
	default:
		return math.MaxUint64
	}
}

func (k Kind) signed() bool {
	switch k {
	case KindInt8, KindInt16, KindInt, KindInt64:
		return true
	}
	return false
}

func (k Kind) unsigned() bool {
	switch k {
	case KindUInt16, KindUInt32, KindUInt64:
		return true
	}
	return false
}
