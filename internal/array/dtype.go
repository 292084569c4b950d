// Package array provides the core strided array type, its view machinery,
// and the per-graph backward-graph recording used by the autodiff engine.
package array

// DataType represents runtime type information for array elements.
type DataType int

// Supported element types.
const (
	Int8 DataType = iota
	Int16
	Int32
	Int64
	UInt8
	Float16
	Float32
	Float64
)

// DTypeKind groups data types into coarse families. Routines that accept
// "any integer" indices check the kind rather than enumerating types.
type DTypeKind int

// Data type families.
const (
	IntKind DTypeKind = iota
	UIntKind
	FloatKind
)

// Size returns the byte size of one element of the data type.
func (dt DataType) Size() int {
	switch dt {
	case Int8, UInt8:
		return 1
	case Int16, Float16:
		return 2
	case Int32, Float32:
		return 4
	case Int64, Float64:
		return 8
	default:
		panic("unknown data type")
	}
}

// Kind returns the family of the data type.
func (dt DataType) Kind() DTypeKind {
	switch dt {
	case Int8, Int16, Int32, Int64:
		return IntKind
	case UInt8:
		return UIntKind
	case Float16, Float32, Float64:
		return FloatKind
	default:
		panic("unknown data type")
	}
}

// String returns a human-readable name for the data type.
func (dt DataType) String() string {
	switch dt {
	case Int8:
		return "int8"
	case Int16:
		return "int16"
	case Int32:
		return "int32"
	case Int64:
		return "int64"
	case UInt8:
		return "uint8"
	case Float16:
		return "float16"
	case Float32:
		return "float32"
	case Float64:
		return "float64"
	default:
		return "unknown"
	}
}

// String returns a human-readable name for the kind.
func (k DTypeKind) String() string {
	switch k {
	case IntKind:
		return "int"
	case UIntKind:
		return "uint"
	case FloatKind:
		return "float"
	default:
		return "unknown"
	}
}

// Element is a constraint covering the Go types an Array can be built from.
type Element interface {
	~int8 | ~int16 | ~int32 | ~int64 | ~uint8 | ~uint16 | ~float32 | ~float64
}

// inferDataType maps a Go element type to its DataType. A uint16 element is
// interpreted as a raw float16 bit pattern, matching the storage type used
// by github.com/x448/float16.
func inferDataType[T Element](dummy T) DataType {
	switch any(dummy).(type) {
	case int8:
		return Int8
	case int16:
		return Int16
	case int32:
		return Int32
	case int64:
		return Int64
	case uint8:
		return UInt8
	case uint16:
		return Float16
	case float32:
		return Float32
	case float64:
		return Float64
	default:
		panic("unsupported element type")
	}
}
