package array

import (
	"fmt"
	"unsafe"

	"github.com/pkg/errors"
	"github.com/x448/float16"
)

// Array is a view over a logically shaped, strided, typed memory buffer.
// The buffer is reference-counted and shared with any views derived from the
// array; strides are in elements, offset is the element offset of the view's
// first element within the buffer.
//
// Concurrent writes to overlapping views of the same buffer must be
// serialized by the caller.
type Array struct {
	buf     *buffer
	shape   Shape
	strides []int
	offset  int
	dtype   DataType
	device  *Device
	nodes   map[GraphID]*ArrayNode
}

// NewArray allocates a zeroed array with the given shape and dtype on device.
func NewArray(shape Shape, dtype DataType, device *Device) (*Array, error) {
	if err := shape.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid shape")
	}

	byteSize := shape.NumElements() * dtype.Size()

	return &Array{
		buf:     newBuffer(byteSize),
		shape:   shape.Clone(),
		strides: shape.ComputeStrides(),
		dtype:   dtype,
		device:  device,
		nodes:   make(map[GraphID]*ArrayNode),
	}, nil
}

// FromBuffer builds an array taking ownership of a pre-populated raw buffer.
// The buffer length must match shape.NumElements() * dtype.Size().
func FromBuffer(shape Shape, dtype DataType, data []byte, device *Device) (*Array, error) {
	if err := shape.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid shape")
	}
	want := shape.NumElements() * dtype.Size()
	if len(data) != want {
		return nil, errors.Errorf("buffer size %d does not match shape %v of dtype %s (want %d bytes)",
			len(data), shape, dtype, want)
	}

	return &Array{
		buf:     adoptBuffer(data),
		shape:   shape.Clone(),
		strides: shape.ComputeStrides(),
		dtype:   dtype,
		device:  device,
		nodes:   make(map[GraphID]*ArrayNode),
	}, nil
}

// FromSlice creates an array from a Go slice. The slice is copied into the
// array's memory.
func FromSlice[T Element](data []T, shape Shape, device *Device) (*Array, error) {
	if shape.NumElements() != len(data) {
		return nil, errors.Errorf("shape %v requires %d elements, but got %d",
			shape, shape.NumElements(), len(data))
	}

	var dummy T
	dtype := inferDataType(dummy)

	a, err := NewArray(shape, dtype, device)
	if err != nil {
		return nil, err
	}
	if len(data) > 0 {
		src := unsafe.Slice((*byte)(unsafe.Pointer(&data[0])), len(data)*dtype.Size())
		copy(a.buf.data, src)
	}
	return a, nil
}

// ZerosLike allocates a zeroed array with the same shape, dtype and device.
func ZerosLike(a *Array) (*Array, error) {
	return NewArray(a.shape, a.dtype, a.device)
}

// Shape returns the array's shape.
func (a *Array) Shape() Shape {
	return a.shape
}

// NDim returns the array's rank.
func (a *Array) NDim() int {
	return len(a.shape)
}

// Strides returns the array's element strides.
func (a *Array) Strides() []int {
	return a.strides
}

// Offset returns the element offset of the view within its buffer.
func (a *Array) Offset() int {
	return a.offset
}

// DType returns the array's data type.
func (a *Array) DType() DataType {
	return a.dtype
}

// Device returns the array's compute device.
func (a *Array) Device() *Device {
	return a.device
}

// NumElements returns the number of elements the view exposes.
func (a *Array) NumElements() int {
	return a.shape.NumElements()
}

// IsContiguous reports whether the view is dense row-major with offset 0.
func (a *Array) IsContiguous() bool {
	return a.offset == 0 && sameInts(a.strides, a.shape.ComputeStrides())
}

// SharesBufferWith reports whether two arrays are views over the same buffer.
func (a *Array) SharesBufferWith(other *Array) bool {
	return a.buf == other.buf
}

// Copy returns a contiguous deep copy of the view's elements. The copy owns
// fresh storage and carries no graph state.
func (a *Array) Copy() (*Array, error) {
	out, err := NewArray(a.shape, a.dtype, a.device)
	if err != nil {
		return nil, err
	}
	if a.IsContiguous() {
		copy(out.buf.data, a.buf.data[:len(out.buf.data)])
		return out, nil
	}
	n := a.NumElements()
	ix := make([]int, a.NDim())
	for f := 0; f < n; f++ {
		rem := f
		for i := a.NDim() - 1; i >= 0; i-- {
			ix[i] = rem % a.shape[i]
			rem /= a.shape[i]
		}
		CopyElem(out, ix, a, ix)
	}
	return out, nil
}

// Release drops this view's reference to the buffer. The buffer is freed
// when the last view releases it.
func (a *Array) Release() {
	a.buf.release()
}

// view returns a shallow copy sharing the buffer, with fresh graph state.
func (a *Array) view(shape Shape, strides []int, offset int) *Array {
	a.buf.addRef()
	return &Array{
		buf:     a.buf,
		shape:   shape,
		strides: strides,
		offset:  offset,
		dtype:   a.dtype,
		device:  a.device,
		nodes:   make(map[GraphID]*ArrayNode),
	}
}

// elemOffset computes the buffer-relative element offset for logical indices.
// Panics on rank mismatch or out-of-bounds indices.
func (a *Array) elemOffset(indices []int) int {
	if len(indices) != len(a.shape) {
		panic(fmt.Sprintf("expected %d indices, got %d", len(a.shape), len(indices)))
	}
	offset := a.offset
	for i, idx := range indices {
		if idx < 0 || idx >= a.shape[i] {
			panic(fmt.Sprintf("index %d out of bounds for axis %d (size %d)", idx, i, a.shape[i]))
		}
		offset += idx * a.strides[i]
	}
	return offset
}

// data returns the byte slice starting at the view's offset.
func (a *Array) data() []byte {
	return a.buf.data[a.offset*a.dtype.Size():]
}

// AsInt32 interprets the data from the view's offset to the end of the
// buffer as []int32, so strided views can be indexed by relative offsets.
// Panics if the array's dtype is not Int32.
func (a *Array) AsInt32() []int32 {
	if a.dtype != Int32 {
		panic(fmt.Sprintf("array dtype is %s, not int32", a.dtype))
	}
	data := a.data()
	if len(data) == 0 {
		return nil
	}
	return unsafe.Slice((*int32)(unsafe.Pointer(&data[0])), len(data)/4)
}

// AsInt64 interprets the data from the view's offset as []int64.
// Panics if the array's dtype is not Int64.
func (a *Array) AsInt64() []int64 {
	if a.dtype != Int64 {
		panic(fmt.Sprintf("array dtype is %s, not int64", a.dtype))
	}
	data := a.data()
	if len(data) == 0 {
		return nil
	}
	return unsafe.Slice((*int64)(unsafe.Pointer(&data[0])), len(data)/8)
}

// AsFloat32 interprets the data from the view's offset as []float32.
// Panics if the array's dtype is not Float32.
func (a *Array) AsFloat32() []float32 {
	if a.dtype != Float32 {
		panic(fmt.Sprintf("array dtype is %s, not float32", a.dtype))
	}
	data := a.data()
	if len(data) == 0 {
		return nil
	}
	return unsafe.Slice((*float32)(unsafe.Pointer(&data[0])), len(data)/4)
}

// AsFloat64 interprets the data from the view's offset as []float64.
// Panics if the array's dtype is not Float64.
func (a *Array) AsFloat64() []float64 {
	if a.dtype != Float64 {
		panic(fmt.Sprintf("array dtype is %s, not float64", a.dtype))
	}
	data := a.data()
	if len(data) == 0 {
		return nil
	}
	return unsafe.Slice((*float64)(unsafe.Pointer(&data[0])), len(data)/8)
}

// FloatAt returns the element at the given indices as float64.
// Panics for non-float dtypes or out-of-bounds indices. Float16 elements are
// widened through their IEEE half representation.
func (a *Array) FloatAt(indices ...int) float64 {
	off := a.elemOffset(indices)
	switch a.dtype {
	case Float16:
		bits := *(*uint16)(unsafe.Pointer(&a.buf.data[off*2]))
		return float64(float16.Frombits(bits).Float32())
	case Float32:
		return float64(*(*float32)(unsafe.Pointer(&a.buf.data[off*4])))
	case Float64:
		return *(*float64)(unsafe.Pointer(&a.buf.data[off*8]))
	default:
		panic(fmt.Sprintf("FloatAt: array dtype is %s, not a float kind", a.dtype))
	}
}

// SetFloatAt stores a float64 value at the given indices, narrowing to the
// array's float dtype. Panics for non-float dtypes.
func (a *Array) SetFloatAt(value float64, indices ...int) {
	off := a.elemOffset(indices)
	switch a.dtype {
	case Float16:
		*(*uint16)(unsafe.Pointer(&a.buf.data[off*2])) = float16.Fromfloat32(float32(value)).Bits()
	case Float32:
		*(*float32)(unsafe.Pointer(&a.buf.data[off*4])) = float32(value)
	case Float64:
		*(*float64)(unsafe.Pointer(&a.buf.data[off*8])) = value
	default:
		panic(fmt.Sprintf("SetFloatAt: array dtype is %s, not a float kind", a.dtype))
	}
}

// IntAt returns the element at the given indices as int64.
// Panics for non-integer dtypes.
func (a *Array) IntAt(indices ...int) int64 {
	off := a.elemOffset(indices)
	switch a.dtype {
	case Int8:
		return int64(*(*int8)(unsafe.Pointer(&a.buf.data[off])))
	case Int16:
		return int64(*(*int16)(unsafe.Pointer(&a.buf.data[off*2])))
	case Int32:
		return int64(*(*int32)(unsafe.Pointer(&a.buf.data[off*4])))
	case Int64:
		return *(*int64)(unsafe.Pointer(&a.buf.data[off*8]))
	case UInt8:
		return int64(a.buf.data[off])
	default:
		panic(fmt.Sprintf("IntAt: array dtype is %s, not an integer kind", a.dtype))
	}
}

// SetIntAt stores an int64 value at the given indices, narrowing to the
// array's integer dtype. Panics for non-integer dtypes.
func (a *Array) SetIntAt(value int64, indices ...int) {
	off := a.elemOffset(indices)
	switch a.dtype {
	case Int8:
		*(*int8)(unsafe.Pointer(&a.buf.data[off])) = int8(value)
	case Int16:
		*(*int16)(unsafe.Pointer(&a.buf.data[off*2])) = int16(value)
	case Int32:
		*(*int32)(unsafe.Pointer(&a.buf.data[off*4])) = int32(value)
	case Int64:
		*(*int64)(unsafe.Pointer(&a.buf.data[off*8])) = value
	case UInt8:
		a.buf.data[off] = byte(value)
	default:
		panic(fmt.Sprintf("SetIntAt: array dtype is %s, not an integer kind", a.dtype))
	}
}

// CopyElem copies one element from src at srcIx into dst at dstIx. The two
// arrays must share a dtype; kernels use this for dtype-agnostic gathers.
func CopyElem(dst *Array, dstIx []int, src *Array, srcIx []int) {
	if dst.dtype != src.dtype {
		panic(fmt.Sprintf("CopyElem: dtype mismatch %s vs %s", dst.dtype, src.dtype))
	}
	sz := dst.dtype.Size()
	do := dst.elemOffset(dstIx) * sz
	so := src.elemOffset(srcIx) * sz
	copy(dst.buf.data[do:do+sz], src.buf.data[so:so+sz])
}

// String returns a human-readable description of the array.
func (a *Array) String() string {
	return fmt.Sprintf("Array[%s]%v on %s", a.dtype, a.shape, a.device)
}

func sameInts(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
