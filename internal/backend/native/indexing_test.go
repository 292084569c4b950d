package native

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lattice-ml/lattice/internal/array"
)

func testDevice(t *testing.T) *array.Device {
	t.Helper()
	d, err := New().Device(0)
	require.NoError(t, err)
	return d
}

func floats32(t *testing.T, a *array.Array) []float32 {
	t.Helper()
	out := make([]float32, a.NumElements())
	ix := make([]int, a.NDim())
	for f := 0; f < a.NumElements(); f++ {
		ix = unflatten(a.Shape(), f, ix)
		out[f] = float32(a.FloatAt(ix...))
	}
	return out
}

func TestTakeKernel1D(t *testing.T) {
	dev := testDevice(t)

	a, err := array.FromSlice([]float32{10, 20, 30, 40}, array.Shape{4}, dev)
	require.NoError(t, err)
	idx, err := array.FromSlice([]int64{0, 2, 2}, array.Shape{3}, dev)
	require.NoError(t, err)
	out, err := array.NewArray(array.Shape{3}, array.Float32, dev)
	require.NoError(t, err)

	require.NoError(t, (&takeOp{}).Call(a, idx, 0, out))
	assert.Equal(t, []float32{10, 30, 30}, floats32(t, out))
}

func TestTakeKernelWrapsIndices(t *testing.T) {
	dev := testDevice(t)

	a, err := array.FromSlice([]float32{10, 20, 30}, array.Shape{3}, dev)
	require.NoError(t, err)
	// 3 wraps to 0, -1 wraps to 2, 7 wraps to 1.
	idx, err := array.FromSlice([]int64{3, -1, 7}, array.Shape{3}, dev)
	require.NoError(t, err)
	out, err := array.NewArray(array.Shape{3}, array.Float32, dev)
	require.NoError(t, err)

	require.NoError(t, (&takeOp{}).Call(a, idx, 0, out))
	assert.Equal(t, []float32{10, 30, 20}, floats32(t, out))
}

func TestTakeKernelAlongInnerAxis(t *testing.T) {
	dev := testDevice(t)

	a, err := array.FromSlice([]float32{1, 2, 3, 4, 5, 6}, array.Shape{2, 3}, dev)
	require.NoError(t, err)
	idx, err := array.FromSlice([]int32{2, 0}, array.Shape{2}, dev)
	require.NoError(t, err)
	out, err := array.NewArray(array.Shape{2, 2}, array.Float32, dev)
	require.NoError(t, err)

	require.NoError(t, (&takeOp{}).Call(a, idx, 1, out))
	assert.Equal(t, []float32{3, 1, 6, 4}, floats32(t, out))
}

func TestTakeKernelOnStridedView(t *testing.T) {
	dev := testDevice(t)

	base, err := array.FromSlice([]float32{0, 1, 2, 3, 4, 5, 6, 7, 8}, array.Shape{3, 3}, dev)
	require.NoError(t, err)
	// Column 1: [1, 4, 7], a non-contiguous view.
	col, err := array.At(base, []array.ArrayIndex{array.All(), array.Index(1)})
	require.NoError(t, err)

	idx, err := array.FromSlice([]int64{2, 0}, array.Shape{2}, dev)
	require.NoError(t, err)
	out, err := array.NewArray(array.Shape{2}, array.Float32, dev)
	require.NoError(t, err)

	require.NoError(t, (&takeOp{}).Call(col, idx, 0, out))
	assert.Equal(t, []float32{7, 1}, floats32(t, out))
}

func TestAddAtKernelAccumulatesDuplicates(t *testing.T) {
	dev := testDevice(t)

	a, err := array.FromSlice([]float32{1, 1, 1}, array.Shape{3}, dev)
	require.NoError(t, err)
	idx, err := array.FromSlice([]int64{0, 0, 2}, array.Shape{3}, dev)
	require.NoError(t, err)
	b, err := array.FromSlice([]float32{10, 100, 1000}, array.Shape{3}, dev)
	require.NoError(t, err)
	out, err := array.NewArray(array.Shape{3}, array.Float32, dev)
	require.NoError(t, err)

	require.NoError(t, (&addAtOp{}).Call(a, idx, 0, b, out))

	// Duplicate index 0 accumulates both contributions.
	assert.Equal(t, []float32{111, 1, 1001}, floats32(t, out))

	// Inputs stay untouched.
	assert.Equal(t, []float32{1, 1, 1}, floats32(t, a))
	assert.Equal(t, []float32{10, 100, 1000}, floats32(t, b))
}

func TestAddAtKernelWrapsIndices(t *testing.T) {
	dev := testDevice(t)

	a, err := array.FromSlice([]float32{0, 0}, array.Shape{2}, dev)
	require.NoError(t, err)
	idx, err := array.FromSlice([]int64{2, -1}, array.Shape{2}, dev)
	require.NoError(t, err)
	b, err := array.FromSlice([]float32{5, 7}, array.Shape{2}, dev)
	require.NoError(t, err)
	out, err := array.NewArray(array.Shape{2}, array.Float32, dev)
	require.NoError(t, err)

	require.NoError(t, (&addAtOp{}).Call(a, idx, 0, b, out))
	assert.Equal(t, []float32{5, 7}, floats32(t, out))
}

func TestAddAtKernelIntDtype(t *testing.T) {
	dev := testDevice(t)

	a, err := array.FromSlice([]int32{1, 2}, array.Shape{2}, dev)
	require.NoError(t, err)
	idx, err := array.FromSlice([]int64{1, 1}, array.Shape{2}, dev)
	require.NoError(t, err)
	b, err := array.FromSlice([]int32{10, 20}, array.Shape{2}, dev)
	require.NoError(t, err)
	out, err := array.NewArray(array.Shape{2}, array.Int32, dev)
	require.NoError(t, err)

	require.NoError(t, (&addAtOp{}).Call(a, idx, 0, b, out))
	assert.Equal(t, int64(1), out.IntAt(0))
	assert.Equal(t, int64(32), out.IntAt(1))
}
