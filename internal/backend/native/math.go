package native

import "github.com/lattice-ml/lattice/internal/array"

// addOp computes element-wise a + b. Same shape and dtype, checked by the
// routine wrapper.
type addOp struct{}

func (op *addOp) Name() string { return "Add" }

func (op *addOp) Call(a, b, out *array.Array) error {
	if contiguous(a, b, out) {
		switch a.DType() {
		case array.Float32:
			ad, bd, od := a.AsFloat32(), b.AsFloat32(), out.AsFloat32()
			for i := 0; i < out.NumElements(); i++ {
				od[i] = ad[i] + bd[i]
			}
			return nil
		case array.Float64:
			ad, bd, od := a.AsFloat64(), b.AsFloat64(), out.AsFloat64()
			for i := 0; i < out.NumElements(); i++ {
				od[i] = ad[i] + bd[i]
			}
			return nil
		}
	}

	var ix []int
	for f := 0; f < out.NumElements(); f++ {
		ix = unflatten(out.Shape(), f, ix)
		switch out.DType().Kind() {
		case array.FloatKind:
			out.SetFloatAt(a.FloatAt(ix...)+b.FloatAt(ix...), ix...)
		default:
			out.SetIntAt(a.IntAt(ix...)+b.IntAt(ix...), ix...)
		}
	}
	return nil
}

// mulOp computes element-wise a * b. Same shape and dtype.
type mulOp struct{}

func (op *mulOp) Name() string { return "Mul" }

func (op *mulOp) Call(a, b, out *array.Array) error {
	if contiguous(a, b, out) {
		switch a.DType() {
		case array.Float32:
			ad, bd, od := a.AsFloat32(), b.AsFloat32(), out.AsFloat32()
			for i := 0; i < out.NumElements(); i++ {
				od[i] = ad[i] * bd[i]
			}
			return nil
		case array.Float64:
			ad, bd, od := a.AsFloat64(), b.AsFloat64(), out.AsFloat64()
			for i := 0; i < out.NumElements(); i++ {
				od[i] = ad[i] * bd[i]
			}
			return nil
		}
	}

	var ix []int
	for f := 0; f < out.NumElements(); f++ {
		ix = unflatten(out.Shape(), f, ix)
		mulElem(out, a, b, ix)
	}
	return nil
}

// fillOp sets every element of out to a scalar value.
type fillOp struct{}

func (op *fillOp) Name() string { return "Fill" }

func (op *fillOp) Call(out *array.Array, value float64) error {
	var ix []int
	for f := 0; f < out.NumElements(); f++ {
		ix = unflatten(out.Shape(), f, ix)
		switch out.DType().Kind() {
		case array.FloatKind:
			out.SetFloatAt(value, ix...)
		default:
			out.SetIntAt(int64(value), ix...)
		}
	}
	return nil
}
