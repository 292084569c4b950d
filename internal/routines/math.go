package routines

import (
	"github.com/pkg/errors"

	"github.com/lattice-ml/lattice/internal/array"
	"github.com/lattice-ml/lattice/internal/backend"
)

// checkElementwise validates the same-shape same-dtype contract of the
// element-wise binary routines.
func checkElementwise(op string, a, b *array.Array) error {
	if a.DType() != b.DType() {
		return errors.Errorf("%s: dtype mismatch: %s vs %s", op, a.DType(), b.DType())
	}
	if !a.Shape().Equal(b.Shape()) {
		return errors.Errorf("%s: shape mismatch: %v vs %v", op, a.Shape(), b.Shape())
	}
	return nil
}

// Add computes element-wise a + b. Both gradients are the output gradient.
func Add(a, b *array.Array) (*array.Array, error) {
	if err := checkElementwise("add", a, b); err != nil {
		return nil, err
	}

	out, err := array.NewArray(a.Shape(), a.DType(), a.Device())
	if err != nil {
		return nil, err
	}

	op, err := resolveOp(a, "Add")
	if err != nil {
		return nil, err
	}
	if err := op.(backend.AddOp).Call(a, b, out); err != nil {
		return nil, errors.Wrap(err, "add")
	}

	identity := func(gout *array.Array, _ []array.GraphID) (*array.Array, error) {
		return gout, nil
	}
	if err := array.SetUpOpNodes("add", []*array.Array{a, b}, out,
		[]array.BackwardFunc{identity, identity}); err != nil {
		return nil, err
	}
	return out, nil
}

// Mul computes element-wise a * b. Each input's gradient is the output
// gradient times the other operand, with the other operand treated as
// constant on the stopped graphs.
func Mul(a, b *array.Array) (*array.Array, error) {
	if err := checkElementwise("mul", a, b); err != nil {
		return nil, err
	}

	out, err := array.NewArray(a.Shape(), a.DType(), a.Device())
	if err != nil {
		return nil, err
	}

	op, err := resolveOp(a, "Mul")
	if err != nil {
		return nil, err
	}
	if err := op.(backend.MulOp).Call(a, b, out); err != nil {
		return nil, errors.Wrap(err, "mul")
	}

	gradA := func(gout *array.Array, stop []array.GraphID) (*array.Array, error) {
		return Mul(gout, b.AsConstant(stop...))
	}
	gradB := func(gout *array.Array, stop []array.GraphID) (*array.Array, error) {
		return Mul(gout, a.AsConstant(stop...))
	}
	if err := array.SetUpOpNodes("mul", []*array.Array{a, b}, out,
		[]array.BackwardFunc{gradA, gradB}); err != nil {
		return nil, err
	}
	return out, nil
}

// Full allocates an array of the given shape and dtype with every element
// set to value. Not recorded on any graph.
func Full(shape array.Shape, dtype array.DataType, value float64, device *array.Device) (*array.Array, error) {
	out, err := array.NewArray(shape, dtype, device)
	if err != nil {
		return nil, err
	}
	op, err := resolveOp(out, "Fill")
	if err != nil {
		return nil, err
	}
	if err := op.(backend.FillOp).Call(out, value); err != nil {
		return nil, errors.Wrap(err, "full")
	}
	return out, nil
}

// OnesLike allocates an all-ones array with a's shape, dtype and device,
// the usual seed for a backward pass from a scalar-free root.
func OnesLike(a *array.Array) (*array.Array, error) {
	return Full(a.Shape(), a.DType(), 1, a.Device())
}
