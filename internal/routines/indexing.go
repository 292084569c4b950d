// Package routines implements the user-facing array operations. Each routine
// validates its preconditions, allocates the output, dispatches the forward
// computation to the device's backend through the op registry, and records
// backward functions for every graph id its inputs are traced on.
package routines

import (
	"github.com/pkg/errors"

	"github.com/lattice-ml/lattice/internal/array"
	"github.com/lattice-ml/lattice/internal/backend"
)

// resolveOp looks up the named op for the device owning a.
func resolveOp(a *array.Array, name string) (backend.Op, error) {
	return backend.ResolveOp(a.Device().Backend().Name(), name)
}

// checkIndexable validates the shared axis/index preconditions of Take and
// AddAt. Returns the normalized (non-negative) axis.
func checkIndexable(op string, a, indices *array.Array, axis int) (int, error) {
	if axis < 0 {
		axis += a.NDim()
	}
	if axis < 0 || axis >= a.NDim() {
		return 0, errors.Errorf("%s: axis %d out of range for a rank-%d array", op, axis, a.NDim())
	}
	if kind := indices.DType().Kind(); kind != array.IntKind && kind != array.UIntKind {
		return 0, errors.Errorf("%s: indices must have an integer or unsigned-integer dtype kind, got %s",
			op, indices.DType())
	}
	if a.Shape()[axis] == 0 && indices.NumElements() > 0 {
		return 0, errors.Errorf("%s: cannot index axis %d of length 0", op, axis)
	}
	return axis, nil
}

// takeOutShape is a's shape with axis replaced by the full shape of indices.
func takeOutShape(a, indices *array.Array, axis int) array.Shape {
	out := make(array.Shape, 0, a.NDim()-1+indices.NDim())
	out = append(out, a.Shape()[:axis]...)
	out = append(out, indices.Shape()...)
	out = append(out, a.Shape()[axis+1:]...)
	return out
}

// Take gathers elements of a along axis at the positions named by the
// integer values in indices. Index values outside [0, a.Shape()[axis]) wrap
// modulo the axis length; negative values wrap from the end. The result's
// axis dimension is replaced by the shape of indices. a and indices are
// untouched.
func Take(a, indices *array.Array, axis int) (*array.Array, error) {
	axis, err := checkIndexable("take", a, indices, axis)
	if err != nil {
		return nil, err
	}

	out, err := array.NewArray(takeOutShape(a, indices, axis), a.DType(), a.Device())
	if err != nil {
		return nil, err
	}

	op, err := resolveOp(a, "Take")
	if err != nil {
		return nil, err
	}
	if err := op.(backend.TakeOp).Call(a, indices, axis, out); err != nil {
		return nil, errors.Wrap(err, "take")
	}

	// The backward of a gather is a scatter-add of the output gradient into
	// a zeroed array, at the same positions.
	gradA := func(gout *array.Array, stop []array.GraphID) (*array.Array, error) {
		zeros, err := array.ZerosLike(a)
		if err != nil {
			return nil, err
		}
		return AddAt(zeros, indices.AsConstant(stop...), axis, gout)
	}
	if err := array.SetUpOpNodes("take", []*array.Array{a, indices}, out,
		[]array.BackwardFunc{gradA, nil}); err != nil {
		return nil, err
	}
	return out, nil
}

// AddAt scatter-adds slices of b into a copy of a at the positions named by
// indices along axis. Contributions for duplicate index entries accumulate.
// The adjoint of Take: a, indices and b are untouched and the sum is written
// to a fresh output.
func AddAt(a, indices *array.Array, axis int, b *array.Array) (*array.Array, error) {
	axis, err := checkIndexable("add_at", a, indices, axis)
	if err != nil {
		return nil, err
	}
	if a.DType() != b.DType() {
		return nil, errors.Errorf("add_at: dtype mismatch: %s vs %s", a.DType(), b.DType())
	}
	if want := takeOutShape(a, indices, axis); !b.Shape().Equal(want) {
		return nil, errors.Errorf("add_at: b has shape %v, want %v", b.Shape(), want)
	}

	out, err := array.NewArray(a.Shape(), a.DType(), a.Device())
	if err != nil {
		return nil, err
	}

	op, err := resolveOp(a, "AddAt")
	if err != nil {
		return nil, err
	}
	if err := op.(backend.AddAtOp).Call(a, indices, axis, b, out); err != nil {
		return nil, errors.Wrap(err, "add_at")
	}

	gradA := func(gout *array.Array, _ []array.GraphID) (*array.Array, error) {
		return gout, nil
	}
	gradB := func(gout *array.Array, stop []array.GraphID) (*array.Array, error) {
		return Take(gout, indices.AsConstant(stop...), axis)
	}
	if err := array.SetUpOpNodes("add_at", []*array.Array{a, indices, b}, out,
		[]array.BackwardFunc{gradA, nil, gradB}); err != nil {
		return nil, err
	}
	return out, nil
}
