package backend

import (
	"sync"

	"github.com/pkg/errors"

	"github.com/lattice-ml/lattice/internal/array"
)

// Op is a polymorphic operation unit, identified by a name unique within its
// family. Concrete backend implementations implement one of the capability
// interfaces below; they define only forward computation. Kernels write into
// a preallocated out array and assume the routine wrapper has already
// validated shapes, dtypes and axes.
type Op interface {
	Name() string
}

// TakeOp gathers elements of a along axis at the positions named by the
// integer array indices, writing into out. Index values are wrapped modulo
// the axis length.
type TakeOp interface {
	Op
	Call(a, indices *array.Array, axis int, out *array.Array) error
}

// AddAtOp scatter-adds slices of b into a copy of a at the positions named
// by indices along axis, writing the sum into out. Duplicate indices
// accumulate. The adjoint of TakeOp.
type AddAtOp interface {
	Op
	Call(a, indices *array.Array, axis int, b, out *array.Array) error
}

// AddOp computes element-wise a + b into out. Same shape and dtype.
type AddOp interface {
	Op
	Call(a, b, out *array.Array) error
}

// MulOp computes element-wise a * b into out. Same shape and dtype.
type MulOp interface {
	Op
	Call(a, b, out *array.Array) error
}

// FillOp sets every element of out to the scalar value.
type FillOp interface {
	Op
	Call(out *array.Array, value float64) error
}

type opKey struct {
	backend string
	op      string
}

var (
	opsMu sync.RWMutex
	ops   = make(map[opKey]Op)
)

// RegisterOp registers an op implementation for the named backend. Call from
// the backend package's init(). Duplicate (backend, op name) pairs panic: op
// names must be unique within their family.
func RegisterOp(backendName string, op Op) {
	opsMu.Lock()
	defer opsMu.Unlock()
	key := opKey{backend: backendName, op: op.Name()}
	if _, dup := ops[key]; dup {
		panic("backend: duplicate op registration of " + backendName + "/" + op.Name())
	}
	ops[key] = op
}

// ResolveOp returns the implementation of the named op for the named
// backend.
func ResolveOp(backendName, opName string) (Op, error) {
	opsMu.RLock()
	defer opsMu.RUnlock()
	op, ok := ops[opKey{backend: backendName, op: opName}]
	if !ok {
		return nil, errors.Errorf("backend %q does not implement op %q", backendName, opName)
	}
	return op, nil
}
