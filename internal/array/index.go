package array

import "github.com/pkg/errors"

// indexKind discriminates the three per-axis index spec variants.
type indexKind int

const (
	kindAll indexKind = iota
	kindSingle
	kindSlice
)

// ArrayIndex is a single-axis indexing specification used to build views.
// Construct with All, Index or Slice.
type ArrayIndex struct {
	kind  indexKind
	index int
	start int
	stop  int
	step  int
}

// All keeps the axis untouched (full slice).
func All() ArrayIndex {
	return ArrayIndex{kind: kindAll}
}

// Index collapses the axis to the single position i.
func Index(i int) ArrayIndex {
	return ArrayIndex{kind: kindSingle, index: i}
}

// Slice narrows the axis to [start, stop) taking every step-th element.
// step must be >= 1.
func Slice(start, stop, step int) ArrayIndex {
	return ArrayIndex{kind: kindSlice, start: start, stop: stop, step: step}
}

// At produces a view of a selected by the given per-axis index specs.
// Axes beyond the specs stay full. The view shares a's buffer: no data is
// copied, and writes through the view are visible in a.
//
// Returns a range error if a spec addresses positions outside its axis or if
// more specs than axes are given.
func At(a *Array, indices []ArrayIndex) (*Array, error) {
	if len(indices) > a.NDim() {
		return nil, errors.Errorf("too many indices: got %d for a rank-%d array", len(indices), a.NDim())
	}

	offset := a.offset
	shape := make(Shape, 0, a.NDim())
	strides := make([]int, 0, a.NDim())

	for axis, ix := range indices {
		dim := a.shape[axis]
		stride := a.strides[axis]
		switch ix.kind {
		case kindAll:
			shape = append(shape, dim)
			strides = append(strides, stride)
		case kindSingle:
			if ix.index < 0 || ix.index >= dim {
				return nil, errors.Errorf("index %d out of bounds for axis %d (size %d)", ix.index, axis, dim)
			}
			offset += ix.index * stride
		case kindSlice:
			if ix.step < 1 {
				return nil, errors.Errorf("slice step must be >= 1, got %d on axis %d", ix.step, axis)
			}
			if ix.start < 0 || ix.stop > dim || ix.start > ix.stop {
				return nil, errors.Errorf("slice [%d:%d] out of bounds for axis %d (size %d)",
					ix.start, ix.stop, axis, dim)
			}
			n := (ix.stop - ix.start + ix.step - 1) / ix.step
			offset += ix.start * stride
			shape = append(shape, n)
			strides = append(strides, stride*ix.step)
		}
	}

	// Remaining axes are implicitly full.
	for axis := len(indices); axis < a.NDim(); axis++ {
		shape = append(shape, a.shape[axis])
		strides = append(strides, a.strides[axis])
	}

	return a.view(shape, strides, offset), nil
}
