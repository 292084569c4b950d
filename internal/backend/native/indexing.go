package native

import "github.com/lattice-ml/lattice/internal/array"

// takeOp gathers elements of a along axis at positions named by indices.
// Index values are wrapped modulo the axis length, negative wrap included.
type takeOp struct{}

func (op *takeOp) Name() string { return "Take" }

// Call assumes the routine wrapper validated axis, dtypes and out's shape:
// out.shape = a.shape with axis replaced by indices.shape.
func (op *takeOp) Call(a, indices *array.Array, axis int, out *array.Array) error {
	lead := a.Shape()[:axis]
	tail := a.Shape()[axis+1:]
	axisLen := a.Shape()[axis]
	idxShape := indices.Shape()

	leadN := lead.NumElements()
	tailN := tail.NumElements()
	idxN := idxShape.NumElements()

	var leadIx, tailIx, idxIx []int
	srcIx := make([]int, a.NDim())
	dstIx := make([]int, out.NDim())

	for lf := 0; lf < leadN; lf++ {
		leadIx = unflatten(lead, lf, leadIx)
		for kf := 0; kf < idxN; kf++ {
			idxIx = unflatten(idxShape, kf, idxIx)
			j := int(indices.IntAt(idxIx...)) % axisLen
			if j < 0 {
				j += axisLen
			}
			for tf := 0; tf < tailN; tf++ {
				tailIx = unflatten(tail, tf, tailIx)

				n := copy(srcIx, leadIx)
				srcIx[n] = j
				copy(srcIx[n+1:], tailIx)

				n = copy(dstIx, leadIx)
				n += copy(dstIx[n:], idxIx)
				copy(dstIx[n:], tailIx)

				array.CopyElem(out, dstIx, a, srcIx)
			}
		}
	}
	return nil
}

// addAtOp scatter-adds slices of b into a copy of a at the positions named
// by indices along axis. Duplicate indices accumulate.
type addAtOp struct{}

func (op *addAtOp) Name() string { return "AddAt" }

// Call assumes the routine wrapper validated axis, dtypes and shapes:
// b.shape = a.shape with axis replaced by indices.shape, out.shape = a.shape.
func (op *addAtOp) Call(a, indices *array.Array, axis int, b, out *array.Array) error {
	// out starts as a copy of a.
	n := a.NumElements()
	var ix []int
	for f := 0; f < n; f++ {
		ix = unflatten(a.Shape(), f, ix)
		array.CopyElem(out, ix, a, ix)
	}

	lead := a.Shape()[:axis]
	tail := a.Shape()[axis+1:]
	axisLen := a.Shape()[axis]
	idxShape := indices.Shape()

	leadN := lead.NumElements()
	tailN := tail.NumElements()
	idxN := idxShape.NumElements()

	var leadIx, tailIx, idxIx []int
	outIx := make([]int, out.NDim())
	srcIx := make([]int, b.NDim())

	for lf := 0; lf < leadN; lf++ {
		leadIx = unflatten(lead, lf, leadIx)
		for kf := 0; kf < idxN; kf++ {
			idxIx = unflatten(idxShape, kf, idxIx)
			j := int(indices.IntAt(idxIx...)) % axisLen
			if j < 0 {
				j += axisLen
			}
			for tf := 0; tf < tailN; tf++ {
				tailIx = unflatten(tail, tf, tailIx)

				c := copy(outIx, leadIx)
				outIx[c] = j
				copy(outIx[c+1:], tailIx)

				c = copy(srcIx, leadIx)
				c += copy(srcIx[c:], idxIx)
				copy(srcIx[c:], tailIx)

				addElem(out, outIx, b, srcIx)
			}
		}
	}
	return nil
}
