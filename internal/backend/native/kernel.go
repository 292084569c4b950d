package native

import "github.com/lattice-ml/lattice/internal/array"

// unflatten converts a flat row-major position into a multi-index for shape.
func unflatten(shape array.Shape, flat int, out []int) []int {
	if cap(out) < len(shape) {
		out = make([]int, len(shape))
	} else {
		out = out[:len(shape)]
	}
	for i := len(shape) - 1; i >= 0; i-- {
		out[i] = flat % shape[i]
		flat /= shape[i]
	}
	return out
}

// addElem accumulates src[srcIx] into dst[dstIx] using the dtype family's
// native arithmetic.
func addElem(dst *array.Array, dstIx []int, src *array.Array, srcIx []int) {
	switch dst.DType().Kind() {
	case array.FloatKind:
		dst.SetFloatAt(dst.FloatAt(dstIx...)+src.FloatAt(srcIx...), dstIx...)
	default:
		dst.SetIntAt(dst.IntAt(dstIx...)+src.IntAt(srcIx...), dstIx...)
	}
}

// mulElem stores a[ix] * b[ix] into dst[ix].
func mulElem(dst, a, b *array.Array, ix []int) {
	switch dst.DType().Kind() {
	case array.FloatKind:
		dst.SetFloatAt(a.FloatAt(ix...)*b.FloatAt(ix...), ix...)
	default:
		dst.SetIntAt(a.IntAt(ix...)*b.IntAt(ix...), ix...)
	}
}

// contiguous reports whether every given array is dense row-major, enabling
// the flat fast paths.
func contiguous(arrays ...*array.Array) bool {
	for _, a := range arrays {
		if !a.IsContiguous() {
			return false
		}
	}
	return true
}
