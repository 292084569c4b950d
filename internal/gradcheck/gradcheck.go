// Package gradcheck numerically verifies backward implementations: it
// compares the gradients computed by the backward-graph engine against
// centered finite-difference estimates of the same directional derivative.
package gradcheck

import (
	stderrors "errors"

	"github.com/pkg/errors"

	"github.com/lattice-ml/lattice/internal/array"
	"github.com/lattice-ml/lattice/internal/autodiff"
)

// Fprop is a forward function under verification. It must be deterministic
// given identical inputs and must not mutate them.
type Fprop func(inputs []*array.Array) ([]*array.Array, error)

// CheckBackward verifies the backward pass of fprop on one graph id.
//
// The analytic gradients are computed by running fprop once on the given
// inputs and backpropagating gradOutputs through the recorded graph. The
// numeric estimate perturbs each element of each gradient-requiring input by
// the matching element of eps (symmetric differences, re-running fprop
// twice per element) and scales the centered difference by gradOutputs.
//
// An element fails when |analytic - numeric| > atol + rtol*|numeric|. All
// violations are collected and returned as one verification error; nil means
// the check passed. Inputs that do not require gradients on graphID are not
// checked, and when none do the check trivially passes.
func CheckBackward(fprop Fprop, inputs, gradOutputs, eps []*array.Array,
	atol, rtol float64, graphID array.GraphID) error {
	if len(eps) != len(inputs) {
		return errors.Errorf("gradcheck: %d eps arrays for %d inputs", len(eps), len(inputs))
	}

	checked := make([]bool, len(inputs))
	anyRequired := false
	for i, in := range inputs {
		if in.IsGradRequired(graphID) {
			if in.DType().Kind() != array.FloatKind {
				return errors.Errorf("gradcheck: input %d has non-float dtype %s", i, in.DType())
			}
			if !eps[i].Shape().Equal(in.Shape()) {
				return errors.Errorf("gradcheck: eps %d has shape %v, want %v", i, eps[i].Shape(), in.Shape())
			}
			checked[i] = true
			anyRequired = true
		}
	}
	if !anyRequired {
		// Nothing to compare; trivially correct.
		return nil
	}

	analytic, err := analyticGradients(fprop, inputs, gradOutputs, graphID)
	if err != nil {
		return err
	}

	var failures []error
	for i := range inputs {
		if !checked[i] {
			continue
		}
		numeric, err := numericGradient(fprop, inputs, gradOutputs, eps, i)
		if err != nil {
			return err
		}
		if analytic[i] == nil {
			failures = append(failures,
				errors.Errorf("input %d requires grad but received no analytic gradient", i))
			continue
		}
		failures = append(failures, compare(i, analytic[i], numeric, atol, rtol)...)
	}

	if len(failures) > 0 {
		return errors.Wrap(stderrors.Join(failures...), "Backward check failure")
	}
	return nil
}

// analyticGradients runs fprop once and backpropagates gradOutputs on
// graphID, returning each input's gradient (nil where none flowed).
func analyticGradients(fprop Fprop, inputs, gradOutputs []*array.Array,
	graphID array.GraphID) ([]*array.Array, error) {
	for _, in := range inputs {
		in.ClearGrad(graphID)
	}

	outputs, err := fprop(inputs)
	if err != nil {
		return nil, errors.Wrap(err, "gradcheck: forward")
	}
	if len(gradOutputs) != len(outputs) {
		return nil, errors.Errorf("gradcheck: %d grad outputs for %d outputs", len(gradOutputs), len(outputs))
	}
	for i, out := range outputs {
		if !gradOutputs[i].Shape().Equal(out.Shape()) {
			return nil, errors.Errorf("gradcheck: grad output %d has shape %v, want %v",
				i, gradOutputs[i].Shape(), out.Shape())
		}
	}

	if err := autodiff.Backward(outputs, gradOutputs, graphID); err != nil {
		return nil, err
	}

	grads := make([]*array.Array, len(inputs))
	for i, in := range inputs {
		grads[i] = in.Grad(graphID)
	}
	return grads, nil
}

// numericGradient estimates the directional derivative of the seeded outputs
// with respect to input target, one element at a time. Each perturbed
// forward run uses untracked deep copies of the inputs, so nothing is
// recorded and the originals stay untouched.
func numericGradient(fprop Fprop, inputs, gradOutputs, eps []*array.Array,
	target int) ([]float64, error) {
	in := inputs[target]
	n := in.NumElements()
	grad := make([]float64, n)
	ix := make([]int, in.NDim())

	for e := 0; e < n; e++ {
		unflatten(in.Shape(), e, ix)
		h := eps[target].FloatAt(ix...)
		if h == 0 {
			return nil, errors.Errorf("gradcheck: zero epsilon for input %d element %d", target, e)
		}

		plus, err := evalPerturbed(fprop, inputs, target, ix, h)
		if err != nil {
			return nil, err
		}
		minus, err := evalPerturbed(fprop, inputs, target, ix, -h)
		if err != nil {
			return nil, err
		}
		if len(plus) != len(gradOutputs) || len(minus) != len(gradOutputs) {
			return nil, errors.New("gradcheck: forward output count changed between evaluations")
		}

		// Directional derivative: sum over all output elements of
		// gout * (f(x+h) - f(x-h)) / (2h).
		var d float64
		for o, gout := range gradOutputs {
			on := gout.NumElements()
			oix := make([]int, gout.NDim())
			for k := 0; k < on; k++ {
				unflatten(gout.Shape(), k, oix)
				d += gout.FloatAt(oix...) * (plus[o].FloatAt(oix...) - minus[o].FloatAt(oix...)) / (2 * h)
			}
		}
		grad[e] = d
	}
	return grad, nil
}

// evalPerturbed runs fprop on deep untracked copies of the inputs, with
// element ix of input target shifted by delta.
func evalPerturbed(fprop Fprop, inputs []*array.Array, target int, ix []int,
	delta float64) ([]*array.Array, error) {
	copies := make([]*array.Array, len(inputs))
	for i, in := range inputs {
		c, err := in.Copy()
		if err != nil {
			return nil, err
		}
		copies[i] = c
	}
	copies[target].SetFloatAt(copies[target].FloatAt(ix...)+delta, ix...)

	outputs, err := fprop(copies)
	if err != nil {
		return nil, errors.Wrap(err, "gradcheck: perturbed forward")
	}
	return outputs, nil
}

// compare reports every element of the analytic gradient outside the
// combined absolute/relative tolerance band around the numeric estimate.
func compare(input int, analytic *array.Array, numeric []float64, atol, rtol float64) []error {
	var failures []error
	n := analytic.NumElements()
	ix := make([]int, analytic.NDim())
	for e := 0; e < n; e++ {
		unflatten(analytic.Shape(), e, ix)
		a := analytic.FloatAt(ix...)
		want := numeric[e]
		diff := a - want
		if diff < 0 {
			diff = -diff
		}
		bound := want
		if bound < 0 {
			bound = -bound
		}
		if diff > atol+rtol*bound {
			failures = append(failures, errors.Errorf(
				"input %d element %d: analytic %g vs numeric %g (diff %g > atol %g + rtol %g * |numeric|)",
				input, e, a, want, diff, atol, rtol))
		}
	}
	return failures
}

func unflatten(shape array.Shape, flat int, out []int) {
	for i := len(shape) - 1; i >= 0; i-- {
		out[i] = flat % shape[i]
		flat /= shape[i]
	}
}
