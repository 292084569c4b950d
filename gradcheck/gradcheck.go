// Copyright 2026 The Lattice Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package gradcheck provides the public API for numeric verification of
// backward implementations via symmetric finite differences.
package gradcheck

import (
	"github.com/lattice-ml/lattice/internal/array"
	"github.com/lattice-ml/lattice/internal/gradcheck"
)

// Fprop is a forward function under verification.
type Fprop = gradcheck.Fprop

// CheckBackward compares the analytic gradients of fprop against centered
// finite-difference estimates. A nil result means every checked element was
// within atol + rtol*|numeric|; a non-nil result describes each violation.
// Inputs not requiring gradients on graphID are skipped, and the check
// trivially passes when none do.
func CheckBackward(fprop Fprop, inputs, gradOutputs, eps []*array.Array,
	atol, rtol float64, graphID array.GraphID) error {
	return gradcheck.CheckBackward(fprop, inputs, gradOutputs, eps, atol, rtol, graphID)
}
