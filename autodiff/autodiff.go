// Copyright 2026 The Lattice Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package autodiff provides the public API for backpropagation over the
// op-node graphs recorded during forward evaluation.
//
// Example:
//
//	gid := array.NewGraphID("train")
//	x.RequireGrad(gid)
//	y, _ := array.Mul(x, x)
//	seed, _ := array.OnesLike(y)
//	_ = autodiff.Backward([]*array.Array{y}, []*array.Array{seed}, gid)
//	grad := x.Grad(gid) // 2x
package autodiff

import (
	"github.com/lattice-ml/lattice/internal/array"
	"github.com/lattice-ml/lattice/internal/autodiff"
)

// Backward runs backpropagation on one graph id, seeding each output with
// the matching gradient. Accumulated gradients are stored on every traced
// array reachable from the outputs; query them with Array.Grad.
func Backward(outputs []*array.Array, grads []*array.Array, graphID array.GraphID) error {
	return autodiff.Backward(outputs, grads, graphID)
}
