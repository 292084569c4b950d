// Copyright 2026 The Lattice Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package array

import "github.com/lattice-ml/lattice/internal/routines"

// Take gathers elements of a along axis at the positions named by the
// integer values in indices. Out-of-range index values wrap modulo the axis
// length. The result replaces the axis dimension with the shape of indices.
func Take(a, indices *Array, axis int) (*Array, error) {
	return routines.Take(a, indices, axis)
}

// AddAt scatter-adds slices of b into a copy of a at the positions named by
// indices along axis; duplicate indices accumulate. The adjoint of Take.
func AddAt(a, indices *Array, axis int, b *Array) (*Array, error) {
	return routines.AddAt(a, indices, axis, b)
}

// Add computes element-wise a + b.
func Add(a, b *Array) (*Array, error) {
	return routines.Add(a, b)
}

// Mul computes element-wise a * b.
func Mul(a, b *Array) (*Array, error) {
	return routines.Mul(a, b)
}
