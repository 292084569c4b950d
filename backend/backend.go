// Copyright 2026 The Lattice Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package backend provides the public API for pluggable compute backends:
// backend selection, the lazy locked device table, and the op registry
// backend implementations populate.
package backend

import (
	"github.com/lattice-ml/lattice/internal/backend"
)

// Backend is the interface compute backends implement.
type Backend = backend.Backend

// Constructor builds a backend instance.
type Constructor = backend.Constructor

// DeviceTable is the lazy, locked device cache backends embed.
type DeviceTable = backend.DeviceTable

// Op is a named polymorphic operation unit.
type Op = backend.Op

// Capability interfaces implemented by backend kernels.
type (
	// TakeOp gathers elements along an axis; indices wrap modulo the axis
	// length.
	TakeOp = backend.TakeOp
	// AddAtOp scatter-adds into a copy of its first operand; the adjoint of
	// TakeOp.
	AddAtOp = backend.AddAtOp
	// AddOp computes element-wise addition.
	AddOp = backend.AddOp
	// MulOp computes element-wise multiplication.
	MulOp = backend.MulOp
	// FillOp sets every element to a scalar.
	FillOp = backend.FillOp
)

// Register registers a backend constructor under its name.
func Register(name string, constructor Constructor) {
	backend.Register(name, constructor)
}

// New returns a backend by name; empty selects LATTICE_BACKEND or the first
// registered backend.
func New(name string) (Backend, error) {
	return backend.New(name)
}

// RegisterOp registers an op implementation for the named backend.
func RegisterOp(backendName string, op Op) {
	backend.RegisterOp(backendName, op)
}

// ResolveOp returns the implementation of the named op for the named
// backend.
func ResolveOp(backendName, opName string) (Op, error) {
	return backend.ResolveOp(backendName, opName)
}
