// Copyright 2026 The Lattice Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package array provides the public API for lattice arrays: strided typed
// views over shared storage, zero-copy indexing, and per-graph gradient
// tracking.
//
// Example:
//
//	be, _ := backend.New("native")
//	dev, _ := be.Device(0)
//	x, _ := array.FromSlice([]float32{1, 2, 3}, array.Shape{3}, dev)
//	x.RequireGrad("graph_1")
//	y, _ := array.Mul(x, x)
package array

import (
	"github.com/lattice-ml/lattice/internal/array"
	"github.com/lattice-ml/lattice/internal/routines"
)

// DataType represents the element type of an array.
type DataType = array.DataType

// Element type constants.
const (
	Int8    DataType = array.Int8
	Int16   DataType = array.Int16
	Int32   DataType = array.Int32
	Int64   DataType = array.Int64
	UInt8   DataType = array.UInt8
	Float16 DataType = array.Float16
	Float32 DataType = array.Float32
	Float64 DataType = array.Float64
)

// DTypeKind groups element types into int, uint and float families.
type DTypeKind = array.DTypeKind

// Element type families.
const (
	IntKind   DTypeKind = array.IntKind
	UIntKind  DTypeKind = array.UIntKind
	FloatKind DTypeKind = array.FloatKind
)

// Shape represents the dimensions of an array.
type Shape = array.Shape

// Array is a view over a logically shaped, strided, typed memory buffer.
type Array = array.Array

// ArrayIndex is a single-axis indexing specification used to build views.
type ArrayIndex = array.ArrayIndex

// Device identifies one compute target owned by a backend.
type Device = array.Device

// GraphID identifies one independent gradient-tracking context.
type GraphID = array.GraphID

// BackwardFunc computes the gradient for one input of a recorded op.
type BackwardFunc = array.BackwardFunc

// OpNode records one forward op invocation for one graph id.
type OpNode = array.OpNode

// Elem is the constraint covering the Go types an Array can be built from.
type Elem = array.Element

// NewGraphID returns a fresh, process-unique graph id with the given prefix.
func NewGraphID(prefix string) GraphID {
	return array.NewGraphID(prefix)
}

// NewArray allocates a zeroed array.
func NewArray(shape Shape, dtype DataType, device *Device) (*Array, error) {
	return array.NewArray(shape, dtype, device)
}

// FromBuffer builds an array taking ownership of a pre-populated raw buffer.
func FromBuffer(shape Shape, dtype DataType, data []byte, device *Device) (*Array, error) {
	return array.FromBuffer(shape, dtype, data, device)
}

// FromSlice creates an array from a Go slice, copying the data.
func FromSlice[T Elem](data []T, shape Shape, device *Device) (*Array, error) {
	return array.FromSlice(data, shape, device)
}

// ZerosLike allocates a zeroed array shaped like a.
func ZerosLike(a *Array) (*Array, error) {
	return array.ZerosLike(a)
}

// OnesLike allocates an all-ones array shaped like a.
func OnesLike(a *Array) (*Array, error) {
	return routines.OnesLike(a)
}

// Full allocates an array with every element set to value.
func Full(shape Shape, dtype DataType, value float64, device *Device) (*Array, error) {
	return routines.Full(shape, dtype, value, device)
}

// All keeps an axis untouched (full slice).
func All() ArrayIndex { return array.All() }

// Index collapses an axis to the single position i.
func Index(i int) ArrayIndex { return array.Index(i) }

// Slice narrows an axis to [start, stop) taking every step-th element.
func Slice(start, stop, step int) ArrayIndex { return array.Slice(start, stop, step) }

// At produces a zero-copy view of a selected by per-axis index specs.
func At(a *Array, indices []ArrayIndex) (*Array, error) {
	return array.At(a, indices)
}

// SetUpOpNodes records a forward op invocation on every graph id traced by
// its inputs. Use when implementing custom differentiable operations.
func SetUpOpNodes(name string, inputs []*Array, output *Array, backwardFns []BackwardFunc) error {
	return array.SetUpOpNodes(name, inputs, output, backwardFns)
}
