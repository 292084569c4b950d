// Copyright 2026 The Lattice Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package native provides the pure-Go CPU backend.
//
// Importing the package registers the backend and its kernels:
//
//	import (
//	    "github.com/lattice-ml/lattice/backend"
//	    _ "github.com/lattice-ml/lattice/backend/native"
//	)
//
//	be, err := backend.New("native")
package native

import (
	"github.com/lattice-ml/lattice/backend"
	"github.com/lattice-ml/lattice/internal/backend/native"
)

// Backend is the native CPU backend implementation.
type Backend = native.Backend

// BackendName is the registry name of the native backend.
const BackendName = native.BackendName

// DeviceCountEnv overrides the number of native devices.
const DeviceCountEnv = native.DeviceCountEnv

// New creates a native backend.
func New() *Backend {
	return native.New()
}

// Compile-time check that Backend implements backend.Backend.
var _ backend.Backend = (*Backend)(nil)
