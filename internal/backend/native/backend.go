// Package native implements the pure-Go CPU backend. Its kernels operate on
// strided views and are registered into the op registry at package load.
package native

import (
	"os"
	"strconv"

	"github.com/lattice-ml/lattice/internal/array"
	"github.com/lattice-ml/lattice/internal/backend"
)

// BackendName is the registry name of the native backend.
const BackendName = "native"

// DeviceCountEnv overrides the number of native devices, mainly for tests
// exercising multi-device setups on one machine.
const DeviceCountEnv = "LATTICE_NATIVE_DEVICES"

// Backend is the native CPU backend. Devices are created lazily on first
// request and cached for the backend's lifetime.
type Backend struct {
	table       backend.DeviceTable
	deviceCount int
}

// New creates a native backend.
func New() *Backend {
	count := 1
	if v := os.Getenv(DeviceCountEnv); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			count = n
		}
	}
	return &Backend{deviceCount: count}
}

// Name returns "native".
func (b *Backend) Name() string {
	return BackendName
}

// DeviceCount returns the number of native devices, configurable via
// LATTICE_NATIVE_DEVICES.
func (b *Backend) DeviceCount() int {
	return b.deviceCount
}

// Device returns the device for index, creating it on first access.
func (b *Backend) Device(index int) (*array.Device, error) {
	return b.table.Device(index, b.deviceCount, func(i int) *array.Device {
		return array.NewDevice(b, i)
	})
}

func init() {
	backend.Register(BackendName, func() backend.Backend { return New() })

	backend.RegisterOp(BackendName, &takeOp{})
	backend.RegisterOp(BackendName, &addAtOp{})
	backend.RegisterOp(BackendName, &addOp{})
	backend.RegisterOp(BackendName, &mulOp{})
	backend.RegisterOp(BackendName, &fillOp{})
}

// Compile-time check that Backend satisfies the backend interface.
var _ backend.Backend = (*Backend)(nil)
