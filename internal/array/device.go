package array

import "fmt"

// Backend is the minimal surface the array layer needs from a compute
// backend. The full backend machinery (device tables, op registries) lives in
// internal/backend; concrete backends implement this interface there.
type Backend interface {
	// Name returns the backend name, unique within the process.
	Name() string

	// DeviceCount returns the number of devices the backend can address.
	DeviceCount() int

	// Device returns the device for the given index, creating and caching
	// it on first access. Fails with a range error if index is out of
	// [0, DeviceCount()).
	Device(index int) (*Device, error)
}

// Device identifies one compute target owned by a Backend. Devices are
// created lazily by their backend and cached for the backend's lifetime;
// ownership of lower-level resources is exclusive to the device.
type Device struct {
	backend Backend
	index   int
}

// NewDevice creates a device handle. Called by backend implementations only,
// from their device factory.
func NewDevice(b Backend, index int) *Device {
	return &Device{backend: b, index: index}
}

// Backend returns the owning backend.
func (d *Device) Backend() Backend {
	return d.backend
}

// Index returns the device index within its backend.
func (d *Device) Index() int {
	return d.index
}

// String returns "name:index", e.g. "native:0".
func (d *Device) String() string {
	return fmt.Sprintf("%s:%d", d.backend.Name(), d.index)
}
