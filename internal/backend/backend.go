// Package backend provides the pluggable-backend machinery: the lazy locked
// device table, the backend constructor registry, and the per-backend op
// registry the routines layer dispatches through.
package backend

import (
	"os"
	"sync"

	"github.com/pkg/errors"
	"k8s.io/klog/v2"

	"github.com/lattice-ml/lattice/internal/array"
)

// Backend re-exports the interface backends implement. See array.Backend.
type Backend = array.Backend

// LatticeBackendEnv selects the default backend by name, e.g. "native".
const LatticeBackendEnv = "LATTICE_BACKEND"

// Constructor builds a backend instance.
type Constructor func() Backend

var (
	registryMu      sync.RWMutex
	constructors    = make(map[string]Constructor)
	firstRegistered string
)

// Register registers a backend constructor under its name. Call from the
// backend package's init(). Registering the same name twice panics: backend
// names must be unique within the process.
func Register(name string, constructor Constructor) {
	registryMu.Lock()
	defer registryMu.Unlock()
	if _, dup := constructors[name]; dup {
		panic("backend: duplicate registration of " + name)
	}
	if len(constructors) == 0 {
		firstRegistered = name
	}
	constructors[name] = constructor
}

// New returns a backend by name. An empty name selects the LATTICE_BACKEND
// environment variable if set, otherwise the first registered backend.
func New(name string) (Backend, error) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	if name == "" {
		name = os.Getenv(LatticeBackendEnv)
	}
	if name == "" {
		name = firstRegistered
	}
	ctor, ok := constructors[name]
	if !ok {
		return nil, errors.Errorf("backend %q is not registered", name)
	}
	klog.V(2).Infof("creating backend %q", name)
	return ctor(), nil
}

// DeviceTable is the lazy, locked device cache backends embed. Devices are
// created exactly once per index via the factory passed to Device, under the
// table's lock, so concurrent first access observes a single instance.
type DeviceTable struct {
	mu      sync.Mutex
	devices []*array.Device
}

// Device returns the cached device for index, creating it through factory on
// first access. count is the owning backend's device count; an index outside
// [0, count) yields a range error.
func (t *DeviceTable) Device(index, count int, factory func(index int) *array.Device) (*array.Device, error) {
	if index < 0 || index >= count {
		return nil, errors.Errorf("device index %d out of range (backend has %d devices)", index, count)
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	if t.devices == nil {
		t.devices = make([]*array.Device, count)
	}
	if t.devices[index] == nil {
		t.devices[index] = factory(index)
		klog.V(2).Infof("created device %s", t.devices[index])
	}
	return t.devices[index], nil
}
