package backend

import (
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lattice-ml/lattice/internal/array"
)

type fakeBackend struct {
	table   DeviceTable
	count   int
	created atomic.Int32
}

func (b *fakeBackend) Name() string     { return "fake" }
func (b *fakeBackend) DeviceCount() int { return b.count }

func (b *fakeBackend) Device(index int) (*array.Device, error) {
	return b.table.Device(index, b.count, func(i int) *array.Device {
		b.created.Add(1)
		return array.NewDevice(b, i)
	})
}

func TestDeviceTableCachesDevices(t *testing.T) {
	b := &fakeBackend{count: 2}

	d0, err := b.Device(0)
	require.NoError(t, err)
	again, err := b.Device(0)
	require.NoError(t, err)

	assert.Same(t, d0, again)
	assert.Equal(t, int32(1), b.created.Load())

	d1, err := b.Device(1)
	require.NoError(t, err)
	assert.NotSame(t, d0, d1)
	assert.Equal(t, 1, d1.Index())
}

func TestDeviceTableRangeErrors(t *testing.T) {
	b := &fakeBackend{count: 2}

	_, err := b.Device(2)
	assert.Error(t, err)
	_, err = b.Device(-1)
	assert.Error(t, err)
}

func TestDeviceTableConcurrentFirstAccess(t *testing.T) {
	b := &fakeBackend{count: 4}

	const goroutines = 32
	devices := make([]*array.Device, goroutines)
	var wg sync.WaitGroup
	wg.Add(goroutines)
	for g := 0; g < goroutines; g++ {
		go func(g int) {
			defer wg.Done()
			d, err := b.Device(g % b.count)
			if err == nil {
				devices[g] = d
			}
		}(g)
	}
	wg.Wait()

	// Exactly one creation per index, and every caller for the same index
	// observed the same instance.
	assert.Equal(t, int32(b.count), b.created.Load())
	for g := range devices {
		require.NotNil(t, devices[g])
		assert.Same(t, devices[g%b.count], devices[g])
	}
}

type namedOp struct{ name string }

func (op *namedOp) Name() string { return op.name }

func TestOpRegistry(t *testing.T) {
	RegisterOp("fake", &namedOp{name: "TestOnly"})

	op, err := ResolveOp("fake", "TestOnly")
	require.NoError(t, err)
	assert.Equal(t, "TestOnly", op.Name())

	_, err = ResolveOp("fake", "Missing")
	assert.Error(t, err)
	_, err = ResolveOp("other", "TestOnly")
	assert.Error(t, err)

	assert.Panics(t, func() {
		RegisterOp("fake", &namedOp{name: "TestOnly"})
	})
}

func TestBackendRegistry(t *testing.T) {
	Register("fake-registry-test", func() Backend { return &fakeBackend{count: 1} })

	b, err := New("fake-registry-test")
	require.NoError(t, err)
	assert.Equal(t, "fake", b.Name())

	_, err = New("never-registered")
	assert.Error(t, err)

	assert.Panics(t, func() {
		Register("fake-registry-test", func() Backend { return &fakeBackend{count: 1} })
	})
}

func TestBackendSelectionFromEnv(t *testing.T) {
	Register("env-selected", func() Backend { return &fakeBackend{count: 3} })
	t.Setenv(LatticeBackendEnv, "env-selected")

	b, err := New("")
	require.NoError(t, err)
	assert.Equal(t, 3, b.DeviceCount())
}
