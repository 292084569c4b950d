package native

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lattice-ml/lattice/internal/backend"
)

func TestBackendName(t *testing.T) {
	assert.Equal(t, "native", New().Name())
}

func TestDefaultDeviceCount(t *testing.T) {
	assert.Equal(t, 1, New().DeviceCount())
}

func TestDeviceCountFromEnv(t *testing.T) {
	t.Setenv(DeviceCountEnv, "4")
	b := New()
	assert.Equal(t, 4, b.DeviceCount())

	d, err := b.Device(3)
	require.NoError(t, err)
	assert.Equal(t, "native:3", d.String())
}

func TestDeviceCountIgnoresInvalidEnv(t *testing.T) {
	t.Setenv(DeviceCountEnv, "not-a-number")
	assert.Equal(t, 1, New().DeviceCount())
}

func TestDeviceCachedAndRangeChecked(t *testing.T) {
	b := New()

	d, err := b.Device(0)
	require.NoError(t, err)
	again, err := b.Device(0)
	require.NoError(t, err)
	assert.Same(t, d, again)

	_, err = b.Device(1)
	assert.Error(t, err)
}

func TestBackendIsRegistered(t *testing.T) {
	b, err := backend.New(BackendName)
	require.NoError(t, err)
	assert.Equal(t, BackendName, b.Name())
}

func TestOpsAreRegistered(t *testing.T) {
	for _, name := range []string{"Take", "AddAt", "Add", "Mul", "Fill"} {
		_, err := backend.ResolveOp(BackendName, name)
		assert.NoError(t, err, "op %s", name)
	}
}
