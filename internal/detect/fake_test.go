package detect

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Compile-time interface checks.
var (
	_ Source = (*FakeSource)(nil)
	_ Source = (*GPIOSource)(nil)
)

func TestFakeSourceRead(t *testing.T) {
	f := NewFakeSource(true, false, true)

	for i, want := range []bool{true, false, true} {
		got, err := f.Read()
		require.NoError(t, err)
		assert.Equal(t, want, got, "reading %d", i)
	}

	// Exhausted: last reading repeats.
	for i := 0; i < 3; i++ {
		got, err := f.Read()
		require.NoError(t, err)
		assert.True(t, got)
	}
	assert.Equal(t, 6, f.Reads)
}

func TestFakeSourceNoReadings(t *testing.T) {
	f := NewFakeSource()
	_, err := f.Read()
	assert.Error(t, err)
}

func TestFakeSourceReadError(t *testing.T) {
	f := NewFakeSource(true)
	f.ReadError = errors.New("camera unplugged")

	_, err := f.Read()
	assert.EqualError(t, err, "camera unplugged")

	f.ReadError = nil
	got, err := f.Read()
	require.NoError(t, err)
	assert.True(t, got)
	assert.Equal(t, 2, f.Reads)
}

func TestFakeSourceCloseAndReset(t *testing.T) {
	f := NewFakeSource(false, true)
	_, _ = f.Read()
	_, _ = f.Read()
	require.NoError(t, f.Close())
	assert.True(t, f.Closed)

	f.Reset()
	assert.False(t, f.Closed)
	assert.Zero(t, f.Reads)

	got, err := f.Read()
	require.NoError(t, err)
	assert.False(t, got, "reset rewinds to the first reading")
}
