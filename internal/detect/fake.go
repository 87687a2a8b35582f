package detect

import (
	"errors"
	"sync"
)

// FakeSource is a test double that returns scripted readings.
type FakeSource struct {
	mu sync.Mutex

	// Readings contains scripted occupancy values to return.
	// Each call to Read() consumes the next reading.
	Readings []bool

	index int

	// Closed tracks if Close was called
	Closed bool

	// ReadError, if set, will be returned by Read()
	ReadError error

	// Reads counts calls to Read, including failed ones.
	Reads int
}

// NewFakeSource creates a FakeSource with the given readings.
func NewFakeSource(readings ...bool) *FakeSource {
	return &FakeSource{Readings: readings}
}

// Read returns the next scripted reading.
// If readings are exhausted, returns the last reading repeatedly.
func (f *FakeSource) Read() (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.Reads++
	if f.ReadError != nil {
		return false, f.ReadError
	}
	if len(f.Readings) == 0 {
		return false, errors.New("no readings configured")
	}

	r := f.Readings[f.index]
	if f.index < len(f.Readings)-1 {
		f.index++
	}
	return r, nil
}

// Close marks the source as closed.
func (f *FakeSource) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Closed = true
	return nil
}

// Reset rewinds the source to the first reading.
func (f *FakeSource) Reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.index = 0
	f.Reads = 0
	f.Closed = false
}
