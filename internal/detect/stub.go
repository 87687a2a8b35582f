//go:build !linux

package detect

import "errors"

// GPIOSource is not available on non-Linux platforms.
type GPIOSource struct{}

// NewGPIOSource returns an error on non-Linux platforms.
func NewGPIOSource(cfg LineConfig) (*GPIOSource, error) {
	return nil, errors.New("detect: gpio not supported on this platform (requires Linux)")
}

// Read is not implemented on non-Linux platforms.
func (s *GPIOSource) Read() (bool, error) {
	return false, errors.New("detect: gpio not supported")
}

// Close is not implemented on non-Linux platforms.
func (s *GPIOSource) Close() error {
	return nil
}
