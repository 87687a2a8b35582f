//go:build linux

package detect

import (
	"fmt"

	"github.com/warthog618/go-gpiocdev"
)

// GPIOSource reads a presence sensor through the Linux GPIO character device.
type GPIOSource struct {
	line      *gpiocdev.Line
	activeLow bool
}

// NewGPIOSource requests the configured line as an input.
func NewGPIOSource(cfg LineConfig) (*GPIOSource, error) {
	chip := cfg.Chip
	if chip == "" {
		chip = DefaultChip
	}

	// Pull-down matches Pi boot defaults and keeps an unplugged sensor
	// reading as a steady level rather than floating.
	line, err := gpiocdev.RequestLine(chip, cfg.Pin, gpiocdev.AsInput, gpiocdev.WithPullDown)
	if err != nil {
		return nil, fmt.Errorf("request presence pin %d on %s: %w", cfg.Pin, chip, err)
	}

	return &GPIOSource{line: line, activeLow: cfg.ActiveLow}, nil
}

// Read returns the logical occupancy state.
func (s *GPIOSource) Read() (bool, error) {
	raw, err := s.line.Value()
	if err != nil {
		return false, fmt.Errorf("read presence pin: %w", err)
	}
	if s.activeLow {
		return raw == 0, nil
	}
	return raw == 1, nil
}

// Close reconfigures the line to its boot default and releases it.
func (s *GPIOSource) Close() error {
	if s.line == nil {
		return nil
	}
	var errs []error
	if err := s.line.Reconfigure(gpiocdev.AsInput, gpiocdev.WithPullDown); err != nil {
		errs = append(errs, fmt.Errorf("reconfigure presence pin: %w", err))
	}
	if err := s.line.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close presence pin: %w", err))
	}
	if len(errs) > 0 {
		return fmt.Errorf("close errors: %v", errs)
	}
	return nil
}
