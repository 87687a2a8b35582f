// Package detect provides the occupancy reading consumed once per tick.
// The real implementation reads a presence sensor (PIR, IR break-beam or
// pressure mat) wired to a Linux GPIO line.
// The fake implementation allows testing without hardware.
package detect

// Source produces an occupancy reading.
type Source interface {
	// Read returns true when the seat is occupied.
	Read() (bool, error)

	// Close releases sensor resources.
	Close() error
}

// Defaults for the presence sensor line.
const (
	DefaultChip = "gpiochip0"
	DefaultPin  = 17 // BCM numbering
)

// LineConfig selects the GPIO line carrying the presence signal.
type LineConfig struct {
	Chip string
	Pin  int
	// ActiveLow inverts the raw level: raw 0 = occupied.
	ActiveLow bool
}
