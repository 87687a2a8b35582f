// Package logic contains the pure occupancy reconciliation logic for a seat sensor.
// This package has NO external dependencies (no GPIO, MQTT, OS, or time.Sleep).
// Time is always injectable via time.Time parameters.
package logic

import "time"

// Directive is a decoded remote command.
type Directive int

const (
	// DirectiveUnrecognized is any inbound payload that is not actionable.
	DirectiveUnrecognized Directive = iota
	// DirectiveRefresh asks for an immediate status push.
	DirectiveRefresh
	// DirectiveHalt asks the device to stop.
	DirectiveHalt
)

func (d Directive) String() string {
	switch d {
	case DirectiveRefresh:
		return "REFRESH"
	case DirectiveHalt:
		return "HALT"
	default:
		return "UNRECOGNIZED"
	}
}

// Occupancy labels used on the wire and in status output.
const (
	LabelOccupied   = "Occupied"
	LabelUnoccupied = "Unoccupied"
)

// SeatStatus is the last-known occupancy fact to report.
type SeatStatus struct {
	Location   string
	Occupied   bool
	ObservedAt time.Time
}

// Label returns the human-readable occupancy label.
func (s SeatStatus) Label() string {
	if s.Occupied {
		return LabelOccupied
	}
	return LabelUnoccupied
}

// Flags is the pending-intent state shared between the inbound command
// path and the tick loop.
type Flags struct {
	UpdateRequested   bool
	CommandPending    bool
	ShutdownRequested bool
	OccupancyChanged  bool
}

// Phase is the reconciler lifecycle state.
type Phase string

const (
	PhaseRunning     Phase = "RUNNING"
	PhaseTerminating Phase = "TERMINATING"
)

// ReportPolicy controls when a fresh reading counts as an occupancy change.
type ReportPolicy string

const (
	// ReportEveryTick treats every reading as reportable.
	ReportEveryTick ReportPolicy = "every-tick"
	// ReportOnChange only reports readings that differ from the last
	// acknowledged publish.
	ReportOnChange ReportPolicy = "on-change"
)

// Decision is the outcome of a single tick.
type Decision struct {
	Publish   bool
	Terminate bool

	// Status is a copy of the seat status at decision time, ready to encode.
	Status SeatStatus

	// seq is the directive sequence number observed when the decision was taken.
	seq uint64
}
