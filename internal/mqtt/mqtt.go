// Package mqtt provides the publish/subscribe channel for seat status and
// remote commands, with abstraction for testing.
package mqtt

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sweeney/seat-sensor/internal/logic"
)

// DefaultTopic is the MQTT topic seat status is published on and commands
// are received from.
const DefaultTopic = "studio/seating"

// SeatDiscriminator prefixes every outbound seat payload.
const SeatDiscriminator = "seat"

// DateLayout is the timestamp layout used in seat payloads.
const DateLayout = time.RFC3339

var (
	// ErrOffline is returned when a publish is attempted while the broker
	// connection is down. Seat statuses are not queued; system events are
	// replayed on reconnect.
	ErrOffline = errors.New("mqtt: not connected")

	// ErrPublishTimeout is returned when the broker does not acknowledge a
	// publish within the operation timeout.
	ErrPublishTimeout = errors.New("mqtt: publish timeout")
)

// Channel is the transport consumed by the tick loop and command path.
type Channel interface {
	// Subscribe registers handler for inbound payloads on topic.
	// Handlers run on the transport's goroutine and must not block.
	Subscribe(topic string, handler func(payload []byte)) error

	// Publish sends a seat status to the broker.
	// Returns error if publishing fails (should not crash the process).
	Publish(status logic.SeatStatus) error

	// PublishSystem sends a system lifecycle event to the broker.
	PublishSystem(event SystemEvent) error

	// Close disconnects from the broker.
	Close() error
}

// ConnectionStatus reports whether the MQTT connection is active.
type ConnectionStatus interface {
	IsConnected() bool
}

// SystemEvent represents a system lifecycle event (e.g., startup, shutdown).
type SystemEvent struct {
	Timestamp  time.Time
	Event      string // e.g., "STARTUP", "SHUTDOWN"
	Reason     string // e.g., "SIGTERM", "MQTT_DISCONNECT" (shutdown only)
	RawPayload []byte // Pre-formatted JSON payload; if set, FormatSystemPayload returns it directly
	Retained   bool
}

// SeatPayload is the object carried after the "seat" discriminator.
type SeatPayload struct {
	Location string `json:"location"`
	Status   string `json:"status"`
	Date     string `json:"date"`
}

// Time parses the payload date.
func (p SeatPayload) Time() (time.Time, error) {
	return time.Parse(DateLayout, p.Date)
}

// Occupied reports whether the payload carries the occupied label.
func (p SeatPayload) Occupied() bool {
	return p.Status == logic.LabelOccupied
}

// FormatSeatPayload encodes a seat status for the wire: a JSON string made of
// the "seat" discriminator followed by the JSON-encoded fields. The date is
// rendered in local wall-clock time.
func FormatSeatPayload(status logic.SeatStatus) ([]byte, error) {
	fields, err := json.Marshal(SeatPayload{
		Location: status.Location,
		Status:   status.Label(),
		Date:     status.ObservedAt.Local().Format(DateLayout),
	})
	if err != nil {
		return nil, err
	}
	return json.Marshal(SeatDiscriminator + string(fields))
}

// ParseSeatPayload decodes a payload produced by FormatSeatPayload.
func ParseSeatPayload(data []byte) (SeatPayload, error) {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return SeatPayload{}, fmt.Errorf("decode envelope: %w", err)
	}
	rest, ok := strings.CutPrefix(s, SeatDiscriminator)
	if !ok {
		return SeatPayload{}, fmt.Errorf("missing %q discriminator", SeatDiscriminator)
	}
	var p SeatPayload
	if err := json.Unmarshal([]byte(rest), &p); err != nil {
		return SeatPayload{}, fmt.Errorf("decode seat: %w", err)
	}
	return p, nil
}

// Interpret decodes an inbound command payload. The payload must be a JSON
// string: "update" is a refresh, "stop" is a halt. Anything else, including
// malformed JSON and our own seat payloads echoed back by the broker, is
// unrecognized.
func Interpret(payload []byte) logic.Directive {
	var cmd string
	if err := json.Unmarshal(payload, &cmd); err != nil {
		return logic.DirectiveUnrecognized
	}
	switch cmd {
	case "update":
		return logic.DirectiveRefresh
	case "stop":
		return logic.DirectiveHalt
	default:
		return logic.DirectiveUnrecognized
	}
}

// SystemPayload represents the MQTT message payload for system events.
// Used for simple events (LWT) that don't carry a full status snapshot.
type SystemPayload struct {
	System SystemPayloadInner `json:"system"`
}

// SystemPayloadInner contains the system event details.
type SystemPayloadInner struct {
	Timestamp string `json:"timestamp"`
	Event     string `json:"event"`
	Reason    string `json:"reason,omitempty"`
}

// FormatSystemPayload creates the JSON payload for a system event.
// If event.RawPayload is set, it is returned directly (used for full status snapshots).
func FormatSystemPayload(event SystemEvent) ([]byte, error) {
	if event.RawPayload != nil {
		return event.RawPayload, nil
	}

	payload := SystemPayload{
		System: SystemPayloadInner{
			Timestamp: event.Timestamp.UTC().Format(time.RFC3339),
			Event:     event.Event,
			Reason:    event.Reason,
		},
	}
	return json.Marshal(payload)
}
