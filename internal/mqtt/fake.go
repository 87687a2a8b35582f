package mqtt

import (
	"sync"

	"github.com/sweeney/seat-sensor/internal/logic"
)

// FakeChannel records published messages for test assertions and lets tests
// inject inbound payloads. Safe for concurrent use.
type FakeChannel struct {
	mu sync.Mutex

	// Statuses contains all seat statuses that were published.
	Statuses []logic.SeatStatus

	// Payloads contains the wire payloads that were published.
	Payloads [][]byte

	// SystemEvents contains all system events that were published.
	SystemEvents []SystemEvent

	// SystemPayloads contains the JSON payloads for system events.
	SystemPayloads [][]byte

	// PublishError, if set, will be returned by Publish.
	PublishError error

	// PublishErrors is consumed one entry per Publish call before
	// PublishError is consulted. A nil entry means success.
	PublishErrors []error

	// PublishSystemError, if set, will be returned by PublishSystem.
	PublishSystemError error

	// OnPublish, if set, is called after a status is recorded.
	OnPublish func(status logic.SeatStatus)

	// Attempts counts Publish calls, including failed ones.
	Attempts int

	// Closed tracks if Close was called.
	Closed bool

	// Connected controls the return value of IsConnected.
	Connected bool

	handlers map[string]func([]byte)
}

// NewFakeChannel creates a FakeChannel for testing.
func NewFakeChannel() *FakeChannel {
	return &FakeChannel{handlers: make(map[string]func([]byte))}
}

// Subscribe records the handler for topic.
func (f *FakeChannel) Subscribe(topic string, handler func([]byte)) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.handlers == nil {
		f.handlers = make(map[string]func([]byte))
	}
	f.handlers[topic] = handler
	return nil
}

// Deliver simulates an inbound message on topic. It reports whether a
// handler was subscribed.
func (f *FakeChannel) Deliver(topic string, payload []byte) bool {
	f.mu.Lock()
	h := f.handlers[topic]
	f.mu.Unlock()
	if h == nil {
		return false
	}
	h(payload)
	return true
}

// Publish records the seat status.
func (f *FakeChannel) Publish(status logic.SeatStatus) error {
	f.mu.Lock()
	f.Attempts++
	if len(f.PublishErrors) > 0 {
		err := f.PublishErrors[0]
		f.PublishErrors = f.PublishErrors[1:]
		if err != nil {
			f.mu.Unlock()
			return err
		}
	} else if f.PublishError != nil {
		f.mu.Unlock()
		return f.PublishError
	}

	payload, err := FormatSeatPayload(status)
	if err != nil {
		f.mu.Unlock()
		return err
	}
	f.Statuses = append(f.Statuses, status)
	f.Payloads = append(f.Payloads, payload)
	hook := f.OnPublish
	f.mu.Unlock()

	if hook != nil {
		hook(status)
	}
	return nil
}

// PublishSystem records the system event.
func (f *FakeChannel) PublishSystem(event SystemEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.PublishSystemError != nil {
		return f.PublishSystemError
	}

	payload, err := FormatSystemPayload(event)
	if err != nil {
		return err
	}
	f.SystemEvents = append(f.SystemEvents, event)
	f.SystemPayloads = append(f.SystemPayloads, payload)
	return nil
}

// Close marks the channel as closed.
func (f *FakeChannel) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Closed = true
	return nil
}

// IsConnected reports whether the fake channel is "connected".
func (f *FakeChannel) IsConnected() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.Connected
}

// Published returns a copy of the recorded statuses.
func (f *FakeChannel) Published() []logic.SeatStatus {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]logic.SeatStatus(nil), f.Statuses...)
}

// Reset clears recorded messages and scripted errors. Subscriptions are kept.
func (f *FakeChannel) Reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Statuses = nil
	f.Payloads = nil
	f.SystemEvents = nil
	f.SystemPayloads = nil
	f.PublishError = nil
	f.PublishErrors = nil
	f.PublishSystemError = nil
	f.Attempts = 0
	f.Closed = false
	f.Connected = false
}
