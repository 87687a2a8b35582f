// Package status provides a thread-safe status tracker for the seat-sensor daemon.
// It is read by HTTP handlers and by the STARTUP/SHUTDOWN system events.
package status

import (
	"sync"
	"time"

	"github.com/sweeney/seat-sensor/internal/logic"
)

// NetworkInfo contains network state as reported by pi-helper.
type NetworkInfo struct {
	Type       string
	IP         string
	Status     string
	Gateway    string
	WifiStatus string
	SSID       string
}

// Config contains daemon configuration for display.
type Config struct {
	Location   string
	IntervalMs int64
	Report     string
	Broker     string
	Topic      string
	HTTPAddr   string
}

// Counts tracks tick outcomes and directives since startup.
type Counts struct {
	Ticks           int
	Published       int
	PublishFailures int
	ReadErrors      int
	Refresh         int
	Halt            int
	Unrecognized    int
}

// Snapshot is a point-in-time view of daemon state.
// It is a value type, safe to use after the lock is released.
type Snapshot struct {
	Seat          logic.SeatStatus
	Observed      bool // at least one reading has been taken
	Phase         logic.Phase
	Counts        Counts
	LastPublish   time.Time
	LastError     string
	StartTime     time.Time
	Now           time.Time
	MQTTConnected bool
	Network       *NetworkInfo
	Config        Config
}

// Uptime returns the duration since the daemon started.
func (s Snapshot) Uptime() time.Duration {
	return s.Now.Sub(s.StartTime)
}

// Occupancy returns the occupancy label, or UNKNOWN before the first reading.
func (s Snapshot) Occupancy() string {
	if !s.Observed {
		return "UNKNOWN"
	}
	return s.Seat.Label()
}

// Tracker holds mutable daemon state behind an RWMutex.
type Tracker struct {
	mu   sync.RWMutex
	snap Snapshot
	now  func() time.Time
}

// NewTracker creates a Tracker with the given start time and config.
func NewTracker(startTime time.Time, cfg Config) *Tracker {
	return &Tracker{
		snap: Snapshot{
			Seat:      logic.SeatStatus{Location: cfg.Location},
			Phase:     logic.PhaseRunning,
			StartTime: startTime,
			Config:    cfg,
		},
		now: time.Now,
	}
}

// Update records the seat status and phase after a tick.
func (t *Tracker) Update(seat logic.SeatStatus, phase logic.Phase) {
	t.mu.Lock()
	t.snap.Seat = seat
	t.snap.Observed = true
	t.snap.Phase = phase
	t.snap.Counts.Ticks++
	t.mu.Unlock()
}

// SetPhase records the lifecycle phase without counting a tick.
func (t *Tracker) SetPhase(phase logic.Phase) {
	t.mu.Lock()
	t.snap.Phase = phase
	t.mu.Unlock()
}

// RecordPublish records the outcome of a seat publish.
func (t *Tracker) RecordPublish(at time.Time, err error) {
	t.mu.Lock()
	if err != nil {
		t.snap.Counts.PublishFailures++
		t.snap.LastError = err.Error()
	} else {
		t.snap.Counts.Published++
		t.snap.LastPublish = at
	}
	t.mu.Unlock()
}

// RecordReadError records a failed sensor read.
func (t *Tracker) RecordReadError(err error) {
	t.mu.Lock()
	t.snap.Counts.ReadErrors++
	t.snap.LastError = err.Error()
	t.mu.Unlock()
}

// RecordDirective counts an inbound directive. Safe to call from the
// transport goroutine.
func (t *Tracker) RecordDirective(d logic.Directive) {
	t.mu.Lock()
	switch d {
	case logic.DirectiveRefresh:
		t.snap.Counts.Refresh++
	case logic.DirectiveHalt:
		t.snap.Counts.Halt++
	default:
		t.snap.Counts.Unrecognized++
	}
	t.mu.Unlock()
}

// SetMQTTConnected sets the MQTT connection status.
func (t *Tracker) SetMQTTConnected(connected bool) {
	t.mu.Lock()
	t.snap.MQTTConnected = connected
	t.mu.Unlock()
}

// SetNetwork sets the network info.
func (t *Tracker) SetNetwork(info *NetworkInfo) {
	t.mu.Lock()
	t.snap.Network = info
	t.mu.Unlock()
}

// Snapshot returns a point-in-time copy of the daemon state.
// The Now field is set to the current time at the moment of the call.
func (t *Tracker) Snapshot() Snapshot {
	t.mu.RLock()
	s := t.snap
	t.mu.RUnlock()
	s.Now = t.now()
	return s
}
