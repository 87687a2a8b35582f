package status

import (
	"encoding/json"
	"time"
)

// StatusJSON is the top-level JSON envelope for status output.
type StatusJSON struct {
	Status StatusInner `json:"status"`
}

// StatusInner contains the status details.
type StatusInner struct {
	Event         string       `json:"event,omitempty"`
	Reason        string       `json:"reason,omitempty"`
	Location      string       `json:"location"`
	Occupancy     string       `json:"occupancy"`
	ObservedAt    string       `json:"observed_at,omitempty"`
	Phase         string       `json:"phase"`
	UptimeSeconds int64        `json:"uptime_seconds"`
	StartTime     string       `json:"start_time"`
	Timestamp     string       `json:"timestamp"`
	LastPublish   string       `json:"last_publish,omitempty"`
	LastError     string       `json:"last_error,omitempty"`
	MQTT          MQTTStatus   `json:"mqtt"`
	Counts        CountsJSON   `json:"counts"`
	Network       *NetworkJSON `json:"network,omitempty"`
	Config        ConfigJSON   `json:"config"`
}

// MQTTStatus reports MQTT connection state.
type MQTTStatus struct {
	Connected bool   `json:"connected"`
	Broker    string `json:"broker"`
	Topic     string `json:"topic"`
}

// CountsJSON is the JSON representation of tick and directive counts.
type CountsJSON struct {
	Ticks           int `json:"ticks"`
	Published       int `json:"published"`
	PublishFailures int `json:"publish_failures"`
	ReadErrors      int `json:"read_errors"`
	Refresh         int `json:"refresh"`
	Halt            int `json:"halt"`
	Unrecognized    int `json:"unrecognized"`
}

// NetworkJSON is the JSON representation of network info.
type NetworkJSON struct {
	Type       string `json:"type"`
	IP         string `json:"ip"`
	Status     string `json:"status"`
	Gateway    string `json:"gateway"`
	WifiStatus string `json:"wifi_status"`
	SSID       string `json:"ssid"`
}

// ConfigJSON is the JSON representation of daemon config.
type ConfigJSON struct {
	IntervalMs int64  `json:"interval_ms"`
	Report     string `json:"report"`
	HTTPAddr   string `json:"http_addr"`
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

func buildInner(snap Snapshot) StatusInner {
	inner := StatusInner{
		Location:      snap.Config.Location,
		Occupancy:     snap.Occupancy(),
		Phase:         string(snap.Phase),
		UptimeSeconds: int64(snap.Uptime().Truncate(time.Second).Seconds()),
		StartTime:     formatTime(snap.StartTime),
		Timestamp:     formatTime(snap.Now),
		LastPublish:   formatTime(snap.LastPublish),
		LastError:     snap.LastError,
		MQTT: MQTTStatus{
			Connected: snap.MQTTConnected,
			Broker:    snap.Config.Broker,
			Topic:     snap.Config.Topic,
		},
		Counts: CountsJSON{
			Ticks:           snap.Counts.Ticks,
			Published:       snap.Counts.Published,
			PublishFailures: snap.Counts.PublishFailures,
			ReadErrors:      snap.Counts.ReadErrors,
			Refresh:         snap.Counts.Refresh,
			Halt:            snap.Counts.Halt,
			Unrecognized:    snap.Counts.Unrecognized,
		},
		Config: ConfigJSON{
			IntervalMs: snap.Config.IntervalMs,
			Report:     snap.Config.Report,
			HTTPAddr:   snap.Config.HTTPAddr,
		},
	}
	if snap.Observed {
		inner.ObservedAt = formatTime(snap.Seat.ObservedAt)
	}
	if snap.Network != nil {
		inner.Network = &NetworkJSON{
			Type:       snap.Network.Type,
			IP:         snap.Network.IP,
			Status:     snap.Network.Status,
			Gateway:    snap.Network.Gateway,
			WifiStatus: snap.Network.WifiStatus,
			SSID:       snap.Network.SSID,
		}
	}
	return inner
}

// FormatJSON returns the JSON status for the web endpoint (no event/reason).
func FormatJSON(snap Snapshot) []byte {
	data, _ := json.MarshalIndent(StatusJSON{Status: buildInner(snap)}, "", "  ")
	return data
}

// FormatStatusEvent returns the JSON status for an MQTT system event.
func FormatStatusEvent(snap Snapshot, event, reason string) []byte {
	inner := buildInner(snap)
	inner.Event = event
	inner.Reason = reason

	data, _ := json.Marshal(StatusJSON{Status: inner})
	return data
}
