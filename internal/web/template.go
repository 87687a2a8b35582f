package web

import (
	"fmt"
	"html/template"
	"io"
	"time"

	"github.com/sweeney/seat-sensor/internal/status"
)

var indexTmpl = template.Must(template.New("index").Funcs(template.FuncMap{
	"uptime": func(d time.Duration) string {
		d = d.Truncate(time.Second)
		days := int(d.Hours()) / 24
		h := int(d.Hours()) % 24
		m := int(d.Minutes()) % 60
		s := int(d.Seconds()) % 60
		if days > 0 {
			return fmt.Sprintf("%dd %dh %dm %ds", days, h, m, s)
		}
		if h > 0 {
			return fmt.Sprintf("%dh %dm %ds", h, m, s)
		}
		if m > 0 {
			return fmt.Sprintf("%dm %ds", m, s)
		}
		return fmt.Sprintf("%ds", s)
	},
	"occupancyClass": func(label string) string {
		switch label {
		case "Occupied":
			return "occupied"
		case "Unoccupied":
			return "free"
		}
		return "unknown"
	},
	"timeOrDash": func(t time.Time) string {
		if t.IsZero() {
			return "-"
		}
		return t.UTC().Format(time.RFC3339)
	},
}).Parse(indexHTML))

const indexHTML = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<meta http-equiv="refresh" content="10">
<title>Seat Sensor {{.Config.Location}}</title>
<style>
body { font-family: monospace; max-width: 600px; margin: 2em auto; padding: 0 1em; }
h1 { font-size: 1.4em; }
table { border-collapse: collapse; width: 100%; margin: 1em 0; }
td, th { text-align: left; padding: 4px 8px; border-bottom: 1px solid #ddd; }
th { width: 40%; }
.occupied { color: #c00; font-weight: bold; }
.free { color: green; font-weight: bold; }
.unknown { color: orange; }
.connected { color: green; }
.disconnected { color: red; }
</style>
</head>
<body>
<h1>Seat Sensor {{.Config.Location}}</h1>

<h2>Seat</h2>
<table>
<tr><th>Status</th><td id="seat-state" class="{{occupancyClass .Occupancy}}">{{.Occupancy}}</td></tr>
<tr><th>Observed</th><td>{{if .Observed}}{{timeOrDash .Seat.ObservedAt}}{{else}}-{{end}}</td></tr>
<tr><th>Phase</th><td>{{.Phase}}</td></tr>
<tr><th>Last Publish</th><td>{{timeOrDash .LastPublish}}</td></tr>
{{if .LastError}}<tr><th>Last Error</th><td>{{.LastError}}</td></tr>{{end}}
</table>

<h2>Connectivity</h2>
<table>
<tr><th>MQTT</th><td class="{{if .MQTTConnected}}connected{{else}}disconnected{{end}}">{{if .MQTTConnected}}connected{{else}}disconnected{{end}}</td></tr>
<tr><th>Broker</th><td>{{.Config.Broker}}</td></tr>
<tr><th>Topic</th><td>{{.Config.Topic}}</td></tr>
{{if .Network}}<tr><th>Network</th><td>{{.Network.Status}} ({{.Network.Type}}{{if .Network.SSID}}, {{.Network.SSID}}{{end}})</td></tr>
<tr><th>IP</th><td>{{.Network.IP}}</td></tr>{{end}}
</table>

<h2>Counts</h2>
<table>
<tr><th>Ticks</th><td>{{.Counts.Ticks}}</td></tr>
<tr><th>Published</th><td>{{.Counts.Published}}</td></tr>
<tr><th>Publish Failures</th><td>{{.Counts.PublishFailures}}</td></tr>
<tr><th>Read Errors</th><td>{{.Counts.ReadErrors}}</td></tr>
<tr><th>Update Commands</th><td>{{.Counts.Refresh}}</td></tr>
<tr><th>Stop Commands</th><td>{{.Counts.Halt}}</td></tr>
<tr><th>Ignored Commands</th><td>{{.Counts.Unrecognized}}</td></tr>
</table>

<h2>System</h2>
<table>
<tr><th>Uptime</th><td>{{uptime .Uptime}}</td></tr>
<tr><th>Started</th><td>{{.StartTime.UTC.Format "2006-01-02T15:04:05Z"}}</td></tr>
<tr><th>Interval</th><td>{{.Config.IntervalMs}}ms</td></tr>
<tr><th>Report</th><td>{{.Config.Report}}</td></tr>
<tr><th>HTTP</th><td>{{.Config.HTTPAddr}}</td></tr>
</table>

<p><a href="/index.json">JSON</a></p>
</body>
</html>
`

func renderHTML(w io.Writer, snap status.Snapshot) {
	// Snapshot has Uptime() and Occupancy() methods but the template wants fields.
	data := struct {
		status.Snapshot
		Uptime    time.Duration
		Occupancy string
	}{
		Snapshot:  snap,
		Uptime:    snap.Uptime(),
		Occupancy: snap.Occupancy(),
	}
	indexTmpl.Execute(w, data)
}
