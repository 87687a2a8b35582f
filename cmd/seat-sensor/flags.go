package main

import (
	"fmt"
	"time"

	"github.com/spf13/pflag"

	"github.com/sweeney/seat-sensor/internal/config"
	"github.com/sweeney/seat-sensor/internal/detect"
	"github.com/sweeney/seat-sensor/internal/mqtt"
)

const defaultEnvFile = "/run/pi-helper.env"

// loadConfig parses args, loads the optional config file and applies flag
// overrides. Without a config file every flag default applies; with one,
// only flags given explicitly override it. The result is not validated.
func loadConfig(args []string) (*config.Config, bool, error) {
	fs := pflag.NewFlagSet("seat-sensor", pflag.ContinueOnError)
	configPath := fs.StringP("config", "c", "", "path to YAML config file")
	location := fs.String("location", "", "seat identifier, e.g. CB11.08.600")
	broker := fs.String("broker", "", "MQTT broker URL or host[:port]")
	topic := fs.String("topic", mqtt.DefaultTopic, "MQTT topic for commands and seat status")
	clientID := fs.String("client-id", "", "MQTT client ID (default seat-<location>)")
	ca := fs.String("ca", "", "root CA file; enables TLS")
	cert := fs.String("cert", "", "device certificate file")
	key := fs.String("key", "", "device private key file")
	interval := fs.Duration("interval", 5*time.Second, "tick period")
	report := fs.String("report", "every-tick", `report policy: "every-tick" or "on-change"`)
	pin := fs.Int("pin", detect.DefaultPin, "BCM pin number for the presence sensor")
	httpAddr := fs.String("http", ":80", "HTTP status address (empty to disable)")
	verbose := fs.BoolP("verbose", "v", false, "enable debug logging")
	envFile := fs.String("env-file", defaultEnvFile, "pi-helper network env file")
	printState := fs.Bool("print-state", false, "read the sensor once, print occupancy and exit")

	if err := fs.Parse(args); err != nil {
		return nil, false, err
	}
	if fs.NArg() > 0 {
		return nil, false, fmt.Errorf("unexpected argument: %s", fs.Arg(0))
	}

	cfg := &config.Config{}
	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			return nil, false, err
		}
		cfg = loaded
	}

	set := func(name string) bool {
		return *configPath == "" || fs.Changed(name)
	}
	if set("location") {
		cfg.Location = *location
	}
	if set("broker") {
		cfg.MQTT.Broker = *broker
	}
	if set("topic") {
		cfg.MQTT.Topic = *topic
	}
	if set("client-id") {
		cfg.MQTT.ClientID = *clientID
	}
	if set("ca") {
		cfg.MQTT.CAFile = *ca
	}
	if set("cert") {
		cfg.MQTT.CertFile = *cert
	}
	if set("key") {
		cfg.MQTT.KeyFile = *key
	}
	if set("interval") {
		cfg.Interval = *interval
	}
	if set("report") {
		cfg.Report = *report
	}
	if set("pin") {
		cfg.Sensor.Pin = pin
	}
	if set("http") {
		cfg.HTTP = *httpAddr
	}
	if set("verbose") {
		cfg.Verbose = *verbose
	}
	if set("env-file") || cfg.EnvFile == "" {
		cfg.EnvFile = *envFile
	}

	return cfg, *printState, nil
}
