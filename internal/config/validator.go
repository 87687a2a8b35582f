package config

import (
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/sweeney/seat-sensor/internal/detect"
	"github.com/sweeney/seat-sensor/internal/logic"
	"github.com/sweeney/seat-sensor/internal/mqtt"
)

const (
	defaultInterval = 5 * time.Second
	plainPort       = "1883"
	tlsPort         = "8883"
)

var clientIDUnsafe = regexp.MustCompile(`[^A-Za-z0-9\-]+`)

// Validate checks the configuration and fills in defaults.
func Validate(cfg *Config) error {
	if cfg.Location == "" {
		return errors.New("location is required")
	}
	if cfg.MQTT.Broker == "" {
		return errors.New("mqtt.broker is required")
	}

	if cfg.Interval == 0 {
		cfg.Interval = defaultInterval
	}
	if cfg.Interval < 0 {
		return fmt.Errorf("interval must be > 0, got %v", cfg.Interval)
	}

	switch logic.ReportPolicy(cfg.Report) {
	case "":
		cfg.Report = string(logic.ReportEveryTick)
	case logic.ReportEveryTick, logic.ReportOnChange:
	default:
		return fmt.Errorf("report must be %q or %q, got %q", logic.ReportEveryTick, logic.ReportOnChange, cfg.Report)
	}

	if (cfg.MQTT.CertFile == "") != (cfg.MQTT.KeyFile == "") {
		return errors.New("mqtt.cert_file and mqtt.key_file must be set together")
	}
	if cfg.MQTT.CertFile != "" && cfg.MQTT.CAFile == "" {
		return errors.New("mqtt.ca_file is required with a device certificate")
	}

	broker, err := brokerURL(cfg.MQTT.Broker, cfg.TLSEnabled())
	if err != nil {
		return err
	}
	cfg.MQTT.Broker = broker

	defaults := mqtt.DefaultOptions()
	if cfg.MQTT.ClientID == "" {
		cfg.MQTT.ClientID = "seat-" + strings.Trim(clientIDUnsafe.ReplaceAllString(cfg.Location, "-"), "-")
	}
	if cfg.MQTT.Topic == "" {
		cfg.MQTT.Topic = mqtt.DefaultTopic
	}
	if cfg.MQTT.SystemTopic == "" {
		cfg.MQTT.SystemTopic = cfg.MQTT.Topic + "/system"
	}
	if cfg.MQTT.SystemTopic == cfg.MQTT.Topic {
		return errors.New("mqtt.system_topic must differ from mqtt.topic")
	}
	if cfg.MQTT.QueueSize <= 0 {
		cfg.MQTT.QueueSize = defaults.QueueSize
	}
	if cfg.MQTT.DrainPerSecond <= 0 {
		cfg.MQTT.DrainPerSecond = defaults.DrainPerSecond
	}
	if cfg.MQTT.OperationTimeout <= 0 {
		cfg.MQTT.OperationTimeout = defaults.OperationTimeout
	}

	if p := cfg.Sensor.Pin; p != nil && *p < 0 {
		return fmt.Errorf("sensor.pin must be >= 0, got %d", *p)
	}
	line := cfg.SensorLine()
	cfg.Sensor.Chip = line.Chip
	cfg.Sensor.Pin = &line.Pin

	return nil
}

// SensorLine returns the presence line settings with defaults applied.
// It does not require the rest of the config to be valid.
func (c *Config) SensorLine() detect.LineConfig {
	line := detect.LineConfig{
		Chip:      c.Sensor.Chip,
		Pin:       detect.DefaultPin,
		ActiveLow: c.Sensor.ActiveLow,
	}
	if line.Chip == "" {
		line.Chip = detect.DefaultChip
	}
	if c.Sensor.Pin != nil {
		line.Pin = *c.Sensor.Pin
	}
	return line
}

// TLSEnabled reports whether a root CA was configured.
func (c *Config) TLSEnabled() bool {
	return c.MQTT.CAFile != ""
}

// brokerURL accepts a full URL or a bare host[:port] endpoint. Bare
// endpoints get ssl:// on 8883 when TLS is configured, tcp:// on 1883 otherwise.
func brokerURL(broker string, useTLS bool) (string, error) {
	if !strings.Contains(broker, "://") {
		scheme, port := "tcp", plainPort
		if useTLS {
			scheme, port = "ssl", tlsPort
		}
		if !strings.Contains(broker, ":") {
			broker += ":" + port
		}
		broker = scheme + "://" + broker
	}

	u, err := url.Parse(broker)
	if err != nil {
		return "", fmt.Errorf("mqtt.broker: %w", err)
	}
	if u.Hostname() == "" {
		return "", fmt.Errorf("mqtt.broker %q has no host", broker)
	}
	switch u.Scheme {
	case "tcp", "ssl", "tls", "mqtt", "mqtts", "ws", "wss":
	default:
		return "", fmt.Errorf("mqtt.broker: unsupported scheme %q", u.Scheme)
	}
	return u.String(), nil
}
