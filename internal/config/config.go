// Package config loads the seat-sensor configuration file.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the complete seat-sensor configuration.
type Config struct {
	Location string        `yaml:"location"` // seat identifier, e.g. CB11.08.600
	Interval time.Duration `yaml:"interval"` // tick period
	Report   string        `yaml:"report"`   // every-tick or on-change
	HTTP     string        `yaml:"http"`     // status server address, empty disables
	Verbose  bool          `yaml:"verbose"`
	EnvFile  string        `yaml:"env_file"` // pi-helper network env file
	MQTT     MQTTConfig    `yaml:"mqtt"`
	Sensor   SensorConfig  `yaml:"sensor"`
}

// MQTTConfig contains broker settings.
type MQTTConfig struct {
	Broker      string `yaml:"broker"`
	ClientID    string `yaml:"client_id"`
	Topic       string `yaml:"topic"`
	SystemTopic string `yaml:"system_topic"`

	CAFile   string `yaml:"ca_file"`
	CertFile string `yaml:"cert_file"`
	KeyFile  string `yaml:"key_file"`

	QueueSize        int           `yaml:"queue_size"`
	DrainPerSecond   float64       `yaml:"drain_per_second"`
	OperationTimeout time.Duration `yaml:"operation_timeout"`
}

// SensorConfig selects the presence sensor line.
type SensorConfig struct {
	Chip      string `yaml:"chip"`
	Pin       *int   `yaml:"pin"` // nil selects detect.DefaultPin
	ActiveLow bool   `yaml:"active_low"`
}

// Load reads and parses a YAML configuration file. The result is not
// validated so that command-line overrides can be applied first.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return &cfg, nil
}
