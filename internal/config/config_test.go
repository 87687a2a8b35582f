package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "seat-sensor.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
location: CB11.08.600
interval: 2s
report: on-change
http: ":8080"
verbose: true
env_file: /run/pi-helper.env
mqtt:
  broker: a1b2c3.iot.ap-southeast-2.amazonaws.com
  client_id: desk-600
  topic: studio/seating
  ca_file: /etc/seat-sensor/root-ca.pem
  cert_file: /etc/seat-sensor/cert.pem
  key_file: /etc/seat-sensor/private.key
  queue_size: 3
  drain_per_second: 4
  operation_timeout: 3s
sensor:
  chip: gpiochip1
  pin: 22
  active_low: true
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "CB11.08.600", cfg.Location)
	assert.Equal(t, 2*time.Second, cfg.Interval)
	assert.Equal(t, "on-change", cfg.Report)
	assert.Equal(t, ":8080", cfg.HTTP)
	assert.True(t, cfg.Verbose)
	assert.Equal(t, "/run/pi-helper.env", cfg.EnvFile)
	assert.Equal(t, "a1b2c3.iot.ap-southeast-2.amazonaws.com", cfg.MQTT.Broker)
	assert.Equal(t, "desk-600", cfg.MQTT.ClientID)
	assert.Equal(t, "/etc/seat-sensor/root-ca.pem", cfg.MQTT.CAFile)
	assert.Equal(t, 3, cfg.MQTT.QueueSize)
	assert.Equal(t, 4.0, cfg.MQTT.DrainPerSecond)
	assert.Equal(t, 3*time.Second, cfg.MQTT.OperationTimeout)
	assert.Equal(t, "gpiochip1", cfg.Sensor.Chip)
	require.NotNil(t, cfg.Sensor.Pin)
	assert.Equal(t, 22, *cfg.Sensor.Pin)
	assert.True(t, cfg.Sensor.ActiveLow)

	require.NoError(t, Validate(cfg))
	assert.Equal(t, "ssl://a1b2c3.iot.ap-southeast-2.amazonaws.com:8883", cfg.MQTT.Broker)
	assert.Equal(t, "studio/seating/system", cfg.MQTT.SystemTopic)
}

func TestLoadExampleConfig(t *testing.T) {
	cfg, err := Load(filepath.Join("..", "..", "seat-sensor.example.yaml"))
	require.NoError(t, err)
	require.NoError(t, Validate(cfg))

	assert.Equal(t, "CB11.08.600", cfg.Location)
	assert.True(t, cfg.TLSEnabled())
	assert.Equal(t, "ssl://a1b2c3d4e5f6g7.iot.ap-southeast-2.amazonaws.com:8883", cfg.MQTT.Broker)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoadInvalidYAML(t *testing.T) {
	_, err := Load(writeConfig(t, "location: [unterminated"))
	assert.Error(t, err)
}

func TestValidateDefaults(t *testing.T) {
	cfg := &Config{Location: "CB11.08.600", MQTT: MQTTConfig{Broker: "192.168.1.200"}}
	require.NoError(t, Validate(cfg))

	assert.Equal(t, 5*time.Second, cfg.Interval)
	assert.Equal(t, "every-tick", cfg.Report)
	assert.Equal(t, "tcp://192.168.1.200:1883", cfg.MQTT.Broker)
	assert.Equal(t, "seat-CB11-08-600", cfg.MQTT.ClientID)
	assert.Equal(t, "studio/seating", cfg.MQTT.Topic)
	assert.Equal(t, "studio/seating/system", cfg.MQTT.SystemTopic)
	assert.Equal(t, 1, cfg.MQTT.QueueSize)
	assert.Equal(t, 2.0, cfg.MQTT.DrainPerSecond)
	assert.Equal(t, 5*time.Second, cfg.MQTT.OperationTimeout)
	assert.Equal(t, "gpiochip0", cfg.Sensor.Chip)
	require.NotNil(t, cfg.Sensor.Pin)
	assert.Equal(t, 17, *cfg.Sensor.Pin)
	assert.False(t, cfg.TLSEnabled())
}

func TestValidateCustomTopic(t *testing.T) {
	cfg := &Config{Location: "x", MQTT: MQTTConfig{Broker: "tcp://b:1883", Topic: "lab/desks"}}
	require.NoError(t, Validate(cfg))
	assert.Equal(t, "lab/desks/system", cfg.MQTT.SystemTopic)
}

func TestValidateErrors(t *testing.T) {
	base := func() *Config {
		return &Config{Location: "CB11.08.600", MQTT: MQTTConfig{Broker: "tcp://broker:1883"}}
	}

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"missing location", func(c *Config) { c.Location = "" }},
		{"missing broker", func(c *Config) { c.MQTT.Broker = "" }},
		{"negative interval", func(c *Config) { c.Interval = -time.Second }},
		{"bad report policy", func(c *Config) { c.Report = "sometimes" }},
		{"cert without key", func(c *Config) { c.MQTT.CAFile = "ca"; c.MQTT.CertFile = "cert" }},
		{"cert without ca", func(c *Config) { c.MQTT.CertFile = "cert"; c.MQTT.KeyFile = "key" }},
		{"unsupported scheme", func(c *Config) { c.MQTT.Broker = "http://broker:80" }},
		{"no host", func(c *Config) { c.MQTT.Broker = "tcp://:1883" }},
		{"system topic clash", func(c *Config) { c.MQTT.Topic = "a"; c.MQTT.SystemTopic = "a" }},
		{"negative pin", func(c *Config) { c.Sensor.Pin = pinAt(-1) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base()
			tt.mutate(cfg)
			assert.Error(t, Validate(cfg))
		})
	}
}

func TestSensorLine(t *testing.T) {
	cfg := &Config{}
	line := cfg.SensorLine()
	assert.Equal(t, "gpiochip0", line.Chip)
	assert.Equal(t, 17, line.Pin)
	assert.False(t, line.ActiveLow)

	cfg.Sensor = SensorConfig{Chip: "gpiochip4", Pin: pinAt(27), ActiveLow: true}
	line = cfg.SensorLine()
	assert.Equal(t, "gpiochip4", line.Chip)
	assert.Equal(t, 27, line.Pin)
	assert.True(t, line.ActiveLow)
}

func TestPinZeroIsKept(t *testing.T) {
	cfg, err := Load(writeConfig(t, `
location: CB11.08.600
mqtt:
  broker: tcp://broker:1883
sensor:
  pin: 0
`))
	require.NoError(t, err)
	require.NotNil(t, cfg.Sensor.Pin)

	assert.Equal(t, 0, cfg.SensorLine().Pin)
	require.NoError(t, Validate(cfg))
	assert.Equal(t, 0, *cfg.Sensor.Pin)
}

func pinAt(n int) *int { return &n }

func TestBrokerURL(t *testing.T) {
	tests := []struct {
		in   string
		tls  bool
		want string
	}{
		{"broker", false, "tcp://broker:1883"},
		{"broker", true, "ssl://broker:8883"},
		{"broker:1884", false, "tcp://broker:1884"},
		{"broker:443", true, "ssl://broker:443"},
		{"tcp://192.168.1.200:1883", true, "tcp://192.168.1.200:1883"},
		{"wss://broker/mqtt", false, "wss://broker/mqtt"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := brokerURL(tt.in, tt.tls)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
