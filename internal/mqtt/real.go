package mqtt

import (
	"context"
	"crypto/tls"
	"fmt"
	"log/slog"
	"sync"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"golang.org/x/time/rate"

	"github.com/sweeney/seat-sensor/internal/logic"
)

// Options configures a RealClient.
type Options struct {
	Broker      string
	ClientID    string
	Topic       string
	SystemTopic string
	TLS         *tls.Config

	ConnectTimeout   time.Duration // connect and disconnect
	OperationTimeout time.Duration // publish and subscribe
	MinReconnect     time.Duration
	MaxReconnect     time.Duration

	QueueSize      int     // offline system-event queue capacity
	DrainPerSecond float64 // replay rate after reconnect
}

// DefaultOptions returns options matching the device's deployed broker settings.
func DefaultOptions() Options {
	return Options{
		Topic:            DefaultTopic,
		SystemTopic:      DefaultTopic + "/system",
		ConnectTimeout:   10 * time.Second,
		OperationTimeout: 5 * time.Second,
		MinReconnect:     1 * time.Second,
		MaxReconnect:     32 * time.Second,
		QueueSize:        1,
		DrainPerSecond:   2,
	}
}

// RealClient publishes to and subscribes on an actual MQTT broker.
type RealClient struct {
	client paho.Client
	opts   Options

	ctx    context.Context
	cancel context.CancelFunc

	mu      sync.Mutex
	queue   *offlineQueue
	subs    map[string]func([]byte)
	limiter *rate.Limiter
}

// NewRealClient creates a client for the given options. Call Connect before use.
func NewRealClient(opts Options) *RealClient {
	ctx, cancel := context.WithCancel(context.Background())
	c := &RealClient{
		opts:    opts,
		ctx:     ctx,
		cancel:  cancel,
		queue:   newOfflineQueue(opts.QueueSize),
		subs:    make(map[string]func([]byte)),
		limiter: rate.NewLimiter(rate.Limit(opts.DrainPerSecond), 1),
	}

	will, _ := FormatSystemPayload(SystemEvent{
		Timestamp: time.Now(),
		Event:     "SHUTDOWN",
		Reason:    "MQTT_DISCONNECT",
	})

	po := paho.NewClientOptions().
		AddBroker(opts.Broker).
		SetClientID(opts.ClientID).
		SetAutoReconnect(true).
		SetConnectRetry(true).
		SetConnectRetryInterval(opts.MinReconnect).
		SetMaxReconnectInterval(opts.MaxReconnect).
		SetConnectTimeout(opts.ConnectTimeout).
		SetWill(opts.SystemTopic, string(will), 1, true).
		SetOnConnectHandler(c.onConnect).
		SetConnectionLostHandler(func(_ paho.Client, err error) {
			slog.Warn("mqtt connection lost, will auto-reconnect",
				"error", err,
				"broker", opts.Broker,
				"max_retry_interval", opts.MaxReconnect)
		})
	if opts.TLS != nil {
		po.SetTLSConfig(opts.TLS)
	}

	c.client = paho.NewClient(po)
	return c
}

// Connect establishes the broker connection.
func (c *RealClient) Connect() error {
	slog.Info("connecting to mqtt broker", "broker", c.opts.Broker, "client_id", c.opts.ClientID)

	token := c.client.Connect()
	if !token.WaitTimeout(c.opts.ConnectTimeout) {
		return fmt.Errorf("connection timeout")
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("connect to broker: %w", err)
	}
	return nil
}

// onConnect runs on every (re)connect: it restores subscriptions and
// replays anything queued while offline.
func (c *RealClient) onConnect(pc paho.Client) {
	slog.Info("mqtt connection established", "broker", c.opts.Broker)

	c.mu.Lock()
	subs := make(map[string]func([]byte), len(c.subs))
	for topic, h := range c.subs {
		subs[topic] = h
	}
	c.mu.Unlock()

	for topic, h := range subs {
		if err := c.subscribe(topic, h); err != nil {
			slog.Error("resubscribe failed", "topic", topic, "error", err)
		}
	}

	c.drain()
}

func (c *RealClient) drain() {
	c.mu.Lock()
	dropped := c.queue.dropped
	msgs := c.queue.drain()
	c.mu.Unlock()

	if len(msgs) == 0 {
		return
	}
	slog.Info("replaying offline queue", "messages", len(msgs), "dropped", dropped)

	for _, m := range msgs {
		if err := c.limiter.Wait(c.ctx); err != nil {
			return
		}
		token := c.client.Publish(m.topic, m.qos, m.retained, m.payload)
		if !token.WaitTimeout(c.opts.OperationTimeout) {
			slog.Warn("queued publish timeout", "topic", m.topic)
			continue
		}
		if err := token.Error(); err != nil {
			slog.Warn("queued publish failed", "topic", m.topic, "error", err)
		}
	}
}

// Subscribe registers handler for topic at QoS 1. The subscription is
// restored automatically after a reconnect.
func (c *RealClient) Subscribe(topic string, handler func([]byte)) error {
	c.mu.Lock()
	c.subs[topic] = handler
	c.mu.Unlock()

	return c.subscribe(topic, handler)
}

func (c *RealClient) subscribe(topic string, handler func([]byte)) error {
	token := c.client.Subscribe(topic, 1, func(_ paho.Client, m paho.Message) {
		handler(m.Payload())
	})
	if !token.WaitTimeout(c.opts.OperationTimeout) {
		return fmt.Errorf("subscribe %s: timeout", topic)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("subscribe %s: %w", topic, err)
	}
	return nil
}

// Publish sends a seat status at QoS 1. While offline nothing is queued:
// ErrOffline is returned so the caller keeps its pending flags and the next
// tick retries with a fresh reading.
func (c *RealClient) Publish(status logic.SeatStatus) error {
	payload, err := FormatSeatPayload(status)
	if err != nil {
		return fmt.Errorf("format seat payload: %w", err)
	}
	if !c.client.IsConnectionOpen() {
		return ErrOffline
	}
	return c.send(queuedMsg{topic: c.opts.Topic, payload: payload, qos: 1})
}

// PublishSystem sends a system lifecycle event at QoS 1. While offline the
// event is queued for replay on reconnect and ErrOffline is returned.
func (c *RealClient) PublishSystem(event SystemEvent) error {
	payload, err := FormatSystemPayload(event)
	if err != nil {
		return fmt.Errorf("format system payload: %w", err)
	}

	m := queuedMsg{topic: c.opts.SystemTopic, payload: payload, qos: 1, retained: event.Retained}
	if !c.client.IsConnectionOpen() {
		c.mu.Lock()
		c.queue.push(m)
		c.mu.Unlock()
		return ErrOffline
	}
	return c.send(m)
}

func (c *RealClient) send(m queuedMsg) error {
	token := c.client.Publish(m.topic, m.qos, m.retained, m.payload)
	if !token.WaitTimeout(c.opts.OperationTimeout) {
		return ErrPublishTimeout
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("publish %s: %w", m.topic, err)
	}
	return nil
}

// IsConnected reports whether the broker connection is currently open.
func (c *RealClient) IsConnected() bool {
	return c.client.IsConnectionOpen()
}

// Close stops queue replay and disconnects from the broker.
func (c *RealClient) Close() error {
	c.cancel()
	c.client.Disconnect(uint(c.opts.ConnectTimeout.Milliseconds()))
	return nil
}
