package mqtt

import (
	"context"
	"sync"

	pahomqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/jojo-robotics/liaison/internal/infrastructure/config"
)

// Client wraps paho.mqtt.golang as the liaison's single broker session.
//
// It provides connection management, message publishing, subscription
// handling, and automatic reconnection with exponential backoff.
//
// Thread Safety:
//   - All methods are safe for concurrent use from multiple goroutines.
//   - Subscriptions are automatically restored on reconnection.
type Client struct {
	client  pahomqtt.Client
	options *pahomqtt.ClientOptions
	cfg     config.MQTTConfig
	topics  Topics

	// subscriptions tracks active subscriptions for re-subscription on reconnect.
	subscriptions map[string]subscription
	subMu         sync.RWMutex

	// connected tracks current connection state.
	connected bool
	connMu    sync.RWMutex

	// connSignal is closed once the first connection is established.
	connSignal chan struct{}
	signalOnce sync.Once

	// Callbacks for connection events (optional, set via SetOnConnect/SetOnDisconnect).
	onConnect    func()
	onDisconnect func(err error)
	callbackMu   sync.RWMutex

	// logger for error/panic logging (optional, set via SetLogger).
	logger   Logger
	loggerMu sync.RWMutex
}

// Logger interface for optional logging support.
// Compatible with logging.Logger and slog.Logger.
type Logger interface {
	Error(msg string, args ...any)
	Warn(msg string, args ...any)
}

// subscription holds subscription details for re-subscription on reconnect.
type subscription struct {
	topic   string
	qos     byte
	handler MessageHandler
}

// MessageHandler is the callback signature for received messages.
//
// Handlers are invoked on the paho network goroutine and must not block
// or perform synchronous I/O - hand the message off to a channel instead.
//
// Parameters:
//   - topic: The topic the message was received on (wildcards expanded)
//   - payload: The raw message payload (typically JSON)
//
// Returns:
//   - error: Logged but does not affect message acknowledgment
type MessageHandler func(topic string, payload []byte) error

// Connect starts the broker session and returns immediately.
//
// The connection proceeds in the background: paho retries with exponential
// backoff between the configured initial and maximum delay, indefinitely,
// both for the initial attempt and after any unexpected disconnect. Use
// IsConnected() as a non-blocking probe or WaitForConnection() to block
// until the session is up.
//
// Connection errors are reported to the OnDisconnect callback and drive the
// retry loop; they are never returned to publish callers.
func Connect(cfg config.MQTTConfig) (*Client, error) {
	topics := NewTopics(cfg.Namespace)
	opts := buildClientOptions(cfg)
	configureLWT(opts, topics, cfg.Broker.ClientID)

	c := &Client{
		cfg:           cfg,
		options:       opts,
		topics:        topics,
		subscriptions: make(map[string]subscription),
		connSignal:    make(chan struct{}),
	}

	opts.SetOnConnectHandler(func(_ pahomqtt.Client) {
		c.handleConnect()
	})

	opts.SetConnectionLostHandler(func(_ pahomqtt.Client, err error) {
		c.handleDisconnect(err)
	})

	c.client = pahomqtt.NewClient(opts)

	// Fire the connection attempt without waiting for the token: with
	// connect-retry enabled the token resolves only when a broker is
	// eventually reached, which may be far in the future.
	c.client.Connect()

	return c, nil
}

// Topics returns the topic builder for this client's namespace.
func (c *Client) Topics() Topics {
	return c.topics
}

// handleConnect is called when the connection is established (initial and
// every reconnect).
func (c *Client) handleConnect() {
	c.connMu.Lock()
	c.connected = true
	c.connMu.Unlock()

	c.signalOnce.Do(func() { close(c.connSignal) })

	// Subscriptions are not durable across a clean session; restore them
	// on every connect.
	c.restoreSubscriptions()

	// Publish online presence
	c.publishPresence(buildOnlinePayload(c.cfg.Broker.ClientID))

	c.callbackMu.RLock()
	callback := c.onConnect
	c.callbackMu.RUnlock()
	if callback != nil {
		callback()
	}
}

// handleDisconnect is called when the connection is lost.
func (c *Client) handleDisconnect(err error) {
	c.connMu.Lock()
	c.connected = false
	c.connMu.Unlock()

	c.callbackMu.RLock()
	callback := c.onDisconnect
	c.callbackMu.RUnlock()
	if callback != nil {
		callback(err)
	}
}

// restoreSubscriptions establishes every tracked subscription on the live
// session. Runs on every connect, so it covers both subscriptions deferred
// while the session was down and subscriptions lost to a clean-session
// reconnect.
func (c *Client) restoreSubscriptions() {
	c.subMu.RLock()
	defer c.subMu.RUnlock()

	for _, sub := range c.subscriptions {
		// Errors here are resolved by the next reconnect
		c.client.Subscribe(sub.topic, sub.qos, c.wrapHandler(sub.handler))
	}
}

// publishPresence publishes a retained presence message for this instance.
func (c *Client) publishPresence(payload string) {
	topic := c.topics.Presence(c.cfg.Broker.ClientID)
	c.client.Publish(topic, 1, true, payload)
}

// Close gracefully disconnects from the MQTT broker.
//
// It publishes a graceful offline presence (distinct from the LWT crash
// status), waits briefly for pending publishes to flush, and disconnects.
// Close is safe to call on every exit path, including after a failed
// connection.
func (c *Client) Close() error {
	if c.client == nil {
		return nil
	}

	if c.IsConnected() {
		topic := c.topics.Presence(c.cfg.Broker.ClientID)
		token := c.client.Publish(topic, 1, true, buildOfflinePayload(c.cfg.Broker.ClientID))
		token.WaitTimeout(defaultTokenTimeout)
	}

	// Disconnect with quiesce period for pending operations
	c.client.Disconnect(defaultDisconnectQuiesce)

	c.connMu.Lock()
	c.connected = false
	c.connMu.Unlock()

	return nil
}

// IsConnected returns the current connection state without blocking.
func (c *Client) IsConnected() bool {
	c.connMu.RLock()
	defer c.connMu.RUnlock()
	return c.connected && c.client.IsConnectionOpen()
}

// WaitForConnection blocks until the first connection is established or the
// context is cancelled. It reports whether the session came up in time.
func (c *Client) WaitForConnection(ctx context.Context) bool {
	select {
	case <-c.connSignal:
		return true
	case <-ctx.Done():
		return false
	}
}

// HealthCheck verifies the MQTT connection is alive.
func (c *Client) HealthCheck(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	if !c.IsConnected() {
		return ErrNotConnected
	}
	return nil
}

// SetOnConnect sets a callback to be invoked when connection is established.
// This is called on initial connect and on every reconnect.
func (c *Client) SetOnConnect(callback func()) {
	c.callbackMu.Lock()
	c.onConnect = callback
	c.callbackMu.Unlock()
}

// SetOnDisconnect sets a callback to be invoked when connection is lost.
// The error parameter describes why the connection was lost.
func (c *Client) SetOnDisconnect(callback func(err error)) {
	c.callbackMu.Lock()
	c.onDisconnect = callback
	c.callbackMu.Unlock()
}

// SetLogger sets a logger for error and panic logging.
// If not set, errors in handlers are silently ignored.
func (c *Client) SetLogger(logger Logger) {
	c.loggerMu.Lock()
	c.logger = logger
	c.loggerMu.Unlock()
}

// getLogger returns the current logger (may be nil).
func (c *Client) getLogger() Logger {
	c.loggerMu.RLock()
	defer c.loggerMu.RUnlock()
	return c.logger
}

// wrapHandler wraps a MessageHandler with panic recovery and optional logging.
// A panic or error in a handler must never propagate into the paho network
// loop.
func (c *Client) wrapHandler(handler MessageHandler) pahomqtt.MessageHandler {
	return func(_ pahomqtt.Client, msg pahomqtt.Message) {
		defer func() {
			if r := recover(); r != nil {
				if logger := c.getLogger(); logger != nil {
					logger.Error("MQTT handler panic recovered",
						"topic", msg.Topic(),
						"panic", r,
					)
				}
			}
		}()

		if err := handler(msg.Topic(), msg.Payload()); err != nil {
			if logger := c.getLogger(); logger != nil {
				logger.Warn("MQTT handler returned error",
					"topic", msg.Topic(),
					"error", err,
				)
			}
		}
	}
}
