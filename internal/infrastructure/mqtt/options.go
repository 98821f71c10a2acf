package mqtt

import (
	"crypto/tls"
	"fmt"
	"time"

	pahomqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/jojo-robotics/liaison/internal/infrastructure/config"
)

// Connection constants.
const (
	// defaultConnectTimeout bounds a single connection attempt. Failed
	// attempts are retried by the paho retry machinery, not surfaced.
	defaultConnectTimeout = 10 * time.Second

	// defaultTokenTimeout is the maximum time to wait for publish or
	// subscribe acknowledgment from the local session.
	defaultTokenTimeout = 5 * time.Second

	// defaultDisconnectQuiesce is the time allowed for pending operations
	// to flush on disconnect (milliseconds, as paho expects).
	defaultDisconnectQuiesce = 1000

	// defaultKeepAlive is used when the config leaves keepalive unset.
	defaultKeepAlive = 60 * time.Second

	// maxQoS is the maximum QoS level supported.
	maxQoS = 2

	// tlsMinVersion is the minimum TLS version for secure connections.
	tlsMinVersion = tls.VersionTLS12
)

// buildClientOptions creates paho MQTT options from liaison config.
//
// This configures:
//   - Broker URL (tcp:// or ssl:// based on TLS setting)
//   - Client ID (must be unique per running instance)
//   - Authentication credentials (if provided)
//   - Auto-reconnect with exponential backoff between the configured
//     initial and maximum delay, retrying indefinitely
//   - In-order message delivery (required by the status ingest)
//   - TLS configuration (if enabled)
func buildClientOptions(cfg config.MQTTConfig) *pahomqtt.ClientOptions {
	opts := pahomqtt.NewClientOptions()

	// Broker URL
	scheme := "tcp"
	if cfg.Broker.TLS {
		scheme = "ssl"
	}
	brokerURL := fmt.Sprintf("%s://%s:%d", scheme, cfg.Broker.Host, cfg.Broker.Port)
	opts.AddBroker(brokerURL)

	// Client identification
	opts.SetClientID(cfg.Broker.ClientID)

	// Authentication (if credentials provided)
	if cfg.Auth.Username != "" {
		opts.SetUsername(cfg.Auth.Username)
		opts.SetPassword(cfg.Auth.Password)
	}

	// Clean session - subscriptions are re-established explicitly on
	// reconnect, so no broker-side session state is needed.
	opts.SetCleanSession(true)

	// Auto-reconnect with exponential backoff. Retries never give up:
	// the broker may be down for maintenance and must be rejoined.
	opts.SetAutoReconnect(true)
	opts.SetConnectRetry(true)
	opts.SetConnectRetryInterval(time.Duration(cfg.Reconnect.InitialDelay) * time.Second)
	opts.SetMaxReconnectInterval(time.Duration(cfg.Reconnect.MaxDelay) * time.Second)

	// Connection timeout for a single attempt
	opts.SetConnectTimeout(defaultConnectTimeout)

	// Keepalive - detects dead connections between liaison and broker
	keepAlive := defaultKeepAlive
	if cfg.KeepAlive > 0 {
		keepAlive = time.Duration(cfg.KeepAlive) * time.Second
	}
	opts.SetKeepAlive(keepAlive)

	// Status messages must be handled in arrival order (single-writer
	// discipline on the state snapshots).
	opts.SetOrderMatters(true)

	// TLS configuration if enabled
	if cfg.Broker.TLS {
		opts.SetTLSConfig(&tls.Config{
			MinVersion: tlsMinVersion,
		})
	}

	return opts
}

// configureLWT sets up Last Will and Testament for offline detection.
//
// The LWT message is published by the broker if the liaison disconnects
// unexpectedly (crash, network failure). Robots and monitoring can detect
// when the liaison goes offline.
//
// QoS 1, retained: new subscribers see the last presence state.
func configureLWT(opts *pahomqtt.ClientOptions, topics Topics, clientID string) {
	willTopic := topics.Presence(clientID)
	willPayload := fmt.Sprintf(
		`{"status":"offline","client_id":"%s","reason":"unexpected_disconnect","timestamp":"%s"}`,
		clientID,
		time.Now().UTC().Format(time.RFC3339),
	)

	opts.SetWill(willTopic, willPayload, 1, true)
}

// buildOnlinePayload creates the JSON payload for online presence messages.
func buildOnlinePayload(clientID string) string {
	return fmt.Sprintf(
		`{"status":"online","client_id":"%s","timestamp":"%s"}`,
		clientID,
		time.Now().UTC().Format(time.RFC3339),
	)
}

// buildOfflinePayload creates the JSON payload for graceful offline presence.
func buildOfflinePayload(clientID string) string {
	return fmt.Sprintf(
		`{"status":"offline","client_id":"%s","reason":"graceful_shutdown","timestamp":"%s"}`,
		clientID,
		time.Now().UTC().Format(time.RFC3339),
	)
}
