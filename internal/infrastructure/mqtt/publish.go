package mqtt

import (
	"fmt"
)

// Maximum payload size for MQTT messages (1MB).
// This prevents resource exhaustion and aligns with typical broker limits.
const maxPayloadSize = 1 << 20

// Publish sends a message to the specified MQTT topic.
//
// "Success" means the message was accepted by the local session with the
// requested QoS - it is not an end-to-end acknowledgment from a device.
//
// If the session is currently disconnected the message is still handed to
// paho (which queues it for delivery once the connection returns) but
// ErrNotConnected is returned immediately, without blocking on reconnection.
// Callers decide whether to retry later; this bounds latency for
// interactive callers.
//
// QoS Levels:
//   - 0: At most once (fire and forget)
//   - 1: At least once (guaranteed delivery, may duplicate)
//   - 2: Exactly once (guaranteed, no duplicates, higher overhead)
//
// Retained Messages:
//   - Use for presence/state topics where new subscribers need the last value
//   - Don't use for commands
func (c *Client) Publish(topic string, payload []byte, qos byte, retained bool) error {
	if topic == "" {
		return ErrInvalidTopic
	}
	if qos > maxQoS {
		return ErrInvalidQoS
	}
	if len(payload) > maxPayloadSize {
		return fmt.Errorf("%w: payload size %d exceeds maximum %d bytes", ErrPublishFailed, len(payload), maxPayloadSize)
	}

	if !c.IsConnected() {
		// Hand the message to the session store anyway; it is delivered
		// on reconnect for QoS >= 1. The caller sees the failure now.
		c.client.Publish(topic, qos, retained, payload)
		return ErrNotConnected
	}

	token := c.client.Publish(topic, qos, retained, payload)
	if !token.WaitTimeout(defaultTokenTimeout) {
		return fmt.Errorf("%w: timeout after %v", ErrPublishFailed, defaultTokenTimeout)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("%w: %w", ErrPublishFailed, err)
	}

	return nil
}

// PublishString is a convenience method that publishes a string payload.
func (c *Client) PublishString(topic string, payload string, qos byte, retained bool) error {
	return c.Publish(topic, []byte(payload), qos, retained)
}
