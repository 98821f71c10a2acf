package mqtt

import (
	"fmt"
)

// Subscribe registers a handler for messages on the specified topic.
//
// Topics can include MQTT wildcards:
//   - + (single-level): "jojo/+/status" matches every robot's status topic
//   - # (multi-level): "jojo/#" matches all namespace topics
//
// Subscriptions are tracked internally and automatically restored whenever
// the connection is re-established, since clean sessions do not persist
// them on the broker.
//
// The handler runs on the paho network goroutine; it must hand messages off
// quickly and never block (see MessageHandler).
//
// Subscribe never fails for lack of a connection: while the session is
// down the subscription is recorded and established by the connect
// handler as soon as the broker is reached, the same path that restores
// subscriptions after a reconnect.
func (c *Client) Subscribe(topic string, qos byte, handler MessageHandler) error {
	if topic == "" {
		return ErrInvalidTopic
	}
	if qos > maxQoS {
		return ErrInvalidQoS
	}
	if handler == nil {
		return fmt.Errorf("%w: handler cannot be nil", ErrSubscribeFailed)
	}

	// Track subscription for connection-time establishment and
	// reconnection restoration
	c.subMu.Lock()
	c.subscriptions[topic] = subscription{
		topic:   topic,
		qos:     qos,
		handler: handler,
	}
	c.subMu.Unlock()

	if !c.IsConnected() {
		// Deferred: handleConnect restores tracked subscriptions.
		return nil
	}

	// Subscribe with wrapped handler (includes panic recovery)
	token := c.client.Subscribe(topic, qos, c.wrapHandler(handler))
	if !token.WaitTimeout(defaultTokenTimeout) {
		c.dropSubscription(topic)
		return fmt.Errorf("%w: timeout after %v", ErrSubscribeFailed, defaultTokenTimeout)
	}
	if err := token.Error(); err != nil {
		c.dropSubscription(topic)
		return fmt.Errorf("%w: %w", ErrSubscribeFailed, err)
	}

	return nil
}

// Unsubscribe removes a subscription and stops receiving messages for a topic.
//
// Any messages in flight may still be delivered to the handler.
func (c *Client) Unsubscribe(topic string) error {
	if topic == "" {
		return ErrInvalidTopic
	}

	c.dropSubscription(topic)

	if !c.IsConnected() {
		// Nothing established at the broker; dropping the tracking
		// entry is enough to keep it from being restored.
		return nil
	}

	token := c.client.Unsubscribe(topic)
	if !token.WaitTimeout(defaultTokenTimeout) {
		return fmt.Errorf("%w: timeout after %v", ErrUnsubscribeFailed, defaultTokenTimeout)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("%w: %w", ErrUnsubscribeFailed, err)
	}

	return nil
}

// dropSubscription removes a topic from the re-subscription tracking table.
func (c *Client) dropSubscription(topic string) {
	c.subMu.Lock()
	delete(c.subscriptions, topic)
	c.subMu.Unlock()
}

// SubscriptionCount returns the number of active subscriptions.
func (c *Client) SubscriptionCount() int {
	c.subMu.RLock()
	defer c.subMu.RUnlock()
	return len(c.subscriptions)
}

// HasSubscription checks if a subscription exists for the given topic.
//
// Note: This checks only the exact topic string, not pattern matching.
func (c *Client) HasSubscription(topic string) bool {
	c.subMu.RLock()
	defer c.subMu.RUnlock()
	_, exists := c.subscriptions[topic]
	return exists
}
