package liaison

import (
	"errors"
	"log/slog"

	"github.com/jojo-robotics/liaison/internal/infrastructure/mqtt"
)

// transport is the slice of the MQTT client the publisher needs.
type transport interface {
	Publish(topic string, payload []byte, qos byte, retained bool) error
}

// Outcome reports how a publish went. Accepted means the command was
// queued to the local broker session with the requested delivery level.
// It is NOT an end-to-end acknowledgment from the physical robot; that
// confirmation comes out of band via status polling.
type Outcome struct {
	Accepted bool
	Err      *TransportError // nil when Accepted
}

// Publisher serializes commands and hands them to the broker session.
//
// Preconditions (authorization, existence, active flag) are the command
// façade's job; the publisher trusts that resolution already succeeded.
type Publisher struct {
	transport transport
	topics    mqtt.Topics
	qos       byte
	logger    *slog.Logger
}

// NewPublisher creates a publisher sending at the given QoS level.
// QoS 1 (at-least-once) is the intended default: an occasional duplicate
// "stop" is harmless, a lost "stop" is not.
func NewPublisher(t transport, topics mqtt.Topics, qos byte, logger *slog.Logger) *Publisher {
	return &Publisher{
		transport: t,
		topics:    topics,
		qos:       qos,
		logger:    logger,
	}
}

// Publish encodes a command and publishes it to the robot's command topic.
//
// It never blocks on a broker round-trip. When the session is down the
// command is still handed to the session store (it may go out after
// reconnect) but the outcome reports not_connected so the caller can
// decide to retry.
func (p *Publisher) Publish(serial, action string, value any) Outcome {
	payload, err := EncodeCommand(action, value)
	if err != nil {
		p.logger.Error("command encoding failed", "serial", serial, "action", action, "error", err)
		return Outcome{Err: &TransportError{Kind: TransportSerialization, Err: err}}
	}

	topic := p.topics.Command(serial)
	if err := p.transport.Publish(topic, payload, p.qos, false); err != nil {
		kind := TransportPublishRejected
		if errors.Is(err, mqtt.ErrNotConnected) {
			kind = TransportNotConnected
		}
		p.logger.Warn("command publish failed",
			"serial", serial, "action", action, "kind", string(kind), "error", err)
		return Outcome{Err: &TransportError{Kind: kind, Err: err}}
	}

	return Outcome{Accepted: true}
}
