package liaison

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/jojo-robotics/liaison/internal/infrastructure/mqtt"
	"github.com/jojo-robotics/liaison/internal/robot"
)

// stateStore is the slice of the robot registry the ingest needs.
type stateStore interface {
	Snapshot(serial string) (robot.State, error)
	UpdateState(ctx context.Context, serial string, state robot.State) error
}

// subscriber is the slice of the MQTT client the ingest needs.
type subscriber interface {
	Subscribe(topic string, qos byte, handler mqtt.MessageHandler) error
}

// TelemetrySink receives battery and presence samples for history.
// Implementations must not block; the InfluxDB client batches internally.
type TelemetrySink interface {
	WriteBatteryLevel(serial string, level int)
	WritePresence(serial string, online bool)
}

// defaultQueueSize bounds the inbound status buffer. Messages past a
// full buffer are dropped and counted; the broker redelivers QoS 1
// traffic so a drop here is not a loss of the robot's latest state for
// long.
const defaultQueueSize = 256

type inboundStatus struct {
	topic   string
	payload []byte
}

// Ingest consumes the wildcard status subscription and updates robot
// state snapshots.
//
// The network callback only enqueues; all decoding and state writes
// happen on one consumer goroutine, preserving arrival order and the
// registry's single-writer discipline.
type Ingest struct {
	topics mqtt.Topics
	states stateStore
	qos    byte
	logger *slog.Logger

	telemetry TelemetrySink                          // optional
	onUpdate  func(serial string, state robot.State) // optional

	queue   chan inboundStatus
	dropped atomic.Uint64

	startOnce sync.Once
	done      chan struct{}
}

// IngestOption configures optional ingest collaborators.
type IngestOption func(*Ingest)

// WithTelemetry attaches a telemetry history sink.
func WithTelemetry(sink TelemetrySink) IngestOption {
	return func(in *Ingest) { in.telemetry = sink }
}

// WithStateUpdateHook registers a callback invoked after every applied
// state update. Used to fan out live updates to websocket clients. The
// callback runs on the consumer goroutine and must not block.
func WithStateUpdateHook(hook func(serial string, state robot.State)) IngestOption {
	return func(in *Ingest) { in.onUpdate = hook }
}

// WithQueueSize overrides the inbound buffer size.
func WithQueueSize(n int) IngestOption {
	return func(in *Ingest) {
		if n > 0 {
			in.queue = make(chan inboundStatus, n)
		}
	}
}

// NewIngest creates a status ingest reading at the given QoS level.
func NewIngest(topics mqtt.Topics, states stateStore, qos byte, logger *slog.Logger, opts ...IngestOption) *Ingest {
	in := &Ingest{
		topics: topics,
		states: states,
		qos:    qos,
		logger: logger,
		queue:  make(chan inboundStatus, defaultQueueSize),
		done:   make(chan struct{}),
	}
	for _, opt := range opts {
		opt(in)
	}
	return in
}

// Start launches the consumer goroutine and registers the wildcard
// status subscription. The consumer runs regardless of broker state and
// stops when ctx is cancelled; the subscription is established by the
// session as soon as a broker is reachable and survives reconnects, so
// a broker outage at startup never fails Start.
func (in *Ingest) Start(ctx context.Context, sub subscriber) error {
	in.startOnce.Do(func() {
		go in.run(ctx)
	})

	wildcard := in.topics.StatusWildcard()
	if err := sub.Subscribe(wildcard, in.qos, in.enqueue); err != nil {
		return fmt.Errorf("subscribing to %s: %w", wildcard, err)
	}

	in.logger.Info("status ingest started", "topic", wildcard)
	return nil
}

// Dropped reports how many status messages were discarded because the
// inbound buffer was full.
func (in *Ingest) Dropped() uint64 {
	return in.dropped.Load()
}

// Done is closed when the consumer goroutine has exited.
func (in *Ingest) Done() <-chan struct{} {
	return in.done
}

// enqueue runs on the transport's callback goroutine. It must never
// block or the broker client's receive loop stalls.
func (in *Ingest) enqueue(topic string, payload []byte) error {
	select {
	case in.queue <- inboundStatus{topic: topic, payload: payload}:
	default:
		in.dropped.Add(1)
		in.logger.Warn("status queue full, dropping message", "topic", topic)
	}
	return nil
}

func (in *Ingest) run(ctx context.Context) {
	defer close(in.done)
	for {
		select {
		case <-ctx.Done():
			return
		case msg := <-in.queue:
			in.process(ctx, msg)
		}
	}
}

// process decodes one status message and applies it. Every failure mode
// here is absorbed: logged and dropped, never propagated.
func (in *Ingest) process(ctx context.Context, msg inboundStatus) {
	serial, ok := in.topics.SerialFromStatus(msg.topic)
	if !ok {
		in.logger.Debug("ignoring non-status topic", "topic", msg.topic)
		return
	}

	status, err := DecodeStatus(msg.payload)
	if err != nil {
		in.logger.Warn("malformed status payload", "serial", serial, "error", err)
		return
	}

	current, err := in.states.Snapshot(serial)
	if err != nil {
		if errors.Is(err, robot.ErrNotFound) {
			// Deprovisioned robots may still transmit.
			in.logger.Info("status for unknown robot dropped", "serial", serial)
			return
		}
		in.logger.Error("reading robot state failed", "serial", serial, "error", err)
		return
	}

	next := applyStatus(current, status)
	if err := in.states.UpdateState(ctx, serial, next); err != nil {
		in.logger.Error("updating robot state failed", "serial", serial, "error", err)
		return
	}

	if in.telemetry != nil {
		if status.BatteryLevel != nil {
			in.telemetry.WriteBatteryLevel(serial, next.BatteryLevel)
		}
		if current.Online != next.Online {
			in.telemetry.WritePresence(serial, next.Online)
		}
	}

	if in.onUpdate != nil {
		in.onUpdate(serial, next)
	}
}

// applyStatus merges a decoded payload into the current snapshot.
// A message arriving at all marks the robot online unless it says
// otherwise; missing fields stay unchanged; last-seen is always now.
func applyStatus(current robot.State, status *StatusPayload) robot.State {
	next := current.Clone()

	next.Online = true
	if status.IsOnline != nil {
		next.Online = *status.IsOnline
	}
	if status.BatteryLevel != nil {
		next.BatteryLevel = *status.BatteryLevel
	}

	now := time.Now().UTC()
	next.LastSeen = &now

	return next
}
