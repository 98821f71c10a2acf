// Package liaison is the device-command core: it turns an authenticated
// user action into an ordered, at-least-once command on a robot's
// broker topic, and folds the robots' asynchronous status stream back
// into queryable state snapshots.
//
// Three pieces cooperate:
//
//   - Publisher encodes commands and hands them to the broker session.
//     "Accepted" means queued locally with the requested QoS, never an
//     end-to-end acknowledgment from the robot.
//   - Ingest consumes the wildcard status subscription on a single
//     goroutine, so state writes per robot never race, and malformed or
//     foreign messages are logged and dropped.
//   - Service is the command façade the web layer calls. It is the only
//     place authorization and command validation happen, and it checks
//     authorization before revealing whether a robot exists.
//
// Nothing in this package blocks on a broker round-trip; interactive
// callers get a bounded-latency answer even while the broker is down.
package liaison
