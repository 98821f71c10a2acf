package liaison

import (
	"errors"
	"fmt"
)

// Caller-input errors. These are surfaced immediately to the web layer
// and never retried.
var (
	// ErrUnauthorized indicates the principal may not act on the robot.
	// Returned for unknown serials too, so callers cannot probe which
	// serials exist.
	ErrUnauthorized = errors.New("liaison: not authorized")

	// ErrRobotNotFound indicates no robot with that serial is registered.
	ErrRobotNotFound = errors.New("liaison: robot not found")

	// ErrRobotInactive indicates the robot is administratively disabled.
	ErrRobotInactive = errors.New("liaison: robot inactive")

	// ErrInvalidCommand indicates the command failed validation.
	ErrInvalidCommand = errors.New("liaison: invalid command")
)

// TransportErrorKind classifies infrastructure failures on the publish path.
type TransportErrorKind string

// Transport error kinds.
const (
	// TransportNotConnected: the broker session is down. The command was
	// handed to the local session store and may still go out after
	// reconnect, but delivery is not assured.
	TransportNotConnected TransportErrorKind = "not_connected"

	// TransportPublishRejected: the session accepted the connection but
	// refused or timed out on this publish.
	TransportPublishRejected TransportErrorKind = "publish_rejected"

	// TransportSerialization: the command payload could not be encoded.
	TransportSerialization TransportErrorKind = "serialization_error"
)

// TransportError is an infrastructure failure crossing the publisher
// boundary as a typed outcome. The caller may retry later; the liaison
// never retries automatically because the caller's HTTP request cannot
// be held open.
type TransportError struct {
	Kind TransportErrorKind
	Err  error
}

func (e *TransportError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("liaison: transport failure (%s): %v", e.Kind, e.Err)
	}
	return fmt.Sprintf("liaison: transport failure (%s)", e.Kind)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// AsTransportError unwraps err into a *TransportError if it is one.
func AsTransportError(err error) (*TransportError, bool) {
	var te *TransportError
	if errors.As(err, &te) {
		return te, true
	}
	return nil, false
}
