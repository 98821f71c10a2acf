package robot

import "errors"

// Domain errors for the robot package.
//
// These errors can be checked using errors.Is() for error handling:
//
//	if errors.Is(err, robot.ErrNotFound) {
//	    // handle not found case
//	}
var (
	// ErrNotFound is returned when a robot serial does not exist.
	ErrNotFound = errors.New("robot: not found")

	// ErrExists is returned when creating a robot with a serial that already exists.
	ErrExists = errors.New("robot: already exists")

	// ErrInvalidSerial is returned when a serial is empty, reserved, or not
	// topic-safe.
	ErrInvalidSerial = errors.New("robot: invalid serial")

	// ErrInvalidName is returned when a robot name is empty or too long.
	ErrInvalidName = errors.New("robot: invalid name")
)
