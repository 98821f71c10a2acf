package robot

import (
	"fmt"
	"strings"
	"unicode"
)

// Validation limits.
const (
	maxSerialLength = 64
	maxNameLength   = 120
)

// reservedSerials are topic segments the liaison uses for its own traffic.
var reservedSerials = map[string]bool{
	"system": true,
}

// ValidateSerial checks that a serial is usable as a broker topic segment.
//
// A valid serial is non-empty, at most 64 characters, contains no topic
// separators or wildcards, no whitespace or control characters, and is not
// a reserved segment.
func ValidateSerial(serial string) error {
	if serial == "" {
		return fmt.Errorf("%w: empty", ErrInvalidSerial)
	}
	if len(serial) > maxSerialLength {
		return fmt.Errorf("%w: longer than %d characters", ErrInvalidSerial, maxSerialLength)
	}
	if strings.ContainsAny(serial, "/+#") {
		return fmt.Errorf("%w: contains topic separator or wildcard", ErrInvalidSerial)
	}
	for _, r := range serial {
		if unicode.IsSpace(r) || unicode.IsControl(r) {
			return fmt.Errorf("%w: contains whitespace or control character", ErrInvalidSerial)
		}
	}
	if reservedSerials[strings.ToLower(serial)] {
		return fmt.Errorf("%w: %q is reserved", ErrInvalidSerial, serial)
	}
	return nil
}

// Validate checks a robot record before it is persisted.
func (r *Robot) Validate() error {
	if err := ValidateSerial(r.Serial); err != nil {
		return err
	}
	if strings.TrimSpace(r.Name) == "" {
		return fmt.Errorf("%w: empty", ErrInvalidName)
	}
	if len(r.Name) > maxNameLength {
		return fmt.Errorf("%w: longer than %d characters", ErrInvalidName, maxNameLength)
	}
	return nil
}
