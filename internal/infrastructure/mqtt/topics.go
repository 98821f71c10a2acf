package mqtt

import "strings"

// DefaultNamespace is the topic namespace used when none is configured.
// It matches the namespace the robot firmware ships with.
const DefaultNamespace = "jojo"

// systemSegment is reserved for liaison presence topics; no robot may use it
// as a serial number.
const systemSegment = "system"

// Topics builds and parses the broker topic names for one namespace.
//
// The convention is:
//
//	<namespace>/<serial>/command   - outbound commands to one robot
//	<namespace>/<serial>/status    - inbound status from one robot
//	<namespace>/system/liaison/<clientID> - liaison presence (LWT)
//
// Topic names are a pure function of the robot serial; because serials are
// unique, no two robots ever share a topic.
type Topics struct {
	namespace string
}

// NewTopics creates a topic builder for the given namespace.
// An empty namespace falls back to DefaultNamespace.
func NewTopics(namespace string) Topics {
	if namespace == "" {
		namespace = DefaultNamespace
	}
	return Topics{namespace: namespace}
}

// Namespace returns the configured namespace segment.
func (t Topics) Namespace() string {
	return t.namespace
}

// Command returns the command topic for a robot.
//
// Example: jojo/R1/command
func (t Topics) Command(serial string) string {
	return t.namespace + "/" + serial + "/command"
}

// Status returns the status topic for a robot.
//
// Example: jojo/R1/status
func (t Topics) Status(serial string) string {
	return t.namespace + "/" + serial + "/status"
}

// StatusWildcard returns the subscription pattern matching every robot's
// status topic on this namespace.
//
// Pattern: jojo/+/status
func (t Topics) StatusWildcard() string {
	return t.namespace + "/+/status"
}

// Presence returns the liaison presence topic for a client instance.
// It deliberately has four segments so the status wildcard never matches it.
//
// Example: jojo/system/liaison/jojo-liaison-01
func (t Topics) Presence(clientID string) string {
	return t.namespace + "/" + systemSegment + "/liaison/" + clientID
}

// SerialFromStatus extracts the robot serial from a status topic.
//
// It is the inverse of Status: for every valid serial x,
// SerialFromStatus(Status(x)) returns (x, true). Any topic not matching the
// <namespace>/<serial>/status shape returns ("", false) - malformed or
// foreign topics on the wildcard subscription are ignored, never an error.
func (t Topics) SerialFromStatus(topic string) (string, bool) {
	parts := strings.Split(topic, "/")
	if len(parts) != 3 {
		return "", false
	}
	if parts[0] != t.namespace || parts[2] != "status" {
		return "", false
	}

	serial := parts[1]
	if serial == "" || serial == systemSegment {
		return "", false
	}
	// A concrete topic never contains wildcard characters.
	if strings.ContainsAny(serial, "+#") {
		return "", false
	}

	return serial, true
}
