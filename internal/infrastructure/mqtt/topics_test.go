package mqtt

import "testing"

func TestTopics_Command(t *testing.T) {
	topics := NewTopics("jojo")

	if got := topics.Command("R1"); got != "jojo/R1/command" {
		t.Errorf("Command(R1) = %q, want %q", got, "jojo/R1/command")
	}
}

func TestTopics_Status(t *testing.T) {
	topics := NewTopics("jojo")

	if got := topics.Status("R1"); got != "jojo/R1/status" {
		t.Errorf("Status(R1) = %q, want %q", got, "jojo/R1/status")
	}
}

func TestTopics_StatusWildcard(t *testing.T) {
	topics := NewTopics("jojo")

	if got := topics.StatusWildcard(); got != "jojo/+/status" {
		t.Errorf("StatusWildcard() = %q, want %q", got, "jojo/+/status")
	}
}

func TestTopics_DefaultNamespace(t *testing.T) {
	topics := NewTopics("")

	if got := topics.Namespace(); got != DefaultNamespace {
		t.Errorf("Namespace() = %q, want %q", got, DefaultNamespace)
	}
	if got := topics.Command("R1"); got != "jojo/R1/command" {
		t.Errorf("Command(R1) = %q, want %q", got, "jojo/R1/command")
	}
}

func TestTopics_PresenceNotMatchedByWildcard(t *testing.T) {
	topics := NewTopics("jojo")

	// The presence topic must never parse as a robot status topic.
	presence := topics.Presence("jojo-liaison-01")
	if _, ok := topics.SerialFromStatus(presence); ok {
		t.Errorf("SerialFromStatus(%q) matched, want no match", presence)
	}
}

// TestTopics_StatusRoundTrip verifies the round-trip law: for every valid
// serial, parsing the built status topic recovers the serial.
func TestTopics_StatusRoundTrip(t *testing.T) {
	topics := NewTopics("jojo")

	serials := []string{"R1", "robot-42", "a", "JOJO_0001", "x.y"}
	for _, serial := range serials {
		got, ok := topics.SerialFromStatus(topics.Status(serial))
		if !ok {
			t.Errorf("SerialFromStatus(Status(%q)) did not match", serial)
			continue
		}
		if got != serial {
			t.Errorf("SerialFromStatus(Status(%q)) = %q, want %q", serial, got, serial)
		}
	}
}

func TestTopics_SerialFromStatus_Rejects(t *testing.T) {
	topics := NewTopics("jojo")

	tests := []struct {
		name  string
		topic string
	}{
		{name: "empty", topic: ""},
		{name: "bare word", topic: "status"},
		{name: "wrong namespace", topic: "acme/R1/status"},
		{name: "command topic", topic: "jojo/R1/command"},
		{name: "too few segments", topic: "jojo/status"},
		{name: "too many segments", topic: "jojo/R1/status/extra"},
		{name: "empty serial", topic: "jojo//status"},
		{name: "reserved system segment", topic: "jojo/system/status"},
		{name: "wildcard serial", topic: "jojo/+/status"},
		{name: "hash serial", topic: "jojo/#/status"},
		{name: "trailing slash", topic: "jojo/R1/status/"},
		{name: "unrelated garbage", topic: "not a topic at all"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if serial, ok := topics.SerialFromStatus(tt.topic); ok {
				t.Errorf("SerialFromStatus(%q) = (%q, true), want no match", tt.topic, serial)
			}
		})
	}
}

func TestTopics_UniquePerSerial(t *testing.T) {
	topics := NewTopics("jojo")

	seen := make(map[string]string)
	for _, serial := range []string{"R1", "R2", "R10", "r1"} {
		for _, topic := range []string{topics.Command(serial), topics.Status(serial)} {
			if prev, dup := seen[topic]; dup {
				t.Errorf("topic %q generated for both %q and %q", topic, prev, serial)
			}
			seen[topic] = serial
		}
	}
}
