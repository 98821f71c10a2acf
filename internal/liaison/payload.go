package liaison

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// CommandPayload is the wire format published to a robot's command topic.
//
// The nonce and timestamp exist so a robot or downstream ingest can
// de-duplicate at-least-once redeliveries; the liaison itself does not
// de-duplicate.
type CommandPayload struct {
	Action    string    `json:"action"`
	Value     any       `json:"value,omitempty"`
	Nonce     string    `json:"nonce"`
	Timestamp time.Time `json:"timestamp"`
}

// EncodeCommand serializes a command into its wire payload.
// The issuance timestamp and a fresh nonce are assigned here.
func EncodeCommand(action string, value any) ([]byte, error) {
	payload := CommandPayload{
		Action:    action,
		Value:     value,
		Nonce:     uuid.NewString(),
		Timestamp: time.Now().UTC(),
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encoding command: %w", err)
	}
	return data, nil
}

// StatusPayload is the wire format robots publish on their status topic.
//
// All fields are optional; missing fields mean "unchanged" and unknown
// fields are ignored.
type StatusPayload struct {
	BatteryLevel *int  `json:"battery_level,omitempty"`
	IsOnline     *bool `json:"is_online,omitempty"`
}

// DecodeStatus parses a status payload. It fails for anything that is
// not a JSON object; failures are absorbed by the ingest, never raised
// into the network callback.
func DecodeStatus(data []byte) (*StatusPayload, error) {
	var probe any
	if err := json.Unmarshal(data, &probe); err != nil {
		return nil, fmt.Errorf("decoding status: %w", err)
	}
	if _, ok := probe.(map[string]any); !ok {
		return nil, fmt.Errorf("decoding status: payload is not an object")
	}

	var status StatusPayload
	if err := json.Unmarshal(data, &status); err != nil {
		return nil, fmt.Errorf("decoding status: %w", err)
	}
	return &status, nil
}
