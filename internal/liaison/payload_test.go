package liaison

import (
	"encoding/json"
	"testing"
	"time"
)

func TestEncodeCommand(t *testing.T) {
	data, err := EncodeCommand("forward", 3)
	if err != nil {
		t.Fatalf("EncodeCommand() = %v", err)
	}

	var decoded map[string]any
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("payload is not valid JSON: %v", err)
	}

	if decoded["action"] != "forward" {
		t.Errorf("action = %v, want forward", decoded["action"])
	}
	if decoded["value"] != float64(3) {
		t.Errorf("value = %v, want 3", decoded["value"])
	}

	nonce, _ := decoded["nonce"].(string)
	if nonce == "" {
		t.Error("payload should carry a nonce")
	}

	ts, _ := decoded["timestamp"].(string)
	issued, err := time.Parse(time.RFC3339Nano, ts)
	if err != nil {
		t.Fatalf("timestamp %q is not RFC3339: %v", ts, err)
	}
	if time.Since(issued) > time.Minute {
		t.Errorf("timestamp %v is not recent", issued)
	}
}

func TestEncodeCommandNilValueOmitted(t *testing.T) {
	data, err := EncodeCommand("stop", nil)
	if err != nil {
		t.Fatalf("EncodeCommand() = %v", err)
	}

	var decoded map[string]any
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("payload is not valid JSON: %v", err)
	}
	if _, present := decoded["value"]; present {
		t.Error("nil value should be omitted from the payload")
	}
}

func TestEncodeCommandUniqueNonces(t *testing.T) {
	first, err := EncodeCommand("stop", nil)
	if err != nil {
		t.Fatalf("EncodeCommand() = %v", err)
	}
	second, err := EncodeCommand("stop", nil)
	if err != nil {
		t.Fatalf("EncodeCommand() = %v", err)
	}

	var a, b CommandPayload
	if err := json.Unmarshal(first, &a); err != nil {
		t.Fatal(err)
	}
	if err := json.Unmarshal(second, &b); err != nil {
		t.Fatal(err)
	}
	if a.Nonce == b.Nonce {
		t.Error("two commands share a nonce")
	}
}

func TestDecodeStatus(t *testing.T) {
	tests := []struct {
		name        string
		payload     string
		wantErr     bool
		wantBattery *int
		wantOnline  *bool
	}{
		{
			name:        "full payload",
			payload:     `{"battery_level": 42, "is_online": true}`,
			wantBattery: intPtr(42),
			wantOnline:  boolPtr(true),
		},
		{
			name:        "battery only",
			payload:     `{"battery_level": 7}`,
			wantBattery: intPtr(7),
		},
		{
			name:       "online only",
			payload:    `{"is_online": false}`,
			wantOnline: boolPtr(false),
		},
		{
			name:    "empty object",
			payload: `{}`,
		},
		{
			name:        "unknown fields ignored",
			payload:     `{"battery_level": 9, "firmware": "2.1.0", "dust_bin": "full"}`,
			wantBattery: intPtr(9),
		},
		{name: "not json", payload: `<status>42</status>`, wantErr: true},
		{name: "json but not an object", payload: `[1, 2, 3]`, wantErr: true},
		{name: "bare number", payload: `42`, wantErr: true},
		{name: "wrong field type", payload: `{"battery_level": "full"}`, wantErr: true},
		{name: "empty payload", payload: ``, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, err := DecodeStatus([]byte(tt.payload))
			if tt.wantErr {
				if err == nil {
					t.Fatal("DecodeStatus() should fail")
				}
				return
			}
			if err != nil {
				t.Fatalf("DecodeStatus() = %v", err)
			}

			if !intPtrEqual(status.BatteryLevel, tt.wantBattery) {
				t.Errorf("battery = %v, want %v", deref(status.BatteryLevel), deref(tt.wantBattery))
			}
			if !boolPtrEqual(status.IsOnline, tt.wantOnline) {
				t.Errorf("online = %v, want %v", deref(status.IsOnline), deref(tt.wantOnline))
			}
		})
	}
}

func intPtr(v int) *int    { return &v }
func boolPtr(v bool) *bool { return &v }

func intPtrEqual(a, b *int) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func boolPtrEqual(a, b *bool) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func deref[T any](p *T) any {
	if p == nil {
		return nil
	}
	return *p
}
