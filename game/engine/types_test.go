package engine

import (
	"encoding/json"
	"testing"
)

func TestInterfaceTypeNames(t *testing.T) {
	tests := []struct {
		it       InterfaceType
		expected string
	}{
		{PC, "PC"},
		{Android, "Android"},
		{Library, "Library"},
	}

	for _, test := range tests {
		if test.it.String() != test.expected {
			t.Errorf("Expected %s, got %s", test.expected, test.it.String())
		}

		parsed, err := ParseInterfaceType(test.expected)
		if err != nil {
			t.Fatalf("Failed to parse %s: %v", test.expected, err)
		}
		if parsed != test.it {
			t.Errorf("Expected %v, got %v", test.it, parsed)
		}
	}

	if _, err := ParseInterfaceType("toaster"); err == nil {
		t.Error("Expected error for unknown interface type")
	}
}

func TestInterfaceTypeJSON(t *testing.T) {
	data, err := json.Marshal(Android)
	if err != nil {
		t.Fatalf("Failed to marshal interface type: %v", err)
	}
	if string(data) != `"Android"` {
		t.Errorf("Expected \"Android\", got %s", data)
	}

	var it InterfaceType
	if err := json.Unmarshal([]byte(`"pc"`), &it); err != nil {
		t.Fatalf("Failed to unmarshal interface type: %v", err)
	}
	if it != PC {
		t.Errorf("Expected PC, got %v", it)
	}
}

func TestDecodeEvent(t *testing.T) {
	tests := []struct {
		name    string
		payload string
		kind    EventKind
		wire    string
		state   string
	}{
		{"bare create", `"Create"`, EventCreate, "Create", ""},
		{"bare save", ` "SaveInstanceState" `, EventSaveInstanceState, "SaveInstanceState", ""},
		{"tagged restore", `{"RestoreInstanceState": {"arrows": 3}}`, EventRestoreInstanceState, "RestoreInstanceState", `{"arrows": 3}`},
		{"unknown bare", `"LowMemory"`, EventUnknown, "LowMemory", ""},
		{"unknown tagged", `{"Rotate": 90}`, EventUnknown, "Rotate", "90"},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			ev, err := DecodeEvent([]byte(test.payload))
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if ev.Kind != test.kind {
				t.Errorf("Expected kind %s, got %s", test.kind, ev.Kind)
			}
			if ev.Name != test.wire {
				t.Errorf("Expected name %s, got %s", test.wire, ev.Name)
			}
			if string(ev.State) != test.state {
				t.Errorf("Expected state %q, got %q", test.state, string(ev.State))
			}
		})
	}
}

func TestDecodeEvent_Malformed(t *testing.T) {
	payloads := []string{
		``,
		`   `,
		`"Create`,
		`{"Create": `,
		`{}`,
		`{"Create": null, "Pause": null}`,
		`42`,
	}

	for _, payload := range payloads {
		if _, err := DecodeEvent([]byte(payload)); err == nil {
			t.Errorf("Expected error for payload %q", payload)
		}
	}
}

func TestEventMarshalRoundTrip(t *testing.T) {
	ev := Event{Kind: EventRestoreInstanceState, State: json.RawMessage(`{"a":1}`)}
	data, err := json.Marshal(ev)
	if err != nil {
		t.Fatalf("Failed to marshal event: %v", err)
	}
	if string(data) != `{"RestoreInstanceState":{"a":1}}` {
		t.Errorf("Unexpected encoding: %s", data)
	}

	var decoded Event
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Failed to unmarshal event: %v", err)
	}
	if decoded.Kind != EventRestoreInstanceState {
		t.Errorf("Expected RestoreInstanceState, got %s", decoded.Kind)
	}

	data, _ = json.Marshal(NewEvent(EventPause))
	if string(data) != `"Pause"` {
		t.Errorf("Expected \"Pause\", got %s", data)
	}
}
