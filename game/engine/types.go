package engine

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// InterfaceType identifies what kind of host renders the engine's view
type InterfaceType int

const (
	PC InterfaceType = iota
	Android
	Library
)

var interfaceTypeNames = map[InterfaceType]string{
	PC:      "PC",
	Android: "Android",
	Library: "Library",
}

// String returns the interface type name
func (t InterfaceType) String() string {
	if name, ok := interfaceTypeNames[t]; ok {
		return name
	}
	return fmt.Sprintf("InterfaceType(%d)", int(t))
}

// ParseInterfaceType parses an interface type name (case-insensitive)
func ParseInterfaceType(name string) (InterfaceType, error) {
	for t, n := range interfaceTypeNames {
		if strings.EqualFold(n, name) {
			return t, nil
		}
	}
	return PC, fmt.Errorf("unknown interface type %q", name)
}

// MarshalJSON encodes the interface type as its name
func (t InterfaceType) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.String())
}

// UnmarshalJSON decodes an interface type name
func (t *InterfaceType) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err != nil {
		return err
	}
	parsed, err := ParseInterfaceType(name)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// EventKind enumerates host lifecycle notifications
type EventKind string

const (
	EventCreate               EventKind = "Create"
	EventStart                EventKind = "Start"
	EventResume               EventKind = "Resume"
	EventPause                EventKind = "Pause"
	EventStop                 EventKind = "Stop"
	EventDestroy              EventKind = "Destroy"
	EventSaveInstanceState    EventKind = "SaveInstanceState"
	EventRestoreInstanceState EventKind = "RestoreInstanceState"
	EventUnknown              EventKind = "Unknown"
)

var knownEvents = map[EventKind]bool{
	EventCreate:               true,
	EventStart:                true,
	EventResume:               true,
	EventPause:                true,
	EventStop:                 true,
	EventDestroy:              true,
	EventSaveInstanceState:    true,
	EventRestoreInstanceState: true,
}

// Event is a lifecycle notification from the host.
//
// On the wire an event is either a bare name ("Create") or a single-key
// object carrying a payload ({"RestoreInstanceState": {...}}).
type Event struct {
	Kind EventKind

	// Name is the name received on the wire. It differs from Kind only for
	// EventUnknown.
	Name string

	// State is the payload of RestoreInstanceState.
	State json.RawMessage
}

// NewEvent creates an event without payload
func NewEvent(kind EventKind) Event {
	return Event{Kind: kind, Name: string(kind)}
}

// DecodeEvent decodes an event payload. Unrecognized event names decode to
// EventUnknown; only malformed JSON is an error.
func DecodeEvent(data []byte) (Event, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return Event{}, fmt.Errorf("event: empty payload")
	}

	var name string
	if data[0] == '"' {
		if err := json.Unmarshal(data, &name); err != nil {
			return Event{}, fmt.Errorf("event: %w", err)
		}
		return eventNamed(name, nil), nil
	}

	var tagged map[string]json.RawMessage
	if err := json.Unmarshal(data, &tagged); err != nil {
		return Event{}, fmt.Errorf("event: %w", err)
	}
	if len(tagged) != 1 {
		return Event{}, fmt.Errorf("event: expected exactly one variant, got %d", len(tagged))
	}
	var payload json.RawMessage
	for key, value := range tagged {
		name, payload = key, value
	}
	return eventNamed(name, payload), nil
}

// MarshalJSON encodes the event in the same tagged form DecodeEvent accepts
func (e Event) MarshalJSON() ([]byte, error) {
	name := e.Name
	if name == "" {
		name = string(e.Kind)
	}
	if len(e.State) == 0 {
		return json.Marshal(name)
	}
	return json.Marshal(map[string]json.RawMessage{name: e.State})
}

// UnmarshalJSON decodes the tagged wire form
func (e *Event) UnmarshalJSON(data []byte) error {
	decoded, err := DecodeEvent(data)
	if err != nil {
		return err
	}
	*e = decoded
	return nil
}

func eventNamed(name string, payload json.RawMessage) Event {
	kind := EventKind(name)
	if !knownEvents[kind] {
		kind = EventUnknown
	}
	return Event{Kind: kind, Name: name, State: payload}
}
