package wumpus

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// ActionKind enumerates what a player can do
type ActionKind string

const (
	ActionMove         ActionKind = "Move"
	ActionShoot        ActionKind = "Shoot"
	ActionReStart      ActionKind = "ReStart"
	ActionInstructions ActionKind = "Instructions"
	ActionQuit         ActionKind = "Quit"
)

// Action is a player command. Room is set for Move, Path for Shoot.
type Action struct {
	Kind ActionKind
	Room int
	Path []int
}

// Move creates a move action
func Move(room int) Action { return Action{Kind: ActionMove, Room: room} }

// Shoot creates a shoot action
func Shoot(path ...int) Action { return Action{Kind: ActionShoot, Path: path} }

// DecodeAction decodes the tagged wire form of an action
func DecodeAction(data []byte) (Action, error) {
	var a Action
	if err := a.UnmarshalJSON(data); err != nil {
		return Action{}, err
	}
	return a, nil
}

// UnmarshalJSON decodes "ReStart", {"Move": 5} or {"Shoot": [1, 2]}
func (a *Action) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return fmt.Errorf("action: empty payload")
	}

	if data[0] == '"' {
		var name string
		if err := json.Unmarshal(data, &name); err != nil {
			return fmt.Errorf("action: %w", err)
		}
		switch kind := ActionKind(name); kind {
		case ActionReStart, ActionInstructions, ActionQuit:
			*a = Action{Kind: kind}
			return nil
		case ActionMove, ActionShoot:
			return fmt.Errorf("action: %s requires a value", name)
		default:
			return fmt.Errorf("action: unknown variant %q", name)
		}
	}

	var tagged map[string]json.RawMessage
	if err := json.Unmarshal(data, &tagged); err != nil {
		return fmt.Errorf("action: %w", err)
	}
	if len(tagged) != 1 {
		return fmt.Errorf("action: expected exactly one variant, got %d", len(tagged))
	}

	for name, value := range tagged {
		switch ActionKind(name) {
		case ActionMove:
			var room int
			if err := json.Unmarshal(value, &room); err != nil {
				return fmt.Errorf("action: Move: %w", err)
			}
			*a = Move(room)
		case ActionShoot:
			var path []int
			if err := json.Unmarshal(value, &path); err != nil {
				return fmt.Errorf("action: Shoot: %w", err)
			}
			*a = Shoot(path...)
		default:
			return fmt.Errorf("action: unknown variant %q", name)
		}
	}
	return nil
}

// MarshalJSON encodes the action in its tagged wire form
func (a Action) MarshalJSON() ([]byte, error) {
	switch a.Kind {
	case ActionMove:
		return json.Marshal(map[string]int{string(ActionMove): a.Room})
	case ActionShoot:
		path := a.Path
		if path == nil {
			path = []int{}
		}
		return json.Marshal(map[string][]int{string(ActionShoot): path})
	default:
		return json.Marshal(string(a.Kind))
	}
}

// Outcome is the state of the current game
type Outcome string

const (
	Playing Outcome = "playing"
	Won     Outcome = "won"
	Lost    Outcome = "lost"
)

// Response is the engine's answer to an action or event
type Response struct {
	Shutdown   bool            `json:"shutdown_required"`
	Msgs       string          `json:"msgs"`
	Tunnels    [3]int          `json:"tunnels"`
	Arrows     int             `json:"arrows"`
	Outcome    Outcome         `json:"outcome,omitempty"`
	SavedState json.RawMessage `json:"saved_state,omitempty"`
}

// ShutdownRequired reports whether the host should shut down
func (r Response) ShutdownRequired() bool {
	return r.Shutdown
}

// Messages splits the joined message string back into lines
func (r Response) Messages() []string {
	if r.Msgs == "" {
		return nil
	}
	return strings.Split(r.Msgs, msgSeparator)
}

// Snapshot is the saved form of a game, carried by SaveInstanceState
// responses and RestoreInstanceState events.
type Snapshot struct {
	Locations [locationCount]int `json:"locations"`
	Arrows    int                `json:"arrows"`
	Outcome   Outcome            `json:"outcome"`
}

// Validate checks that a snapshot describes a reachable game
func (s *Snapshot) Validate() error {
	for i, room := range s.Locations {
		if room < 1 || room > RoomCount {
			return fmt.Errorf("snapshot: location %d out of range: %d", i, room)
		}
	}

	// Pits and bats never move, so they always hold four different rooms.
	// The wumpus may share a room with any of them.
	for i := pit1; i < locationCount; i++ {
		for j := i + 1; j < locationCount; j++ {
			if s.Locations[i] == s.Locations[j] {
				return fmt.Errorf("snapshot: hazards %d and %d share room %d", i, j, s.Locations[i])
			}
		}
	}
	// A player still playing is never in a hazard's room.
	if s.Outcome == Playing {
		for i := wumpus; i < locationCount; i++ {
			if s.Locations[i] == s.Locations[you] {
				return fmt.Errorf("snapshot: player shares room %d with hazard %d", s.Locations[you], i)
			}
		}
	}
	if s.Arrows < 0 || s.Arrows > MaxArrows {
		return fmt.Errorf("snapshot: arrows out of range: %d", s.Arrows)
	}
	switch s.Outcome {
	case Playing, Won, Lost:
	default:
		return fmt.Errorf("snapshot: unknown outcome %q", s.Outcome)
	}
	return nil
}
