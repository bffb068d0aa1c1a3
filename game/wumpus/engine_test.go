package wumpus

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/wricardo/wumpus/game/engine"
)

func createTestEngine(t *testing.T) *Engine {
	t.Helper()
	config := DefaultConfig()
	config.Seed = 7
	eng, err := NewEngine(config, engine.PC, nil)
	if err != nil {
		t.Fatalf("Failed to create engine: %v", err)
	}
	return eng
}

// place puts the player, wumpus, pits and bats in fixed rooms
func place(eng *Engine, player, wumpusRoom, pitA, pitB, batA, batB int) {
	eng.cave.loc = [locationCount]int{player, wumpusRoom, pitA, pitB, batA, batB}
	eng.cave.outcome = Playing
	eng.cave.arrows = eng.config.Arrows
}

func hasMessage(resp Response, msg string) bool {
	for _, m := range resp.Messages() {
		if strings.Contains(m, msg) {
			return true
		}
	}
	return false
}

func TestNewEngine(t *testing.T) {
	eng := createTestEngine(t)

	if eng.InterfaceType() != engine.PC {
		t.Errorf("Expected PC interface type, got %v", eng.InterfaceType())
	}

	seen := map[int]bool{}
	for _, room := range eng.cave.loc {
		if room < 1 || room > RoomCount {
			t.Errorf("Location out of range: %d", room)
		}
		if seen[room] {
			t.Errorf("Location %d used twice: %v", room, eng.cave.loc)
		}
		seen[room] = true
	}
	if eng.cave.arrows != DefaultArrows {
		t.Errorf("Expected %d arrows, got %d", DefaultArrows, eng.cave.arrows)
	}

	if _, err := NewEngine(Config{Arrows: 0}, engine.PC, nil); err == nil {
		t.Error("Expected error for invalid config")
	}
}

func TestNewEngine_SeedIsDeterministic(t *testing.T) {
	a := createTestEngine(t)
	b := createTestEngine(t)

	if a.Snapshot() != b.Snapshot() {
		t.Errorf("Same seed produced different caves: %v vs %v", a.Snapshot(), b.Snapshot())
	}
}

func TestTunnelsAreSymmetric(t *testing.T) {
	for room := 1; room <= RoomCount; room++ {
		for _, next := range Tunnels(room) {
			if !Adjacent(next, room) {
				t.Errorf("Tunnel %d->%d has no way back", room, next)
			}
		}
	}
	if Tunnels(0) != [3]int{} || Tunnels(21) != [3]int{} {
		t.Error("Expected no tunnels for rooms outside the cave")
	}
}

func TestExecute_Warnings(t *testing.T) {
	eng := createTestEngine(t)
	place(eng, 1, 2, 5, 17, 8, 18)

	resp, err := eng.Execute(Action{Kind: ActionInstructions})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	for _, msg := range []string{
		"WELCOME TO 'HUNT THE WUMPUS'",
		"I SMELL A WUMPUS!",
		"I FEEL A DRAFT",
		"BATS NEARBY!",
		"YOU ARE IN ROOM 1",
		"TUNNELS LEAD TO 2, 5, 8",
	} {
		if !hasMessage(resp, msg) {
			t.Errorf("Expected message %q in %q", msg, resp.Msgs)
		}
	}
	if resp.Tunnels != [3]int{2, 5, 8} {
		t.Errorf("Expected tunnels [2 5 8], got %v", resp.Tunnels)
	}
	if resp.ShutdownRequired() {
		t.Error("Instructions should not require shutdown")
	}
}

func TestExecute_Move(t *testing.T) {
	t.Run("through a tunnel", func(t *testing.T) {
		eng := createTestEngine(t)
		place(eng, 1, 20, 17, 18, 15, 14)

		resp, _ := eng.Execute(Move(2))
		if eng.cave.loc[you] != 2 {
			t.Errorf("Expected player in room 2, got %d", eng.cave.loc[you])
		}
		if !hasMessage(resp, "YOU ARE IN ROOM 2") {
			t.Errorf("Unexpected messages: %q", resp.Msgs)
		}
		if resp.Outcome != Playing {
			t.Errorf("Expected playing, got %s", resp.Outcome)
		}
	})

	t.Run("no tunnel", func(t *testing.T) {
		eng := createTestEngine(t)
		place(eng, 1, 20, 17, 18, 15, 14)

		resp, _ := eng.Execute(Move(3))
		if eng.cave.loc[you] != 1 {
			t.Errorf("Player should not move, now in %d", eng.cave.loc[you])
		}
		if !hasMessage(resp, "NOT POSSIBLE -") {
			t.Errorf("Expected NOT POSSIBLE, got %q", resp.Msgs)
		}
	})

	t.Run("into a pit", func(t *testing.T) {
		eng := createTestEngine(t)
		place(eng, 1, 20, 5, 18, 15, 14)

		resp, _ := eng.Execute(Move(5))
		if resp.Outcome != Lost {
			t.Errorf("Expected lost, got %s", resp.Outcome)
		}
		if !hasMessage(resp, "FELL IN PIT") || !hasMessage(resp, "YOU LOSE") {
			t.Errorf("Unexpected messages: %q", resp.Msgs)
		}

		resp, _ = eng.Execute(Move(1))
		if !hasMessage(resp, "THE GAME IS OVER") {
			t.Errorf("Expected game over message, got %q", resp.Msgs)
		}
	})

	t.Run("snatched by bats", func(t *testing.T) {
		eng := createTestEngine(t)
		place(eng, 1, 20, 17, 18, 8, 14)

		resp, _ := eng.Execute(Move(8))
		if !hasMessage(resp, "SUPER BAT SNATCH") {
			t.Errorf("Expected bat snatch, got %q", resp.Msgs)
		}
	})
}

func TestExecute_Shoot(t *testing.T) {
	t.Run("hits the wumpus", func(t *testing.T) {
		eng := createTestEngine(t)
		place(eng, 1, 2, 17, 18, 15, 14)

		resp, _ := eng.Execute(Shoot(2))
		if resp.Outcome != Won {
			t.Errorf("Expected won, got %s", resp.Outcome)
		}
		if !hasMessage(resp, "YOU GOT THE WUMPUS") {
			t.Errorf("Unexpected messages: %q", resp.Msgs)
		}
	})

	t.Run("hits the shooter", func(t *testing.T) {
		eng := createTestEngine(t)
		place(eng, 1, 20, 17, 18, 15, 14)

		resp, _ := eng.Execute(Shoot(2, 1))
		if resp.Outcome != Lost {
			t.Errorf("Expected lost, got %s", resp.Outcome)
		}
		if !hasMessage(resp, "OUCH! ARROW GOT YOU!") {
			t.Errorf("Unexpected messages: %q", resp.Msgs)
		}
	})

	t.Run("too crooked", func(t *testing.T) {
		eng := createTestEngine(t)
		place(eng, 1, 20, 17, 18, 15, 14)

		resp, _ := eng.Execute(Shoot(2, 3, 2))
		if !hasMessage(resp, "ARROWS AREN'T THAT CROOKED") {
			t.Errorf("Unexpected messages: %q", resp.Msgs)
		}
		if resp.Arrows != DefaultArrows {
			t.Errorf("No arrow should be spent, have %d", resp.Arrows)
		}
	})

	t.Run("bad path length", func(t *testing.T) {
		eng := createTestEngine(t)
		place(eng, 1, 20, 17, 18, 15, 14)

		for _, path := range [][]int{{}, {2, 3, 4, 5, 6, 7}} {
			resp, _ := eng.Execute(Shoot(path...))
			if !hasMessage(resp, "NO. OF ROOMS(1-5)") {
				t.Errorf("Unexpected messages for %v: %q", path, resp.Msgs)
			}
		}
	})

	t.Run("miss costs an arrow", func(t *testing.T) {
		eng := createTestEngine(t)
		place(eng, 1, 20, 17, 18, 15, 14)

		resp, _ := eng.Execute(Shoot(2))
		if !hasMessage(resp, "MISSED") {
			t.Errorf("Unexpected messages: %q", resp.Msgs)
		}
		if resp.Arrows != DefaultArrows-1 {
			t.Errorf("Expected %d arrows, got %d", DefaultArrows-1, resp.Arrows)
		}
	})

	t.Run("out of arrows", func(t *testing.T) {
		eng := createTestEngine(t)
		place(eng, 1, 20, 17, 18, 15, 14)
		eng.cave.arrows = 1

		resp, _ := eng.Execute(Shoot(2))
		if resp.Outcome != Lost {
			t.Errorf("Expected lost, got %s", resp.Outcome)
		}
		if !hasMessage(resp, "OUT OF ARROWS") {
			t.Errorf("Unexpected messages: %q", resp.Msgs)
		}
	})
}

func TestExecute_ReStartAndQuit(t *testing.T) {
	eng := createTestEngine(t)
	place(eng, 1, 20, 5, 18, 15, 14)
	eng.Execute(Move(5))

	resp, err := eng.Execute(Action{Kind: ActionReStart})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if resp.Outcome != Playing {
		t.Errorf("Expected playing after restart, got %s", resp.Outcome)
	}
	if !hasMessage(resp, "HUNT THE WUMPUS") {
		t.Errorf("Unexpected messages: %q", resp.Msgs)
	}
	if resp.Arrows != DefaultArrows {
		t.Errorf("Expected a full quiver after restart, got %d", resp.Arrows)
	}

	resp, err = eng.Execute(Action{Kind: ActionQuit})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if !resp.ShutdownRequired() {
		t.Error("Quit should require shutdown")
	}
}

func TestExecute_ReStartShufflesRooms(t *testing.T) {
	eng := createTestEngine(t)
	before := eng.cave.loc

	// Two engines with the same seed restart into the same layout.
	twin := createTestEngine(t)

	if _, err := eng.Execute(Action{Kind: ActionReStart}); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	twin.Execute(Action{Kind: ActionReStart})

	after := eng.cave.loc
	if after == before {
		t.Errorf("Expected new rooms after restart, still %v", after)
	}
	if after != twin.cave.loc {
		t.Errorf("Expected seeded restarts to match, got %v and %v", after, twin.cave.loc)
	}

	seen := map[int]bool{}
	for _, room := range after {
		if room < 1 || room > RoomCount || seen[room] {
			t.Fatalf("Expected six distinct rooms, got %v", after)
		}
		seen[room] = true
	}

	snap := eng.Snapshot()
	if err := snap.Validate(); err != nil {
		t.Errorf("Restarted game should save a valid snapshot: %v", err)
	}
}

func TestHandleEvent(t *testing.T) {
	t.Run("lifecycle events are no-ops", func(t *testing.T) {
		eng := createTestEngine(t)
		before := eng.Snapshot()

		for _, kind := range []engine.EventKind{engine.EventCreate, engine.EventPause, engine.EventResume} {
			resp, err := eng.HandleEvent(engine.NewEvent(kind))
			if err != nil {
				t.Fatalf("Unexpected error for %s: %v", kind, err)
			}
			if resp.ShutdownRequired() || resp.Msgs != "" {
				t.Errorf("Expected default response for %s, got %+v", kind, resp)
			}
		}

		ev, _ := engine.DecodeEvent([]byte(`"LowMemory"`))
		if _, err := eng.HandleEvent(ev); err != nil {
			t.Errorf("Unknown events should not fail: %v", err)
		}
		if eng.Snapshot() != before {
			t.Error("Lifecycle events should not change the game")
		}
	})

	t.Run("save and restore", func(t *testing.T) {
		eng := createTestEngine(t)
		place(eng, 1, 20, 17, 18, 15, 14)
		eng.Execute(Move(2))

		saved, err := eng.HandleEvent(engine.NewEvent(engine.EventSaveInstanceState))
		if err != nil {
			t.Fatalf("Failed to save: %v", err)
		}
		if len(saved.SavedState) == 0 {
			t.Fatal("Expected saved state")
		}

		other, _ := NewEngine(Config{Arrows: DefaultArrows, Seed: 99}, engine.Android, nil)
		payload, _ := json.Marshal(map[string]json.RawMessage{"RestoreInstanceState": saved.SavedState})
		ev, err := engine.DecodeEvent(payload)
		if err != nil {
			t.Fatalf("Failed to decode restore event: %v", err)
		}

		resp, err := other.HandleEvent(ev)
		if err != nil {
			t.Fatalf("Failed to restore: %v", err)
		}
		if other.Snapshot() != eng.Snapshot() {
			t.Errorf("Expected %v, got %v", eng.Snapshot(), other.Snapshot())
		}
		if !hasMessage(resp, "YOU ARE IN ROOM 2") {
			t.Errorf("Unexpected messages: %q", resp.Msgs)
		}
	})

	t.Run("restore rejects bad state", func(t *testing.T) {
		eng := createTestEngine(t)
		before := eng.Snapshot()

		for _, state := range []string{
			`{"locations": [0,0,0,0,0,0]}`,
			`{"locations": [1,1,1,1,1,1], "arrows": 5, "outcome": "playing"}`,
			`{"locations": [1,2,3,4,5,3], "arrows": 5, "outcome": "playing"}`,
			`"nope"`,
		} {
			ev := engine.Event{Kind: engine.EventRestoreInstanceState, State: json.RawMessage(state)}
			if _, err := eng.HandleEvent(ev); err == nil {
				t.Errorf("Expected error for state %s", state)
			}
		}
		if eng.Snapshot() != before {
			t.Error("Failed restore should not change the game")
		}
	})
}

func TestInitialHTML(t *testing.T) {
	tests := []struct {
		it       engine.InterfaceType
		contains string
	}{
		{engine.PC, "new WebSocket"},
		{engine.Android, "wumpus.execute"},
		{engine.Library, "window.external.invoke"},
	}

	for _, test := range tests {
		t.Run(test.it.String(), func(t *testing.T) {
			eng, err := NewEngine(DefaultConfig(), test.it, nil)
			if err != nil {
				t.Fatalf("Failed to create engine: %v", err)
			}
			html, err := eng.InitialHTML()
			if err != nil {
				t.Fatalf("Failed to render: %v", err)
			}
			if !strings.Contains(html, "Hunt the Wumpus") {
				t.Error("Expected title in initial html")
			}
			if !strings.Contains(html, test.contains) {
				t.Errorf("Expected %q in initial html", test.contains)
			}
		})
	}
}

func TestFactory(t *testing.T) {
	var f engine.Factory[Config, Action, Response] = Factory{}

	if f.Name() != "wumpus" {
		t.Errorf("Expected name wumpus, got %s", f.Name())
	}

	config, err := f.DecodeConfig([]byte(`{}`))
	if err != nil {
		t.Fatalf("Failed to decode config: %v", err)
	}
	eng, err := f.New(config, engine.Library)
	if err != nil {
		t.Fatalf("Failed to create engine: %v", err)
	}

	action, err := f.DecodeAction([]byte(`"Quit"`))
	if err != nil {
		t.Fatalf("Failed to decode action: %v", err)
	}
	resp, err := eng.Execute(action)
	if err != nil {
		t.Fatalf("Failed to execute: %v", err)
	}
	if !resp.ShutdownRequired() {
		t.Error("Quit should require shutdown")
	}
}
