package wumpus

import (
	"bytes"
	"embed"
	"encoding/json"
	"fmt"
	"html/template"
	"math/rand/v2"

	"go.uber.org/zap"

	"github.com/wricardo/wumpus/game/engine"
)

//go:embed templates/initial.html
var templateFS embed.FS

var initialTemplate = template.Must(template.ParseFS(templateFS, "templates/initial.html"))

// Factory builds wumpus engines. The zero value is ready to use.
type Factory struct {
	// Logger receives debug traces of every engine built by this factory.
	// Nil means no logging.
	Logger *zap.Logger
}

var _ engine.Factory[Config, Action, Response] = Factory{}

// Name identifies the engine kind
func (Factory) Name() string { return "wumpus" }

// DecodeConfig decodes a JSON configuration payload
func (Factory) DecodeConfig(data []byte) (Config, error) { return DecodeConfig(data) }

// DecodeAction decodes a JSON action payload
func (Factory) DecodeAction(data []byte) (Action, error) { return DecodeAction(data) }

// New creates a new game engine
func (f Factory) New(config Config, interfaceType engine.InterfaceType) (engine.Engine[Action, Response], error) {
	return NewEngine(config, interfaceType, f.Logger)
}

// Engine implements engine.Engine for Hunt the Wumpus
type Engine struct {
	interfaceType engine.InterfaceType
	config        Config
	cave          *cave
	log           *zap.Logger
}

// NewEngine creates a new game engine with the provided configuration
func NewEngine(config Config, interfaceType engine.InterfaceType, logger *zap.Logger) (*Engine, error) {
	if err := ValidateConfig(&config); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	seed := config.Seed
	if seed == 0 {
		seed = rand.Uint64()
	}
	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))

	logger.Debug("creating new game engine",
		zap.Stringer("interface_type", interfaceType),
		zap.Int("arrows", config.Arrows))

	return &Engine{
		interfaceType: interfaceType,
		config:        config,
		cave:          newCave(rng, config.Arrows),
		log:           logger,
	}, nil
}

// InterfaceType returns the host interface type the engine was built for
func (e *Engine) InterfaceType() engine.InterfaceType {
	return e.interfaceType
}

// Config returns the engine configuration
func (e *Engine) Config() Config {
	return e.config
}

// InitialHTML renders the starting view for the engine's host
func (e *Engine) InitialHTML() (string, error) {
	var buf bytes.Buffer
	err := initialTemplate.Execute(&buf, struct {
		Title         string
		InterfaceType string
	}{
		Title:         "Hunt the Wumpus",
		InterfaceType: e.interfaceType.String(),
	})
	if err != nil {
		return "", fmt.Errorf("failed to render initial html: %w", err)
	}
	return buf.String(), nil
}

// Execute performs the player's action and returns the resulting view
func (e *Engine) Execute(action Action) (Response, error) {
	e.log.Debug("executing", zap.String("action", string(action.Kind)))

	switch action.Kind {
	case ActionInstructions:
		e.cave.say(instructions)
	case ActionMove:
		e.cave.move(action.Room)
	case ActionShoot:
		e.cave.shoot(action.Path)
	case ActionReStart:
		e.cave.renew()
		e.cave.say("HUNT THE WUMPUS")
	case ActionQuit:
		return Response{Shutdown: true, Arrows: e.cave.arrows, Outcome: e.cave.outcome}, nil
	default:
		return Response{}, fmt.Errorf("unsupported action %q", action.Kind)
	}

	resp := e.cave.response()
	e.log.Debug("executed",
		zap.String("action", string(action.Kind)),
		zap.String("outcome", string(resp.Outcome)))
	return resp, nil
}

// HandleEvent reacts to host lifecycle events. Only state save/restore do
// anything; every other event yields an empty response.
func (e *Engine) HandleEvent(event engine.Event) (Response, error) {
	switch event.Kind {
	case engine.EventSaveInstanceState:
		state, err := json.Marshal(e.cave.snapshot())
		if err != nil {
			return Response{}, fmt.Errorf("failed to save state: %w", err)
		}
		return Response{
			Tunnels:    tunnels[e.cave.loc[you]-1],
			Arrows:     e.cave.arrows,
			Outcome:    e.cave.outcome,
			SavedState: state,
		}, nil

	case engine.EventRestoreInstanceState:
		var snap Snapshot
		if err := json.Unmarshal(event.State, &snap); err != nil {
			return Response{}, fmt.Errorf("failed to restore state: %w", err)
		}
		if err := snap.Validate(); err != nil {
			return Response{}, fmt.Errorf("failed to restore state: %w", err)
		}
		e.cave.restore(snap)
		e.log.Debug("state restored", zap.Ints("locations", snap.Locations[:]))
		return e.cave.response(), nil

	default:
		e.log.Debug("event ignored", zap.String("event", event.Name))
		return Response{}, nil
	}
}

// Snapshot returns the saved form of the current game
func (e *Engine) Snapshot() Snapshot {
	return e.cave.snapshot()
}
