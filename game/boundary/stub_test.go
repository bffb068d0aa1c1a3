package boundary_test

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/wricardo/wumpus/game/engine"
)

// counterEngine is a minimal engine whose state is a plain counter. It is
// deliberately unsynchronized so the race detector sees any call the
// boundary fails to serialize.
type counterEngine struct {
	config        counterConfig
	interfaceType engine.InterfaceType
	count         int
}

type counterConfig struct {
	Start    int  `json:"start"`
	FailNew  bool `json:"fail_new"`
	FailHTML bool `json:"fail_html"`
}

type counterResponse struct {
	Count    int  `json:"count"`
	Shutdown bool `json:"shutdown"`
}

func (r counterResponse) ShutdownRequired() bool { return r.Shutdown }

type counterFactory struct{}

func (counterFactory) Name() string { return "counter" }

func (counterFactory) DecodeConfig(data []byte) (counterConfig, error) {
	var config counterConfig
	if len(data) == 0 {
		return config, nil
	}
	if err := json.Unmarshal(data, &config); err != nil {
		return counterConfig{}, fmt.Errorf("failed to parse config: %w", err)
	}
	return config, nil
}

func (counterFactory) DecodeAction(data []byte) (string, error) {
	var action string
	if err := json.Unmarshal(data, &action); err != nil {
		return "", fmt.Errorf("failed to parse action: %w", err)
	}
	return action, nil
}

func (counterFactory) New(config counterConfig, it engine.InterfaceType) (engine.Engine[string, counterResponse], error) {
	if config.FailNew {
		return nil, errors.New("engine refused to start")
	}
	return &counterEngine{config: config, interfaceType: it, count: config.Start}, nil
}

func (e *counterEngine) InterfaceType() engine.InterfaceType { return e.interfaceType }

func (e *counterEngine) InitialHTML() (string, error) {
	if e.config.FailHTML {
		return "", errors.New("no template")
	}
	return fmt.Sprintf("<p>%d</p>", e.count), nil
}

func (e *counterEngine) Execute(action string) (counterResponse, error) {
	switch action {
	case "inc":
		e.count++
	case "half-panic":
		e.count++
		panic("counter overflow")
	case "fail":
		return counterResponse{}, errors.New("cannot do that")
	case "quit":
		return counterResponse{Count: e.count, Shutdown: true}, nil
	default:
		return counterResponse{}, fmt.Errorf("unknown action %q", action)
	}
	return counterResponse{Count: e.count}, nil
}

func (e *counterEngine) HandleEvent(event engine.Event) (counterResponse, error) {
	if event.Kind == engine.EventDestroy {
		return counterResponse{Count: e.count, Shutdown: true}, nil
	}
	return counterResponse{Count: e.count}, nil
}
