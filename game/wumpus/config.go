package wumpus

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

const (
	DefaultArrows = 5
	MinArrows     = 1
	MaxArrows     = 10
	MaxArrowPath  = 5
	RoomCount     = 20
)

var ErrInvalidConfig = errors.New("invalid configuration")

// Config represents the engine configuration from JSON
type Config struct {
	Name        string `json:"name,omitempty" yaml:"name,omitempty"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
	Arrows      int    `json:"arrows,omitempty" yaml:"arrows,omitempty"`
	Seed        uint64 `json:"seed,omitempty" yaml:"seed,omitempty"`
}

// DefaultConfig returns the classic game setup
func DefaultConfig() Config {
	return Config{
		Name:        "classic",
		Description: "Hunt the Wumpus by Gregory Yob",
		Arrows:      DefaultArrows,
	}
}

// ValidateConfig validates a configuration for playability
func ValidateConfig(config *Config) error {
	if config.Arrows < MinArrows || config.Arrows > MaxArrows {
		return fmt.Errorf("%w: arrows must be between %d and %d, got %d",
			ErrInvalidConfig, MinArrows, MaxArrows, config.Arrows)
	}
	return nil
}

// DecodeConfig decodes a JSON configuration. An empty payload, {} and null
// all yield the default configuration.
func DecodeConfig(data []byte) (Config, error) {
	config := DefaultConfig()

	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return config, nil
	}
	if err := json.Unmarshal(data, &config); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}

	// Zero values mean "use the default" so partial configs stay valid.
	if config.Arrows == 0 {
		config.Arrows = DefaultArrows
	}
	if err := ValidateConfig(&config); err != nil {
		return Config{}, err
	}
	return config, nil
}
