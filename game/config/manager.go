package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/wricardo/wumpus/game/wumpus"
)

var (
	ErrConfigNotFound = errors.New("configuration not found")
	ErrInvalidConfig  = errors.New("invalid configuration")
	ErrInvalidName    = errors.New("invalid configuration name")
)

// Extensions lists the file extensions the manager reads, in lookup order
var Extensions = []string{".json", ".yaml", ".yml"}

// ConfigInfo describes a configuration file
type ConfigInfo struct {
	Filename    string `json:"filename"`
	ConfigID    string `json:"config_id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Arrows      int    `json:"arrows"`
}

// Manager handles game configuration loading and caching
type Manager struct {
	configDir     string
	defaultConfig wumpus.Config
	configs       map[string]wumpus.Config
	mu            sync.RWMutex
}

// NewManager creates a new configuration manager
func NewManager(configDir string) (*Manager, error) {
	if _, err := os.Stat(configDir); os.IsNotExist(err) {
		return nil, fmt.Errorf("config directory does not exist: %s", configDir)
	}

	m := &Manager{
		configDir: configDir,
		configs:   make(map[string]wumpus.Config),
	}

	m.defaultConfig = m.loadDefaultConfig()
	return m, nil
}

// LoadConfig loads a configuration by name. The name may carry one of the
// supported extensions; without one each extension is tried in turn.
func (m *Manager) LoadConfig(name string) (wumpus.Config, error) {
	if err := checkName(name); err != nil {
		return wumpus.Config{}, err
	}
	id := configID(name)

	m.mu.RLock()
	config, exists := m.configs[id]
	m.mu.RUnlock()
	if exists {
		return config, nil
	}

	path, err := m.resolve(name)
	if err != nil {
		return wumpus.Config{}, err
	}

	config, err = DecodeFile(path)
	if err != nil {
		return wumpus.Config{}, err
	}

	m.mu.Lock()
	m.configs[id] = config
	m.mu.Unlock()
	return config, nil
}

// ReloadConfig drops a cached configuration and reads it again from disk
func (m *Manager) ReloadConfig(name string) error {
	m.mu.Lock()
	delete(m.configs, configID(name))
	m.mu.Unlock()

	_, err := m.LoadConfig(name)
	return err
}

// checkName rejects names that would reach outside the config directory
func checkName(name string) error {
	if name == "" || name == "." || name == ".." || filepath.Base(name) != name ||
		strings.ContainsAny(name, `/\`) {
		return fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return nil
}

// resolve finds the file backing a configuration name
func (m *Manager) resolve(name string) (string, error) {
	if hasExtension(name) {
		path := filepath.Join(m.configDir, name)
		if _, err := os.Stat(path); err != nil {
			if os.IsNotExist(err) {
				return "", ErrConfigNotFound
			}
			return "", fmt.Errorf("failed to stat config file: %w", err)
		}
		return path, nil
	}

	for _, ext := range Extensions {
		path := filepath.Join(m.configDir, name+ext)
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
	}
	return "", ErrConfigNotFound
}

// ListConfigs returns information about all valid configurations, sorted
// by file name
func (m *Manager) ListConfigs() ([]*ConfigInfo, error) {
	entries, err := os.ReadDir(m.configDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read config directory: %w", err)
	}

	var configs []*ConfigInfo

	for _, entry := range entries {
		if entry.IsDir() || !hasExtension(entry.Name()) {
			continue
		}

		config, err := m.LoadConfig(entry.Name())
		if err != nil {
			// Skip invalid configs
			continue
		}

		configs = append(configs, &ConfigInfo{
			Filename:    entry.Name(),
			ConfigID:    configID(entry.Name()),
			Name:        config.Name,
			Description: config.Description,
			Arrows:      config.Arrows,
		})
	}

	sort.Slice(configs, func(i, j int) bool { return configs[i].Filename < configs[j].Filename })
	return configs, nil
}

// GetDefault returns the default configuration
func (m *Manager) GetDefault() wumpus.Config {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.defaultConfig
}

// SetDefault sets the default configuration by name
func (m *Manager) SetDefault(name string) error {
	config, err := m.LoadConfig(name)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.defaultConfig = config
	return nil
}

// RefreshCache drops every cached configuration and reloads the default
func (m *Manager) RefreshCache() {
	m.mu.Lock()
	m.configs = make(map[string]wumpus.Config)
	m.mu.Unlock()

	config := m.loadDefaultConfig()

	m.mu.Lock()
	m.defaultConfig = config
	m.mu.Unlock()
}

// Count returns the number of cached configurations
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.configs)
}

// loadDefaultConfig picks classic, then the first valid file, then the
// built-in default
func (m *Manager) loadDefaultConfig() wumpus.Config {
	if config, err := m.LoadConfig("classic"); err == nil {
		return config
	}

	configs, err := m.ListConfigs()
	if err != nil || len(configs) == 0 {
		return wumpus.DefaultConfig()
	}

	config, err := m.LoadConfig(configs[0].Filename)
	if err != nil {
		return wumpus.DefaultConfig()
	}
	return config
}

// SaveConfig writes a configuration to disk. The extension of name picks
// the format; JSON is used when it has none.
func (m *Manager) SaveConfig(name string, config wumpus.Config) error {
	if err := wumpus.ValidateConfig(&config); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if err := checkName(name); err != nil {
		return err
	}

	filename := name
	if !hasExtension(filename) {
		filename = name + ".json"
	}

	data, err := Encode(filepath.Ext(filename), config)
	if err != nil {
		return err
	}

	configPath := filepath.Join(m.configDir, filename)
	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	m.mu.Lock()
	m.configs[configID(name)] = config
	m.mu.Unlock()

	return nil
}

// DecodeFile reads and validates a configuration file. YAML and JSON are
// told apart by extension.
func DecodeFile(path string) (wumpus.Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return wumpus.Config{}, ErrConfigNotFound
		}
		return wumpus.Config{}, fmt.Errorf("failed to read config file: %w", err)
	}
	return Decode(filepath.Ext(path), data)
}

// Decode parses a configuration in the format named by ext
func Decode(ext string, data []byte) (wumpus.Config, error) {
	switch strings.ToLower(ext) {
	case ".yaml", ".yml":
		config := wumpus.DefaultConfig()
		if len(bytes.TrimSpace(data)) > 0 {
			if err := yaml.Unmarshal(data, &config); err != nil {
				return wumpus.Config{}, fmt.Errorf("failed to parse config: %w", err)
			}
		}
		if config.Arrows == 0 {
			config.Arrows = wumpus.DefaultArrows
		}
		if err := wumpus.ValidateConfig(&config); err != nil {
			return wumpus.Config{}, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
		}
		return config, nil

	default:
		config, err := wumpus.DecodeConfig(data)
		if err != nil {
			if errors.Is(err, wumpus.ErrInvalidConfig) {
				return wumpus.Config{}, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
			}
			return wumpus.Config{}, err
		}
		return config, nil
	}
}

// Encode renders a configuration in the format named by ext
func Encode(ext string, config wumpus.Config) ([]byte, error) {
	switch strings.ToLower(ext) {
	case ".yaml", ".yml":
		data, err := yaml.Marshal(config)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal config: %w", err)
		}
		return data, nil
	default:
		data, err := json.MarshalIndent(config, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("failed to marshal config: %w", err)
		}
		return data, nil
	}
}

func hasExtension(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	for _, e := range Extensions {
		if ext == e {
			return true
		}
	}
	return false
}

func configID(name string) string {
	if hasExtension(name) {
		return strings.TrimSuffix(name, filepath.Ext(name))
	}
	return name
}
