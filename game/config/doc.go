// Package config provides configuration management for Hunt the Wumpus hosts.
//
// The config package handles:
//   - Loading named game configurations from JSON or YAML files
//   - Configuration validation
//   - Default configuration management
//   - Configuration discovery and listing
//
// Configuration Format:
//
// Configurations live in the configs directory as name.json, name.yaml or
// name.yml. Each one may set:
//   - name and description, shown when listing configurations
//   - arrows, the number of arrows the player starts with (1-10)
//   - seed, a fixed random seed for reproducible caves (0 is random)
//
// Missing fields take the classic defaults.
//
// Usage:
//
//	manager, err := config.NewManager("configs")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	// Load specific configuration
//	gameConfig, err := manager.LoadConfig("practice")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	// Get default configuration
//	defaultConfig := manager.GetDefault()
//
//	// List available configurations
//	configs, err := manager.ListConfigs()
//
// The engine boundary takes configurations as JSON, so hosts marshal the
// loaded value before creating a game.
package config
