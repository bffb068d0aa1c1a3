package main

import (
	"os"

	"go.uber.org/zap"

	"github.com/wricardo/wumpus/game/engine"
)

// InterfaceTypeEnv names the host kind engines are built for
const InterfaceTypeEnv = "WUMPUS_INTERFACE_TYPE"

// interfaceTypeFromEnv reads WUMPUS_INTERFACE_TYPE, defaulting to Android
func interfaceTypeFromEnv(log *zap.Logger) engine.InterfaceType {
	name := os.Getenv(InterfaceTypeEnv)
	if name == "" {
		return engine.Android
	}

	it, err := engine.ParseInterfaceType(name)
	if err != nil {
		log.Warn("unknown interface type, using Android",
			zap.String("env", InterfaceTypeEnv),
			zap.Error(err))
		return engine.Android
	}
	return it
}
