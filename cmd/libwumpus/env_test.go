package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/wricardo/wumpus/game/engine"
)

func TestInterfaceTypeFromEnv(t *testing.T) {
	tests := []struct {
		value    string
		want     engine.InterfaceType
		warnings int
	}{
		{value: "", want: engine.Android},
		{value: "pc", want: engine.PC},
		{value: "Library", want: engine.Library},
		{value: "toaster", want: engine.Android, warnings: 1},
	}

	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			t.Setenv(InterfaceTypeEnv, tt.value)
			core, logs := observer.New(zapcore.WarnLevel)

			assert.Equal(t, tt.want, interfaceTypeFromEnv(zap.New(core)))
			assert.Equal(t, tt.warnings, logs.Len())
		})
	}
}
