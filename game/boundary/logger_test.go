package boundary

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestNewLogger(t *testing.T) {
	l := NewLogger("debug")
	assert.True(t, l.Core().Enabled(zapcore.DebugLevel))

	for _, level := range []string{"", "bogus"} {
		l = NewLogger(level)
		assert.False(t, l.Core().Enabled(zapcore.DebugLevel), level)
		assert.True(t, l.Core().Enabled(zapcore.InfoLevel), level)
	}
}

func TestSetLogger(t *testing.T) {
	prev := Logger()
	defer SetLogger(prev)

	core, logs := observer.New(zapcore.InfoLevel)
	SetLogger(zap.New(core))
	Logger().Info("hello")
	assert.Equal(t, 1, logs.FilterMessage("hello").Len())

	SetLogger(nil)
	assert.NotNil(t, Logger())
}
