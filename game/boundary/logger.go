package boundary

import (
	"os"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// LogLevelEnv names the environment variable holding the process log level
const LogLevelEnv = "WUMPUS_LOG_LEVEL"

var (
	logger     atomic.Pointer[zap.Logger]
	loggerOnce sync.Once
)

// Logger returns the process-wide logger. The first call builds it from
// WUMPUS_LOG_LEVEL unless SetLogger ran earlier; later calls never rebuild it.
func Logger() *zap.Logger {
	loggerOnce.Do(func() {
		if logger.Load() == nil {
			logger.Store(NewLogger(os.Getenv(LogLevelEnv)))
		}
	})
	return logger.Load()
}

// SetLogger replaces the process-wide logger. Nil installs a no-op logger.
func SetLogger(l *zap.Logger) {
	if l == nil {
		l = zap.NewNop()
	}
	logger.Store(l)
}

// NewLogger builds a JSON logger on stderr at the named level. An empty or
// unknown level means info.
func NewLogger(level string) *zap.Logger {
	lvl := zapcore.InfoLevel
	if level != "" {
		if parsed, err := zapcore.ParseLevel(level); err == nil {
			lvl = parsed
		}
	}

	config := zap.NewProductionConfig()
	config.Level = zap.NewAtomicLevelAt(lvl)
	config.OutputPaths = []string{"stderr"}
	config.ErrorOutputPaths = []string{"stderr"}

	l, err := config.Build()
	if err != nil {
		return zap.NewNop()
	}
	return l
}
