// Package logger wraps zap construction so main can set the level
// once and hand the same logger everywhere.
package logger

import (
	"fmt"

	"go.uber.org/zap"
)

// Logger carries the configured zap logger.
type Logger struct {
	// Log is the underlying zap logger.
	Log *zap.Logger
}

// New returns a Logger backed by a no-op zap logger until Init is
// called.
func New() *Logger {
	return &Logger{Log: zap.NewNop()}
}

// Init builds the production logger at the given level, replacing the
// no-op one.
func (l *Logger) Init(level string) error {
	lvl, err := zap.ParseAtomicLevel(level)
	if err != nil {
		return fmt.Errorf("invalid log level %q: %w", level, err)
	}
	cfg := zap.NewProductionConfig()
	cfg.Level = lvl
	logger, err := cfg.Build()
	if err != nil {
		return err
	}
	l.Log = logger
	return nil
}
