// Package logging builds the zap loggers used by the commands.
package logging

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New returns a development console logger on stderr. It logs warnings and
// above unless verbose is set, which lowers the level to debug.
func New(verbose bool) (*zap.Logger, error) {
	level := zapcore.WarnLevel
	if verbose {
		level = zapcore.DebugLevel
	}
	return NewWithLevel(level, true)
}

// NewWithLevel returns a development console logger at level. Colored level
// names are used only when color is set.
func NewWithLevel(level zapcore.Level, color bool) (*zap.Logger, error) {
	cfg := zap.NewDevelopmentConfig()
	cfg.Level.SetLevel(level)
	cfg.OutputPaths = []string{"stderr"}
	cfg.ErrorOutputPaths = []string{"stderr"}
	cfg.DisableStacktrace = level > zapcore.DebugLevel
	if color {
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	} else {
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
	}

	return cfg.Build()
}

// ParseLevel parses a level name such as "debug" or "warn"
func ParseLevel(name string) (zapcore.Level, error) {
	return zapcore.ParseLevel(name)
}
