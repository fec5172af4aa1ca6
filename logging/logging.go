// Package logging builds the zap loggers used across prologot.
package logging

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New returns a console logger writing to stderr. verbose enables debug
// output; quiet keeps only errors.
func New(verbose, quiet bool) (*zap.Logger, error) {
	config := zap.NewDevelopmentConfig()
	config.DisableStacktrace = true
	config.DisableCaller = true
	config.EncoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05")
	switch {
	case quiet:
		config.Level = zap.NewAtomicLevelAt(zapcore.ErrorLevel)
	case verbose:
		config.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	default:
		config.Level = zap.NewAtomicLevelAt(zapcore.InfoLevel)
	}
	logger, err := config.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return logger.Named("prologot"), nil
}

// NewNop returns a logger that discards everything.
func NewNop() *zap.Logger { return zap.NewNop() }
