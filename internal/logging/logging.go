// Package logging builds the zap loggers used across Tickora.
package logging

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New returns a logger for the given preset. "dev" gives colored console
// output at debug level; "prod" gives JSON at info level.
func New(level string) (*zap.Logger, error) {
	var cfg zap.Config

	switch level {
	case "dev", "":
		cfg = zap.NewDevelopmentConfig()
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	case "prod":
		cfg = zap.NewProductionConfig()
	default:
		return nil, fmt.Errorf("logging: unknown level %q", level)
	}

	logger, err := cfg.Build()
	if err != nil {
		return nil, fmt.Errorf("logging: build: %w", err)
	}
	return logger, nil
}

// Nop returns a logger that discards everything, for tests and quiet CLI
// commands.
func Nop() *zap.Logger { return zap.NewNop() }
