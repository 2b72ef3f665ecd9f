// Package logging provides the structured, field-based logger shared
// across the relay broker, endpoint loops, and identity tooling.
package logging

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New builds a zap.Logger suited to env: "production" yields JSON
// output at info level; anything else yields human-readable console
// output at debug level.
func New(env string) (*zap.Logger, error) {
	if env == "production" {
		cfg := zap.NewProductionConfig()
		cfg.Level = zap.NewAtomicLevelAt(zapcore.InfoLevel)
		return cfg.Build()
	}

	cfg := zap.NewDevelopmentConfig()
	cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	return cfg.Build()
}

// Named returns a child logger tagged with a "component" field, so
// every subsystem's log lines can be filtered independently.
func Named(base *zap.Logger, component string) *zap.Logger {
	return base.With(zap.String("component", component))
}
