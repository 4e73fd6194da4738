package logging

import (
	"go.uber.org/zap"
)

// New builds the application logger. Production uses JSON output at info
// level; every other environment gets the human-readable development config.
func New(appEnv string) (*zap.Logger, error) {
	if appEnv == "production" {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}

// OrNop returns l, or a no-op logger when l is nil.
func OrNop(l *zap.Logger) *zap.Logger {
	if l == nil {
		return zap.NewNop()
	}
	return l
}
