package logger

import corelogger "github.com/retailops/fleetalloc/core/logger"

// Logger aliases the core interface so infra consumers don't import core
// directly.
type Logger = corelogger.Logger

// NopLogger discards everything. Useful as a default in constructors.
type NopLogger struct{}

func (NopLogger) Debugf(string, ...any)         {}
func (NopLogger) Debugw(string, map[string]any) {}
func (NopLogger) Infof(string, ...any)          {}
func (NopLogger) Warnf(string, ...any)          {}
func (NopLogger) Errorf(string, ...any)         {}

// New returns a component-tagged logger using the settings applied by
// Configure. Before Configure runs, loggers emit JSON at info level.
func New(component string) Logger {
	return NewZerologLogger(component)
}
