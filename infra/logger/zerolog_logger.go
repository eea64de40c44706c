package logger

import (
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// FormatJSON and FormatConsole are the accepted output formats.
const (
	FormatJSON    = "json"
	FormatConsole = "console"
)

var (
	mu      sync.RWMutex
	level   = zerolog.InfoLevel
	console bool
)

// Configure applies the service logging settings to all loggers created
// afterwards. Level accepts the zerolog names (debug, info, warn, error);
// format selects line-oriented JSON or the human console writer.
func Configure(lvl, format string) error {
	parsed, err := zerolog.ParseLevel(strings.ToLower(lvl))
	if err != nil {
		return fmt.Errorf("parse log level %q: %w", lvl, err)
	}
	switch strings.ToLower(format) {
	case FormatJSON, FormatConsole:
	default:
		return fmt.Errorf("unknown log format %q", format)
	}
	mu.Lock()
	level = parsed
	console = strings.ToLower(format) == FormatConsole
	mu.Unlock()
	return nil
}

// ZerologLogger adapts rs/zerolog to the core Logger interface. Every line
// carries the component it was created for.
type ZerologLogger struct {
	log zerolog.Logger
}

// NewZerologLogger builds a logger for the given component with the
// currently configured level and format.
func NewZerologLogger(component string) Logger {
	mu.RLock()
	lvl, useConsole := level, console
	mu.RUnlock()

	var z zerolog.Logger
	if useConsole {
		writer := zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
		z = zerolog.New(writer)
	} else {
		z = zerolog.New(os.Stdout)
	}
	z = z.Level(lvl).With().Timestamp().Str("component", component).Logger()
	return &ZerologLogger{log: z}
}

func (l *ZerologLogger) Debugf(format string, args ...any) {
	l.log.Debug().Msgf(format, args...)
}

func (l *ZerologLogger) Debugw(msg string, fields map[string]any) {
	ev := l.log.Debug()
	for k, v := range fields {
		ev = ev.Interface(k, v)
	}
	ev.Msg(msg)
}

func (l *ZerologLogger) Infof(format string, args ...any) {
	l.log.Info().Msgf(format, args...)
}

func (l *ZerologLogger) Warnf(format string, args ...any) {
	l.log.Warn().Msgf(format, args...)
}

func (l *ZerologLogger) Errorf(format string, args ...any) {
	l.log.Error().Msgf(format, args...)
}
