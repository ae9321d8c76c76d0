package logger

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

var (
	mu       sync.RWMutex
	minLevel = zerolog.InfoLevel
	console  = strings.EqualFold(os.Getenv("APP_ENV"), "dev")
)

// Configure applies the level and format from the logging configuration to
// all loggers created afterwards. Level is one of debug, info, warn, error;
// format is json or console. An empty value leaves the current setting alone.
func Configure(level, format string) error {
	mu.Lock()
	defer mu.Unlock()
	if level != "" {
		l, err := zerolog.ParseLevel(strings.ToLower(level))
		if err != nil {
			return fmt.Errorf("logger: parse level %q: %w", level, err)
		}
		minLevel = l
	}
	switch strings.ToLower(format) {
	case "":
	case "console":
		console = true
	case "json":
		console = false
	default:
		return fmt.Errorf("logger: unknown format %q", format)
	}
	return nil
}

// ZerologLogger implements Logger using rs/zerolog.
type ZerologLogger struct {
	log zerolog.Logger
}

// NewZerologLogger creates a component logger honoring the configured level
// and format. Before Configure runs, APP_ENV=dev selects console output and
// the level defaults to info.
func NewZerologLogger(component string) Logger {
	return newZerologLogger(os.Stdout, component)
}

func newZerologLogger(w io.Writer, component string) Logger {
	mu.RLock()
	lvl, useConsole := minLevel, console
	mu.RUnlock()
	if useConsole {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
	}
	z := zerolog.New(w).Level(lvl).With().Timestamp().Str("component", component).Logger()
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
