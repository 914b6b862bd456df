package logging

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Console styles accepted by NewWithStyle.
const (
	StylePretty  = "pretty"
	StyleCompact = "compact"
	StyleJSON    = "json"
)

// Logger wraps zerolog and hands out subsystem-scoped child loggers.
type Logger struct {
	zl zerolog.Logger
}

// New creates a root logger at the given level. A nil writer means pretty
// console output on stderr.
func New(w io.Writer, level string) *Logger {
	if w == nil {
		return NewWithStyle(os.Stderr, level, StylePretty)
	}
	return NewWithStyle(w, level, StyleJSON)
}

// NewWithStyle creates a root logger that formats lines according to style.
// Unknown styles fall back to JSON.
func NewWithStyle(w io.Writer, level, style string) *Logger {
	if w == nil {
		w = os.Stderr
	}
	switch style {
	case StylePretty:
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
	case StyleCompact:
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.Kitchen, NoColor: true, PartsExclude: []string{zerolog.CallerFieldName}}
	}
	zl := zerolog.New(w).With().Timestamp().Logger()
	zl = zl.Level(parseLevel(level))
	return &Logger{zl: zl}
}

// Nop returns a logger that discards everything.
func Nop() *Logger {
	return &Logger{zl: zerolog.Nop()}
}

// Sub returns a child logger tagged with a subsystem name.
func (l *Logger) Sub(subsystem string) *Logger {
	return &Logger{zl: l.zl.With().Str("subsystem", subsystem).Logger()}
}

// With returns a child logger carrying an extra string field.
func (l *Logger) With(key, value string) *Logger {
	return &Logger{zl: l.zl.With().Str(key, value).Logger()}
}

func (l *Logger) Trace() *zerolog.Event { return l.zl.Trace() }
func (l *Logger) Debug() *zerolog.Event { return l.zl.Debug() }
func (l *Logger) Info() *zerolog.Event  { return l.zl.Info() }
func (l *Logger) Warn() *zerolog.Event  { return l.zl.Warn() }
func (l *Logger) Error() *zerolog.Event { return l.zl.Error() }

// Zerolog returns the underlying zerolog.Logger.
func (l *Logger) Zerolog() zerolog.Logger { return l.zl }

func parseLevel(s string) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "trace":
		return zerolog.TraceLevel
	case "debug":
		return zerolog.DebugLevel
	case "info":
		return zerolog.InfoLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	case "fatal":
		return zerolog.FatalLevel
	case "silent", "off":
		return zerolog.Disabled
	default:
		return zerolog.InfoLevel
	}
}
