package logging

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/raysh454/kanshi/internal/interfaces"
)

// Config controls the process-wide logger construction. Level accepts the
// usual zerolog names (debug, info, warn, error); unknown values fall back
// to info. Console selects human-readable output instead of JSON lines.
type Config struct {
	Level   string
	Console bool
}

// ZeroLogger implements interfaces.Logger on top of zerolog.
type ZeroLogger struct {
	zl zerolog.Logger
}

// New builds a ZeroLogger writing to w (stdout when nil).
func New(cfg Config, w io.Writer) *ZeroLogger {
	if w == nil {
		w = os.Stdout
	}
	if cfg.Console {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
	}

	level := parseLevel(cfg.Level)
	zl := zerolog.New(w).Level(level).With().Timestamp().Logger()
	return &ZeroLogger{zl: zl}
}

// NewComponent is a convenience constructor that attaches a component field.
func NewComponent(cfg Config, w io.Writer, component string) interfaces.Logger {
	return New(cfg, w).With(interfaces.Field{Key: "component", Value: component})
}

func parseLevel(s string) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "trace":
		return zerolog.TraceLevel
	case "debug":
		return zerolog.DebugLevel
	case "info", "":
		return zerolog.InfoLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

func (l *ZeroLogger) emit(ev *zerolog.Event, msg string, fields []interfaces.Field) {
	for _, f := range fields {
		ev = ev.Interface(f.Key, f.Value)
	}
	ev.Msg(msg)
}

func (l *ZeroLogger) Debug(msg string, fields ...interfaces.Field) {
	l.emit(l.zl.Debug(), msg, fields)
}

func (l *ZeroLogger) Info(msg string, fields ...interfaces.Field) {
	l.emit(l.zl.Info(), msg, fields)
}

func (l *ZeroLogger) Warn(msg string, fields ...interfaces.Field) {
	l.emit(l.zl.Warn(), msg, fields)
}

func (l *ZeroLogger) Error(msg string, fields ...interfaces.Field) {
	l.emit(l.zl.Error(), msg, fields)
}

func (l *ZeroLogger) With(fields ...interfaces.Field) interfaces.Logger {
	ctx := l.zl.With()
	for _, f := range fields {
		ctx = ctx.Interface(f.Key, f.Value)
	}
	return &ZeroLogger{zl: ctx.Logger()}
}

// Nop returns a logger that discards everything. Useful as a default when a
// caller passes a nil logger.
func Nop() interfaces.Logger {
	return &ZeroLogger{zl: zerolog.Nop()}
}
