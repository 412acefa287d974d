// Package logger wraps log/slog behind a small interface so the pipeline and
// the orchestrator receive logging as an injected capability instead of
// reaching for ambient global state. It adds a CRITICAL level above ERROR and
// counts emitted records per level for the log-monitor endpoint.
package logger

import (
	"context"
	"io"
	"log/slog"
	"strings"
)

// Logging levels accepted by New.
const (
	LevelDebug = "debug"
	LevelInfo  = "info"
	LevelWarn  = "warn"
	LevelError = "error"
)

// Output formats accepted by New.
const (
	FormatText = "text"
	FormatJSON = "json"
)

// LevelCritical sits above slog.LevelError and renders as "CRITICAL".
const LevelCritical = slog.LevelError + 4

// Logger is the logging contract handed to the pipeline, the orchestrator,
// and the API server.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
	Critical(msg string, args ...any)

	With(args ...any) Logger
}

// New builds a Logger writing to w in the given format, plus the LevelCounts
// that tallies every record the logger emits.
func New(level, format string, w io.Writer) (Logger, *LevelCounts) {
	opts := &slog.HandlerOptions{
		Level:       parseLevel(level),
		ReplaceAttr: renameCritical,
	}

	var handler slog.Handler
	switch strings.ToLower(format) {
	case FormatJSON:
		handler = slog.NewJSONHandler(w, opts)
	default:
		handler = slog.NewTextHandler(w, opts)
	}

	counts := &LevelCounts{}
	return &slogLogger{logger: slog.New(&countingHandler{inner: handler, counts: counts})}, counts
}

// NewNop returns a logger that discards everything. Intended for tests.
func NewNop() Logger {
	return &slogLogger{logger: slog.New(slog.DiscardHandler)}
}

type slogLogger struct {
	logger *slog.Logger
}

func (l *slogLogger) Debug(msg string, args ...any) { l.logger.Debug(msg, args...) }
func (l *slogLogger) Info(msg string, args ...any)  { l.logger.Info(msg, args...) }
func (l *slogLogger) Warn(msg string, args ...any)  { l.logger.Warn(msg, args...) }
func (l *slogLogger) Error(msg string, args ...any) { l.logger.Error(msg, args...) }

func (l *slogLogger) Critical(msg string, args ...any) {
	l.logger.Log(context.Background(), LevelCritical, msg, args...)
}

func (l *slogLogger) With(args ...any) Logger {
	return &slogLogger{logger: l.logger.With(args...)}
}

// parseLevel converts a string level to slog.Level, defaulting to INFO.
func parseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case LevelDebug:
		return slog.LevelDebug
	case LevelInfo:
		return slog.LevelInfo
	case LevelWarn:
		return slog.LevelWarn
	case LevelError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// renameCritical rewrites the synthetic level above ERROR so records render
// as CRITICAL instead of ERROR+4.
func renameCritical(groups []string, a slog.Attr) slog.Attr {
	if a.Key == slog.LevelKey {
		if lvl, ok := a.Value.Any().(slog.Level); ok && lvl >= LevelCritical {
			a.Value = slog.StringValue("CRITICAL")
		}
	}
	return a
}
