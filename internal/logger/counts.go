package logger

import (
	"context"
	"log/slog"
	"sync/atomic"
)

// LevelCounts tallies emitted log records per severity. It replaces the
// original scheme of re-reading the log file to count levels: counters are
// incremented as records pass through the handler, so the monitor endpoint
// never touches disk.
type LevelCounts struct {
	info     atomic.Uint64
	warning  atomic.Uint64
	errors   atomic.Uint64
	critical atomic.Uint64
}

// Snapshot is a point-in-time copy of the per-level counters.
type Snapshot struct {
	Info     uint64 `json:"info_count"`
	Warning  uint64 `json:"warning_count"`
	Error    uint64 `json:"error_count"`
	Critical uint64 `json:"critical_count"`
}

// Snapshot returns the current counter values.
func (c *LevelCounts) Snapshot() Snapshot {
	return Snapshot{
		Info:     c.info.Load(),
		Warning:  c.warning.Load(),
		Error:    c.errors.Load(),
		Critical: c.critical.Load(),
	}
}

func (c *LevelCounts) add(level slog.Level) {
	switch {
	case level >= LevelCritical:
		c.critical.Add(1)
	case level >= slog.LevelError:
		c.errors.Add(1)
	case level >= slog.LevelWarn:
		c.warning.Add(1)
	case level >= slog.LevelInfo:
		c.info.Add(1)
	}
}

// countingHandler wraps a slog.Handler and counts every record it handles.
type countingHandler struct {
	inner  slog.Handler
	counts *LevelCounts
}

func (h *countingHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.inner.Enabled(ctx, level)
}

func (h *countingHandler) Handle(ctx context.Context, r slog.Record) error {
	h.counts.add(r.Level)
	return h.inner.Handle(ctx, r)
}

func (h *countingHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &countingHandler{inner: h.inner.WithAttrs(attrs), counts: h.counts}
}

func (h *countingHandler) WithGroup(name string) slog.Handler {
	return &countingHandler{inner: h.inner.WithGroup(name), counts: h.counts}
}
