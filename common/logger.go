package common

import (
	"context"
	"log/slog"
	"sync/atomic"
)

// nopHandler is a slog.Handler that discards every record. It is the default
// so the library stays silent unless the caller installs a logger.
type nopHandler struct{}

func (nopHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (nopHandler) Handle(context.Context, slog.Record) error { return nil }
func (h nopHandler) WithAttrs([]slog.Attr) slog.Handler      { return h }
func (h nopHandler) WithGroup(string) slog.Handler           { return h }

var loggerPtr atomic.Pointer[slog.Logger]

func init() {
	loggerPtr.Store(slog.New(nopHandler{}))
}

// SetLogger installs the logger used by all library packages (renderer, atlas).
// Passing nil restores the default no-op logger. Safe for concurrent use.
//
// Parameters:
//   - l: the logger to install, or nil to silence the library
func SetLogger(l *slog.Logger) {
	if l == nil {
		l = slog.New(nopHandler{})
	}
	loggerPtr.Store(l)
}

// Logger returns the currently installed library logger. The result is never
// nil; with no logger installed it discards all records.
//
// Returns:
//   - *slog.Logger: the current logger
func Logger() *slog.Logger {
	return loggerPtr.Load()
}
