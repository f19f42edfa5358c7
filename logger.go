package flutterhost

import (
	"context"
	"log/slog"
	"sync/atomic"

	"github.com/gogpu/flutterhost/compositor"
	"github.com/gogpu/flutterhost/internal/embedder"
	"github.com/gogpu/flutterhost/platformview"
	"github.com/gogpu/flutterhost/runner"
	"github.com/gogpu/flutterhost/textinput"
)

// nopHandler is a slog.Handler that silently discards all log records.
// The Enabled method returns false so the caller skips message formatting
// entirely, making disabled logging effectively zero-cost.
type nopHandler struct{}

func (nopHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (nopHandler) Handle(context.Context, slog.Record) error { return nil }
func (nopHandler) WithAttrs([]slog.Attr) slog.Handler        { return nopHandler{} }
func (nopHandler) WithGroup(string) slog.Handler             { return nopHandler{} }

func newNopLogger() *slog.Logger { return slog.New(nopHandler{}) }

var loggerPtr atomic.Pointer[slog.Logger]

func init() {
	loggerPtr.Store(newNopLogger())
}

func slogger() *slog.Logger { return loggerPtr.Load() }

// SetLogger configures the logger for flutterhost and all its packages.
// By default nothing is logged. Pass nil to restore silence.
//
// Log levels used by flutterhost:
//   - [slog.LevelDebug]: per-message traces (channels, tasks, frames)
//   - [slog.LevelInfo]: lifecycle events and the engine's own log output
//   - [slog.LevelWarn]: recovered protocol errors
//   - [slog.LevelError]: failures that end the run
//
// Example:
//
//	flutterhost.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
//	    Level: slog.LevelDebug,
//	})))
func SetLogger(l *slog.Logger) {
	if l == nil {
		l = newNopLogger()
	}
	loggerPtr.Store(l)
	compositor.SetLogger(l)
	platformview.SetLogger(l)
	textinput.SetLogger(l)
	runner.SetLogger(l)
	embedder.SetLogger(l)
}

// Logger returns the current logger.
func Logger() *slog.Logger {
	return loggerPtr.Load()
}
