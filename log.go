// log.go - structured logging for cache/dispatcher diagnostics
//
// log/slog rather than a third-party logger: neither the teacher nor any
// other example repo's source imports one (see DESIGN.md); rcornwell-S370's
// own logger package is itself a thin wrapper over slog, which is the norm
// this core follows directly instead of re-wrapping.

package psxcore

import (
	"log/slog"
	"os"
)

// NewTextLogger returns a slog.Logger writing to os.Stderr at the given level,
// for hosts that want the cache/dispatcher's compile/flush/reset/emitter
// diagnostics without wiring their own slog.Handler.
func NewTextLogger(level slog.Level) *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// DiscardLogger returns a logger that drops everything, for tests that
// don't want compile/flush chatter on stderr.
func DiscardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(discardWriter{}, &slog.HandlerOptions{Level: slog.LevelError + 1}))
}

type discardWriter struct{}

func (discardWriter) Write(p []byte) (int, error) { return len(p), nil }
