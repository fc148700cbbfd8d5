package log

import (
	"io"
	"log/slog"
)

// New returns a text slog.Logger writing to w. Verbose enables debug records.
// stdout carries data, so callers should pass stderr.
func New(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	h := slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})
	return slog.New(h)
}
