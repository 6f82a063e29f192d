// Package logging provides the compiler's leveled logger. No example repo
// in the corpus imports a logging library (see DESIGN.md) — this is a
// justified stdlib exception, built directly on log/slog.
package logging

import (
	"context"
	"io"
	"log/slog"
	"os"
)

// Level names accepted by New's level argument, matched exactly in lower
// case: "debug", "info", "warn", "error". Anything else falls back to "info".
func levelFromString(s string) slog.Level {
	switch s {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// New builds a text-handler logger writing to w at the given level. A
// driver or CLI command holds one of these and passes it down instead of
// reaching for the global slog.Default(), so a host embedding the compiler
// can redirect or silence compiler logs independently of its own.
func New(w io.Writer, level string) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: levelFromString(level)}))
}

// NewStderr is the common case: New(os.Stderr, level).
func NewStderr(level string) *slog.Logger {
	return New(os.Stderr, level)
}

// WithFile returns a logger tagged with the file currently being compiled,
// so every line from one compile can be grep'd out of a multi-file run.
func WithFile(logger *slog.Logger, file string) *slog.Logger {
	return logger.With("file", file)
}

// Discard is a logger that drops everything — used by tests and by
// one-shot library callers who never asked for diagnostics.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// contextKey is unexported so it can't collide with another package's key.
type contextKey struct{}

// IntoContext stashes a logger on ctx, for code too deep in the call chain
// to thread a *slog.Logger parameter through cleanly.
func IntoContext(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, contextKey{}, logger)
}

// FromContext retrieves a logger stashed by IntoContext, or Discard() if
// none was stashed.
func FromContext(ctx context.Context) *slog.Logger {
	if logger, ok := ctx.Value(contextKey{}).(*slog.Logger); ok {
		return logger
	}
	return Discard()
}
