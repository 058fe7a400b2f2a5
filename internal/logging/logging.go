// Package logging configures the structured loggers used across orbits.
//
// Every component takes a *slog.Logger. Hosts build one with [New] or
// [FromEnv]; tests and library callers that do not care pass [Nop].
package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// EnvLevel names the environment variable read by FromEnv.
const EnvLevel = "ORBITS_LOG_LEVEL"

// ParseLevel converts a level name to a slog.Level. Unknown names map to Info.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// New returns a logger writing to w. JSON output is used when json is true,
// logfmt-style text otherwise.
func New(w io.Writer, level slog.Level, json bool) *slog.Logger {
	opts := &slog.HandlerOptions{Level: level}
	if json {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// FromEnv returns a text logger on stderr at the level named by ORBITS_LOG_LEVEL.
func FromEnv() *slog.Logger {
	return New(os.Stderr, ParseLevel(os.Getenv(EnvLevel)), false)
}

// Nop returns a logger that discards everything.
func Nop() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

// OrNop returns l, or a discarding logger when l is nil.
func OrNop(l *slog.Logger) *slog.Logger {
	if l == nil {
		return Nop()
	}
	return l
}
