// Package logger holds the process-wide slog setup. Code acting for a player
// logs through ForPlayer so every line carries the player id.
package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"
	"sync/atomic"
)

var (
	level = new(slog.LevelVar)
	root  atomic.Pointer[slog.Logger]
)

func init() {
	root.Store(build(os.Stdout, false))
}

// Init configures the level and format of the stdout logger
func Init(lvl string, json bool) {
	InitWriter(os.Stdout, lvl, json)
}

// InitWriter is Init with a custom destination
func InitWriter(w io.Writer, lvl string, json bool) {
	level.Set(parseLevel(lvl))
	l := build(w, json)
	root.Store(l)
	slog.SetDefault(l)
}

func build(w io.Writer, json bool) *slog.Logger {
	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if json {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}
	return slog.New(handler).With("app", "clipit")
}

func parseLevel(lvl string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(lvl)) {
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

// ForPlayer returns a logger tagged with the player id
func ForPlayer(playerID string) *slog.Logger {
	return root.Load().With("player_id", playerID)
}

func Info(msg string, args ...any) {
	root.Load().Info(msg, args...)
}

func Debug(msg string, args ...any) {
	root.Load().Debug(msg, args...)
}

func Warn(msg string, args ...any) {
	root.Load().Warn(msg, args...)
}

func Error(msg string, args ...any) {
	root.Load().Error(msg, args...)
}

// Fatal logs at error level and exits
func Fatal(msg string, args ...any) {
	root.Load().Error(msg, args...)
	os.Exit(1)
}
