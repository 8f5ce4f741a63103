// ABOUTME: Level-gated logging over slog: printf helpers for the CLI, structured logger for the server
// ABOUTME: Writes to stderr by default so output never mixes with the chat TUI or ask results

package log

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync/atomic"
)

// Level constants matching slog levels.
const (
	LevelDebug = slog.LevelDebug
	LevelInfo  = slog.LevelInfo
	LevelWarn  = slog.LevelWarn
	LevelError = slog.LevelError
)

var (
	level  slog.LevelVar
	logger atomic.Pointer[slog.Logger]
)

func init() {
	level.Set(LevelInfo)
	logger.Store(slog.New(newHandler(os.Stderr, "text")))
}

func newHandler(w io.Writer, format string) slog.Handler {
	opts := &slog.HandlerOptions{Level: &level}
	if format == "json" {
		return slog.NewJSONHandler(w, opts)
	}
	return slog.NewTextHandler(w, opts)
}

// Configure points logging at w with the given format ("text" or "json")
// and level name. Unknown level names leave the level unchanged.
func Configure(w io.Writer, format, levelName string) error {
	switch format {
	case "", "text", "json":
	default:
		return fmt.Errorf("unknown log format %q", format)
	}
	if levelName != "" {
		l, err := ParseLevel(levelName)
		if err != nil {
			return err
		}
		SetLevel(l)
	}
	logger.Store(slog.New(newHandler(w, format)))
	return nil
}

// ParseLevel maps debug/info/warn/error to a level.
func ParseLevel(name string) (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(strings.ToUpper(strings.TrimSpace(name)))); err != nil {
		return LevelInfo, fmt.Errorf("unknown log level %q", name)
	}
	return l, nil
}

// Logger returns the structured logger for key/value records.
func Logger() *slog.Logger {
	return logger.Load()
}

// SetLevel sets the global log level.
func SetLevel(l slog.Level) {
	level.Set(l)
}

// GetLevel returns the current log level.
func GetLevel() slog.Level {
	return level.Level()
}

// Debug logs a debug message if the level allows it.
func Debug(format string, args ...any) {
	logf(LevelDebug, format, args...)
}

// Info logs an info message if the level allows it.
func Info(format string, args ...any) {
	logf(LevelInfo, format, args...)
}

// Warn logs a warning message if the level allows it.
func Warn(format string, args ...any) {
	logf(LevelWarn, format, args...)
}

// Error logs an error message.
func Error(format string, args ...any) {
	logf(LevelError, format, args...)
}

func logf(l slog.Level, format string, args ...any) {
	if GetLevel() > l {
		return
	}
	Logger().Log(context.Background(), l, fmt.Sprintf(format, args...))
}
