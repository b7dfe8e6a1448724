// Package logging builds the slog loggers used across the tool.
package logging

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// ParseLevel maps a config level name to a slog level. Unknown names map to info.
func ParseLevel(name string) slog.Level {
	switch strings.ToLower(name) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	return slog.LevelInfo
}

// New returns a logger writing to w in "text" or "json" format.
func New(level, format string, w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{Level: ParseLevel(level)}
	if format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// Setup configures a logger writing to stderr and, when logFile is set,
// appending JSONL to that file too. The cleanup function closes the file.
func Setup(level, format, logFile string) (*slog.Logger, func(), error) {
	if logFile == "" {
		return New(level, format, os.Stderr), func() {}, nil
	}

	if err := os.MkdirAll(filepath.Dir(logFile), 0o755); err != nil {
		return nil, nil, err
	}

	f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, err
	}

	opts := &slog.HandlerOptions{Level: ParseLevel(level)}
	var console slog.Handler = slog.NewTextHandler(os.Stderr, opts)
	if format == "json" {
		console = slog.NewJSONHandler(os.Stderr, opts)
	}
	logger := slog.New(fanout{console, slog.NewJSONHandler(f, opts)})

	cleanup := func() {
		_ = f.Close()
	}

	return logger, cleanup, nil
}
