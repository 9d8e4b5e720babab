// Package logging builds the process logger.
package logging

import (
	"io"
	"log/slog"
	"os"

	slogmulti "github.com/samber/slog-multi"
)

// SetupLogger returns a logger writing text to stderr and, when logFile is
// set, JSON to that file. The cleanup function closes the file.
func SetupLogger(logFile string, level slog.Level) (*slog.Logger, func() error) {
	noop := func() error { return nil }
	if logFile == "" {
		return newLogger(os.Stderr, nil, level), noop
	}

	file, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		logger := newLogger(os.Stderr, nil, level)
		logger.Warn("failed to open log file, using stderr only", "error", err, "file", logFile)
		return logger, noop
	}
	return newLogger(os.Stderr, file, level), file.Close
}

// newLogger writes text to console and, unless file is nil, JSON to file.
func newLogger(console, file io.Writer, level slog.Level) *slog.Logger {
	opts := &slog.HandlerOptions{Level: level}
	text := slog.NewTextHandler(console, opts)
	if file == nil {
		return slog.New(text)
	}
	return slog.New(slogmulti.Fanout(text, slog.NewJSONHandler(file, opts)))
}
