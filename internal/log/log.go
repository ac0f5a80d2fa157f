// Package log builds the slog loggers used by the CLI and the TUI.
package log

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"runtime/debug"
	"time"

	"gopkg.in/natefinch/lumberjack.v2"
)

// NewConsoleLogger returns a text logger for non-interactive commands.
func NewConsoleLogger(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// NewFileLogger returns a JSON logger writing to a rotating file. The TUI
// owns the terminal, so it cannot log to stderr. The returned closer flushes
// and closes the file.
func NewFileLogger(path string, verbose bool) (*slog.Logger, io.Closer, error) {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return nil, nil, fmt.Errorf("failed to create log directory: %w", err)
		}
	}

	rotator := &lumberjack.Logger{
		Filename:   path,
		MaxSize:    10, // MB
		MaxBackups: 3,
		MaxAge:     30,
	}

	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	handler := slog.NewJSONHandler(rotator, &slog.HandlerOptions{
		Level:     level,
		AddSource: verbose,
	})
	return slog.New(handler), rotator, nil
}

// RecoverPanic logs a panic with its stack trace, runs cleanup and exits.
// Call it deferred.
func RecoverPanic(logger *slog.Logger, name string, cleanup func()) {
	r := recover()
	if r == nil {
		return
	}
	if cleanup != nil {
		cleanup()
	}
	logger.Error("panic",
		slog.String("name", name),
		slog.Any("value", r),
		slog.String("time", time.Now().Format(time.RFC3339)),
		slog.String("stack", string(debug.Stack())),
	)
	fmt.Fprintf(os.Stderr, "asksql: panic in %s: %v\n", name, r)
	os.Exit(2)
}
