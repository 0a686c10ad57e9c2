// SPDX-License-Identifier: AGPL-3.0-only

// Package logging provides a small leveled logger used across the
// application. Terminal output is colorized via tint; file output uses the
// plain slog text handler so log files stay free of ANSI escapes.
package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"

	"github.com/lmittmann/tint"
)

// LogLevel represents the severity of a log message
type LogLevel int

// Log levels, in increasing severity
const (
	Debug LogLevel = iota
	Info
	Warn
	Error
	Fatal
)

// fatalLevel sits above slog.LevelError so Fatal-only loggers stay quiet
// until Fatalf is called.
const fatalLevel = slog.LevelError + 4

// Options configures a Logger
type Options struct {
	// Output is the destination writer (default: os.Stderr)
	Output io.Writer
	// Level is the minimum level that gets logged
	Level LogLevel
}

// Logger is a leveled logger with printf-style methods
type Logger struct {
	sl    *slog.Logger
	level LogLevel
}

var (
	defaultLogger   *Logger
	defaultLoggerMu sync.Mutex
)

// New creates a logger writing human-readable colorized output
func New(opts Options) *Logger {
	out := opts.Output
	if out == nil {
		out = os.Stderr
	}
	handler := tint.NewHandler(out, &tint.Options{
		Level: slogLevel(opts.Level),
	})
	return &Logger{sl: slog.New(handler), level: opts.Level}
}

// FileLogger creates a logger appending plain-text output to the given file
func FileLogger(path string, level LogLevel) (*Logger, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
	if err != nil {
		return nil, fmt.Errorf("open log file %s: %w", path, err)
	}
	handler := slog.NewTextHandler(f, &slog.HandlerOptions{
		Level: slogLevel(level),
	})
	return &Logger{sl: slog.New(handler), level: level}, nil
}

// SetDefaultLogger sets the process-wide default logger
func SetDefaultLogger(l *Logger) {
	defaultLoggerMu.Lock()
	defer defaultLoggerMu.Unlock()
	defaultLogger = l
}

// GetDefaultLogger returns the process-wide default logger, creating a
// stderr logger at Info level if none has been set.
func GetDefaultLogger() *Logger {
	defaultLoggerMu.Lock()
	defer defaultLoggerMu.Unlock()
	if defaultLogger == nil {
		defaultLogger = New(Options{Level: Info})
	}
	return defaultLogger
}

// WithField returns a logger that includes the given attribute on every message
func (l *Logger) WithField(key string, value interface{}) *Logger {
	return &Logger{sl: l.sl.With(key, value), level: l.level}
}

// Debugf logs a debug message
func (l *Logger) Debugf(format string, args ...interface{}) {
	l.logf(slog.LevelDebug, format, args...)
}

// Infof logs an informational message
func (l *Logger) Infof(format string, args ...interface{}) {
	l.logf(slog.LevelInfo, format, args...)
}

// Warnf logs a warning message
func (l *Logger) Warnf(format string, args ...interface{}) {
	l.logf(slog.LevelWarn, format, args...)
}

// Errorf logs an error message
func (l *Logger) Errorf(format string, args ...interface{}) {
	l.logf(slog.LevelError, format, args...)
}

// Fatalf logs a fatal message and exits the process
func (l *Logger) Fatalf(format string, args ...interface{}) {
	l.logf(fatalLevel, format, args...)
	os.Exit(1)
}

func (l *Logger) logf(level slog.Level, format string, args ...interface{}) {
	l.sl.Log(context.Background(), level, fmt.Sprintf(format, args...))
}

// ParseLevel converts a level name to a LogLevel, defaulting to Info
func ParseLevel(s string) LogLevel {
	switch strings.ToLower(s) {
	case "debug":
		return Debug
	case "warn", "warning":
		return Warn
	case "error":
		return Error
	case "fatal":
		return Fatal
	default:
		return Info
	}
}

func slogLevel(l LogLevel) slog.Level {
	switch l {
	case Debug:
		return slog.LevelDebug
	case Warn:
		return slog.LevelWarn
	case Error:
		return slog.LevelError
	case Fatal:
		return fatalLevel
	default:
		return slog.LevelInfo
	}
}
