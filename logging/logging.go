// Package logging provides real-time log output for registry activity.
// Diagnostics raised by registry operations are forwarded here by default.
// This package provides optional console output for monitoring; it is not
// a durable record of state history.
package logging

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"
)

// Level represents log severity.
type Level string

const (
	LevelDebug Level = "DEBUG"
	LevelInfo  Level = "INFO"
	LevelWarn  Level = "WARN"
	LevelError Level = "ERROR"
)

// Logger provides structured logging to stdout.
// This is for real-time monitoring only.
type Logger struct {
	mu        sync.Mutex
	output    io.Writer
	minLevel  Level
	component string
	registry  string
}

// levelPriority maps levels to numeric priority for filtering.
var levelPriority = map[Level]int{
	LevelDebug: 0,
	LevelInfo:  1,
	LevelWarn:  2,
	LevelError: 3,
}

// New creates a new Logger.
func New() *Logger {
	return &Logger{
		output:   os.Stdout,
		minLevel: LevelInfo,
	}
}

// ParseLevel converts a level string to a Level, defaulting to info.
func ParseLevel(s string) Level {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "DEBUG":
		return LevelDebug
	case "WARN", "WARNING":
		return LevelWarn
	case "ERROR":
		return LevelError
	default:
		return LevelInfo
	}
}

// WithComponent returns a new logger with the given component name.
func (l *Logger) WithComponent(component string) *Logger {
	return &Logger{
		output:    l.output,
		minLevel:  l.minLevel,
		component: component,
		registry:  l.registry,
	}
}

// WithRegistry returns a new logger tagged with a registry instance name.
func (l *Logger) WithRegistry(registry string) *Logger {
	return &Logger{
		output:    l.output,
		minLevel:  l.minLevel,
		component: l.component,
		registry:  registry,
	}
}

// SetLevel sets the minimum log level.
func (l *Logger) SetLevel(level Level) {
	l.minLevel = level
}

// SetOutput sets the output writer (default: stdout).
func (l *Logger) SetOutput(w io.Writer) {
	l.output = w
}

// Debug logs a debug message.
func (l *Logger) Debug(msg string, fields ...map[string]interface{}) {
	l.log(LevelDebug, msg, fields...)
}

// Info logs an info message.
func (l *Logger) Info(msg string, fields ...map[string]interface{}) {
	l.log(LevelInfo, msg, fields...)
}

// Warn logs a warning message.
func (l *Logger) Warn(msg string, fields ...map[string]interface{}) {
	l.log(LevelWarn, msg, fields...)
}

// Error logs an error message.
func (l *Logger) Error(msg string, fields ...map[string]interface{}) {
	l.log(LevelError, msg, fields...)
}

// formatFields formats a map of fields as key=value pairs.
func formatFields(fields map[string]interface{}) string {
	if len(fields) == 0 {
		return ""
	}
	var parts []string
	for k, v := range fields {
		parts = append(parts, fmt.Sprintf("%s=%v", k, v))
	}
	return " " + strings.Join(parts, " ")
}

// log writes a log entry in traditional format: LEVEL TIMESTAMP [component] message key=value ...
func (l *Logger) log(level Level, msg string, fields ...map[string]interface{}) {
	if levelPriority[level] < levelPriority[l.minLevel] {
		return
	}

	timestamp := time.Now().UTC().Format("2006-01-02T15:04:05.000Z")

	var fieldStr string
	if len(fields) > 0 && fields[0] != nil {
		fieldStr = formatFields(fields[0])
	}
	if l.registry != "" {
		fieldStr = fmt.Sprintf(" registry=%s%s", l.registry, fieldStr)
	}

	var line string
	if l.component != "" {
		line = fmt.Sprintf("%-5s %s [%s] %s%s\n", level, timestamp, l.component, msg, fieldStr)
	} else {
		line = fmt.Sprintf("%-5s %s %s%s\n", level, timestamp, msg, fieldStr)
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	l.output.Write([]byte(line))
}

// --- Registry event methods ---
// These are called by the registry after the corresponding mutation has been
// applied. They provide real-time console output without duplicating data.

// StateCreated logs the creation of a named state.
func (l *Logger) StateCreated(name string) {
	l.Debug("state_created", map[string]interface{}{
		"state": name,
	})
}

// StateChanged logs a committed value change.
func (l *Logger) StateChanged(name string, watchers int) {
	l.Debug("state_changed", map[string]interface{}{
		"state":    name,
		"watchers": watchers,
	})
}

// StateDeleted logs the removal of a named state.
func (l *Logger) StateDeleted(name string) {
	l.Debug("state_deleted", map[string]interface{}{
		"state": name,
	})
}

// QueueFlush logs the outcome of a deferred-queue flush.
func (l *Logger) QueueFlush(applied, skipped int, duration time.Duration) {
	l.Debug("queue_flush", map[string]interface{}{
		"applied":  applied,
		"skipped":  skipped,
		"duration": duration.String(),
	})
}

// WatcherPanic logs a recovered panic from a change callback.
func (l *Logger) WatcherPanic(name string, recovered interface{}) {
	l.Error("watcher_panic", map[string]interface{}{
		"state": name,
		"panic": fmt.Sprintf("%v", recovered),
	})
}

// Rejected logs an operation refused by a registry guard.
func (l *Logger) Rejected(op, name, reason string) {
	l.Warn("rejected", map[string]interface{}{
		"op":     op,
		"state":  name,
		"reason": reason,
	})
}
