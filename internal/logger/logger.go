// Package logger provides leveled diagnostic output for finvoice.
//
// By default only errors are printed. The --verbose flag lowers the level
// to debug so the export pipeline, store watchers and scanner can be
// followed step by step on stderr.
package logger

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"
)

// Level is the minimum severity that is written.
type Level int

// Log levels, from most to least verbose.
const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

var (
	mu     sync.RWMutex
	level  = LevelError
	output io.Writer = os.Stderr
)

// SetVerbose switches between debug output and errors only.
func SetVerbose(v bool) {
	if v {
		SetLevel(LevelDebug)
		return
	}
	SetLevel(LevelError)
}

// IsVerbose returns true if debug messages are written.
func IsVerbose() bool {
	return Enabled(LevelDebug)
}

// SetLevel sets the minimum level that is written.
func SetLevel(l Level) {
	mu.Lock()
	defer mu.Unlock()
	level = l
}

// Enabled reports whether messages at l are written.
func Enabled(l Level) bool {
	mu.RLock()
	defer mu.RUnlock()
	return l >= level
}

// SetOutput sets the writer for log lines.
// Defaults to os.Stderr. Useful for testing.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	output = w
}

func logf(l Level, prefix, format string, args ...any) {
	mu.RLock()
	defer mu.RUnlock()
	if l >= level {
		fmt.Fprintf(output, prefix+format+"\n", args...)
	}
}

// Debug writes a debug message.
func Debug(format string, args ...any) {
	logf(LevelDebug, "[DEBUG] ", format, args...)
}

// Info writes an informational message.
func Info(format string, args ...any) {
	logf(LevelInfo, "[INFO] ", format, args...)
}

// Warn writes a warning.
func Warn(format string, args ...any) {
	logf(LevelWarn, "[WARN] ", format, args...)
}

// Error writes an error. Errors are written unless the level is raised above LevelError.
func Error(format string, args ...any) {
	logf(LevelError, "[ERROR] ", format, args...)
}

// Section writes a section header at debug level.
func Section(name string) {
	logf(LevelDebug, "\n=== ", "%s ===", name)
}

// Timed logs the start of a step at debug level and returns a function
// that logs its duration when called.
//
//	defer logger.Timed("rasterize")()
func Timed(step string) func() {
	start := time.Now()
	Debug("%s: started", step)
	return func() {
		Debug("%s: done in %s", step, time.Since(start).Round(time.Millisecond))
	}
}
