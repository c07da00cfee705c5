// Package logger writes pipeline diagnostics to stderr. Everything except
// Error is silent unless --verbose is set.
package logger

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"
)

// Level tags a log line.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	default:
		return "LOG"
	}
}

var (
	mu      sync.Mutex
	verbose bool
	output  io.Writer = os.Stderr
	now               = time.Now
)

// SetVerbose toggles everything below LevelError.
func SetVerbose(v bool) {
	mu.Lock()
	defer mu.Unlock()
	verbose = v
}

// IsVerbose reports whether verbose output is on.
func IsVerbose() bool {
	mu.Lock()
	defer mu.Unlock()
	return verbose
}

// SetOutput redirects all log lines. Tests use it to capture output.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	output = w
}

func logf(level Level, format string, args ...any) {
	mu.Lock()
	defer mu.Unlock()
	if level < LevelError && !verbose {
		return
	}
	fmt.Fprintf(output, "[%s] %s\n", level, fmt.Sprintf(format, args...))
}

func Debug(format string, args ...any) { logf(LevelDebug, format, args...) }
func Info(format string, args ...any)  { logf(LevelInfo, format, args...) }
func Warn(format string, args ...any)  { logf(LevelWarn, format, args...) }

// Error always prints. Used for per-source failures that do not stop a batch.
func Error(format string, args ...any) { logf(LevelError, format, args...) }

// Section prints a "=== name ===" header in verbose mode.
func Section(name string) {
	mu.Lock()
	defer mu.Unlock()
	if verbose {
		fmt.Fprintf(output, "\n=== %s ===\n", name)
	}
}

// Timer starts timing a pipeline stage. Calling the returned func logs the
// elapsed time at debug level:
//
//	defer logger.Timer("embed")()
func Timer(stage string) func() {
	start := now()
	return func() {
		Debug("%s took %s", stage, now().Sub(start).Round(time.Millisecond))
	}
}
