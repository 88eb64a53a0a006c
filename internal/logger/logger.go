// Package logger prints diagnostic output for the token and save
// lifecycles. It stays silent unless the host application opts into
// verbose mode, so an embedding app's own logging is never polluted by
// default.
package logger

import (
	"fmt"
	"io"
	"os"
	"sync"
)

var (
	mu      sync.RWMutex
	verbose bool
	output  io.Writer = os.Stderr
)

// SetVerbose enables or disables diagnostic output.
func SetVerbose(v bool) {
	mu.Lock()
	defer mu.Unlock()
	verbose = v
}

// IsVerbose reports whether diagnostic output is enabled.
func IsVerbose() bool {
	mu.RLock()
	defer mu.RUnlock()
	return verbose
}

// SetOutput redirects diagnostic output away from os.Stderr.
// Useful for testing.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	output = w
}

// Debug logs fine-grained lifecycle tracing.
func Debug(format string, args ...any) {
	logf("DEBUG", format, args...)
}

// Info logs notable state transitions.
func Info(format string, args ...any) {
	logf("INFO", format, args...)
}

// Warn logs recoverable problems.
func Warn(format string, args ...any) {
	logf("WARN", format, args...)
}

func logf(level, format string, args ...any) {
	mu.RLock()
	defer mu.RUnlock()
	if !verbose {
		return
	}
	fmt.Fprintf(output, "["+level+"] "+format+"\n", args...)
}
