// Package logging holds the process-wide diagnostic sink for the parsing
// core. The core emits only two severities: Debug for high-volume structural
// trace and Warn for recoverable anomalies (fixup mismatches, malformed
// attribute lists). The default sink discards everything.
package logging

import (
	"io"
	"log/slog"
)

// L is the global logger instance. It is initialized to discard all output.
// Call SetLogger to install a real handler.
var L *slog.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))

// SetLogger installs l as the diagnostic sink. A nil l restores the
// discarding default.
func SetLogger(l *slog.Logger) {
	if l == nil {
		L = slog.New(slog.NewTextHandler(io.Discard, nil))
		return
	}
	L = l
}

// Debug logs a structural trace message with optional key-value pairs.
func Debug(msg string, args ...any) { L.Debug(msg, args...) }

// Warn logs a recoverable anomaly with optional key-value pairs.
func Warn(msg string, args ...any) { L.Warn(msg, args...) }
