package mft

import (
	"log/slog"

	"github.com/jcarver/mftkit/internal/logging"
)

// SetLogger installs l as the diagnostic sink for the whole toolkit. The
// core emits debug-level structural trace and warnings for recoverable
// anomalies; everything is discarded until a logger is installed. Passing
// nil restores the discarding default.
func SetLogger(l *slog.Logger) { logging.SetLogger(l) }
