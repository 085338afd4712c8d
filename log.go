package ie32vm

import (
	"io"
	"log/slog"
)

// defaultLogger is used by every component that only needs debug-level
// diagnostics (unmapped bus accesses and similar conditions that are not
// guest-visible faults). It discards output until SetLogger installs a
// real handler, so embedding this package produces no output by default.
var defaultLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

// SetLogger installs the logger used for debug-only diagnostics across
// the core (currently the unmapped-access reads and writes in MappedMemory).
// Guest-visible faults are never logged here; they go through the
// exception mechanism instead.
func SetLogger(logger *slog.Logger) {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	defaultLogger = logger
}
