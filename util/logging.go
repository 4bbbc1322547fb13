package util

import (
	"log/slog"
	"os"
)

// Log is the package-wide logger used by the buffer pool and index
// packages for structured, leveled diagnostics (frame eviction, pool
// exhaustion, failed flushes, split/merge events). It defaults to a text handler on stderr
// so a bare `go test -v` stays readable; embedders that want JSON or a
// file sink should call SetLogger before touching the storage core.
var Log = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))

// SetLogger replaces the package-wide logger. Safe to call once at
// startup; it is not meant to be swapped concurrently with live traffic.
func SetLogger(l *slog.Logger) {
	if l != nil {
		Log = l
	}
}
