package match

import (
	"log/slog"
	"os"
)

// logger is the package-wide structured logger. The engine writes to it off
// the matching hot path only: processing faults and the fills emitted by
// SlogEventPublisher.
var logger = slog.New(slog.NewJSONHandler(os.Stdout, nil))

// SetLogger replaces the package logger. Call before starting the engine;
// the logger is not swapped under a running consumer loop.
func SetLogger(l *slog.Logger) {
	logger = l
}
