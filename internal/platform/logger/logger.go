package logger

import (
	"log/slog"
	"os"
)

// New returns a JSON slog logger tagged with the service name so the two
// party binaries can share one log pipeline.
func New(service string) *slog.Logger {
	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})
	return slog.New(handler).With("service", service)
}
