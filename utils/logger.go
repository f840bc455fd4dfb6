package utils

import (
	"log/slog"
	"os"
)

// NewLogger returns a JSON logger tagged with the service and host name.
func NewLogger(service string) *slog.Logger {
	hostname, _ := os.Hostname()

	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	})

	return slog.New(handler).With(
		slog.String("service", service),
		slog.String("hostname", hostname),
	)
}
