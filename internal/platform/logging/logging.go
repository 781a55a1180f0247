package logging

import (
	"log/slog"
	"os"
)

// New builds the process logger: JSON in production, text elsewhere. The
// service name rides on every record so the aggregator can tell the api
// and seed processes apart.
func New(env, service string) *slog.Logger {
	var handler slog.Handler

	switch env {
	case "prod", "production":
		handler = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level:     slog.LevelInfo,
			AddSource: true,
		})
	default:
		handler = slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
			Level:     slog.LevelDebug,
			AddSource: true,
		})
	}

	return slog.New(handler).With("service", service)
}
