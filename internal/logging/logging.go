package logging

import (
	"log/slog"
	"os"
	"strings"
)

// Init configures the global slog logger.
// In production (ENVIRONMENT=production) it uses JSON output for log aggregation.
// Otherwise it uses the human-readable text handler.
func Init() {
	env := strings.ToLower(os.Getenv("ENVIRONMENT"))

	var handler slog.Handler
	if env == "production" {
		handler = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		})
	} else {
		handler = slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		})
	}

	slog.SetDefault(slog.New(handler))
}

// WithRequest returns a logger with request context fields attached.
// Use this for all logging within a single feed or bookmark request.
func WithRequest(requestID, wallet string) *slog.Logger {
	return slog.With(
		"request_id", requestID,
		"wallet", wallet,
	)
}

// WithSource returns a logger scoped to one event source within a request.
func WithSource(logger *slog.Logger, sourceKey string) *slog.Logger {
	return logger.With("source", sourceKey)
}
