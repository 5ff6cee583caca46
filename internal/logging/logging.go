// Package logging configures the process-wide slog logger and carries
// request-scoped loggers through context so handlers and services share the
// trace attributes attached by the HTTP middleware.
package logging

import (
	"context"
	"log/slog"
	"os"
)

type ctxKey struct{}

// Init builds the root logger and installs it as the slog default. Local
// development gets human-readable text; everything else ships JSON for the
// log pipeline.
func Init(service, level, appEnv string) *slog.Logger {
	opts := &slog.HandlerOptions{Level: parseLevel(level)}

	var h slog.Handler = slog.NewJSONHandler(os.Stdout, opts)
	if appEnv == "development" {
		h = slog.NewTextHandler(os.Stdout, opts)
	}

	logger := slog.New(h).With("service", service, "env", appEnv)
	slog.SetDefault(logger)
	return logger
}

// FromContext returns the request-scoped logger, or the process default when
// the context carries none (background workers, tests).
func FromContext(ctx context.Context) *slog.Logger {
	if l, ok := ctx.Value(ctxKey{}).(*slog.Logger); ok {
		return l
	}
	return slog.Default()
}

func WithLogger(ctx context.Context, l *slog.Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, l)
}

func parseLevel(s string) slog.Level {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelInfo
	}
	return lvl
}
