// Package logging holds the process-wide slog logger and carries
// request-scoped loggers through context.
package logging

import (
	"context"
	"io"
	"log/slog"
	"os"
	"sync"

	"github.com/m-mizutani/clog"
	"github.com/m-mizutani/masq"
)

// Format selects the log handler.
type Format string

const (
	FormatConsole Format = "console"
	FormatJSON    Format = "json"
)

var (
	mu            sync.RWMutex
	defaultLogger = newFallback(os.Stderr)
)

// newFallback is the logger used until SetDefault runs, so that failures
// while parsing configuration are still reported.
func newFallback(w io.Writer) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, nil))
}

type ctxKey struct{}

// New builds a logger writing to w. Fields tagged `masq:"secret"` and the
// well-known credential field names are redacted in JSON output.
func New(w io.Writer, format Format, level slog.Level) *slog.Logger {
	switch format {
	case FormatJSON:
		return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{
			Level: level,
			ReplaceAttr: masq.New(
				masq.WithTag("secret"),
				masq.WithFieldName("APIKey"),
				masq.WithFieldName("DatabaseURL"),
				masq.WithFieldName("SentryDSN"),
			),
		}))
	default:
		return slog.New(clog.New(
			clog.WithWriter(w),
			clog.WithLevel(level),
			clog.WithColor(true),
		))
	}
}

// SetDefault replaces the process logger.
func SetDefault(logger *slog.Logger) {
	mu.Lock()
	defer mu.Unlock()
	defaultLogger = logger
}

// Default returns the process logger.
func Default() *slog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return defaultLogger
}

// With returns a copy of ctx carrying logger.
func With(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, logger)
}

// From returns the logger stored in ctx, or the process logger.
func From(ctx context.Context) *slog.Logger {
	if logger, ok := ctx.Value(ctxKey{}).(*slog.Logger); ok && logger != nil {
		return logger
	}
	return Default()
}
