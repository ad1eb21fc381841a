package http

import (
	"context"
	"errors"
	"net/http"

	"github.com/getsentry/sentry-go"
	"github.com/m-mizutani/goerr/v2"

	"github.com/josinaldojr/legal-rag/internal/logging"
	"github.com/josinaldojr/legal-rag/internal/rag"
)

type errorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// statusOf maps pipeline error kinds to HTTP status codes.
func statusOf(err error) int {
	switch {
	case errors.Is(err, rag.ErrValidation):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// reportable excludes failures caused by the client going away.
func reportable(err error) bool {
	return !errors.Is(err, context.Canceled)
}

// handleError logs err with its goerr values and writes the error body.
// Server errors are also reported to Sentry when it is configured.
func handleError(ctx context.Context, w http.ResponseWriter, err error) {
	status := statusOf(err)
	logger := logging.From(ctx)

	attrs := []any{"status", status, "error", err.Error()}
	var ge *goerr.Error
	if errors.As(err, &ge) {
		attrs = append(attrs, "values", ge.Values())
	}

	if status < http.StatusInternalServerError {
		logger.Warn("request rejected", attrs...)
		writeJSON(ctx, w, status, errorResponse{Error: err.Error()})
		return
	}

	logger.Error("request failed", attrs...)
	if reportable(err) {
		sentry.CaptureException(err)
	}

	writeJSON(ctx, w, status, errorResponse{Error: "Internal Server Error", Details: err.Error()})
}
