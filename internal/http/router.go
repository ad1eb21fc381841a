package http

import (
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/mux"
)

func NewRouter(h *Handler, allowedOrigins []string) http.Handler {
	r := mux.NewRouter()

	r.Use(middleware.RealIP)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)

	r.HandleFunc("/health", h.Health).Methods(http.MethodGet)
	r.HandleFunc("/status", h.Status).Methods(http.MethodGet)
	r.HandleFunc("/query", h.Query).Methods(http.MethodPost)
	r.HandleFunc("/search", h.Search).Methods(http.MethodPost)
	r.HandleFunc("/related-questions", h.RelatedQuestions).Methods(http.MethodPost)

	// CORS wraps the router so preflight requests never reach method matching.
	return corsMiddleware(allowedOrigins)(r)
}
