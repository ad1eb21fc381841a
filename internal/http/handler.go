package http

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/josinaldojr/legal-rag/internal/embedding"
	"github.com/josinaldojr/legal-rag/internal/logging"
	"github.com/josinaldojr/legal-rag/internal/rag"
)

const defaultRequestTimeout = 90 * time.Second

// ModelStatus reports the embedding model lifecycle.
type ModelStatus interface {
	Status() embedding.Status
	Dimension() int
}

type Handler struct {
	ragService *rag.Service
	model      ModelStatus
	timeout    time.Duration
}

func NewHandler(ragService *rag.Service, model ModelStatus, timeout time.Duration) *Handler {
	if timeout <= 0 {
		timeout = defaultRequestTimeout
	}
	return &Handler{ragService: ragService, model: model, timeout: timeout}
}

// Health fails once the embedding model failed to load, since every query
// would fail until the process restarts.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	if h.model != nil && h.model.Status() == embedding.StatusFailed {
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte("embedding model unavailable"))
		return
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

type statusResponse struct {
	Model          embedding.Status `json:"model"`
	Dimension      int              `json:"dimension,omitempty"`
	ReadyForSearch bool             `json:"ready_for_search"`
}

func (h *Handler) Status(w http.ResponseWriter, r *http.Request) {
	resp := statusResponse{Model: embedding.StatusIdle}
	if h.model != nil {
		resp.Model = h.model.Status()
		resp.Dimension = h.model.Dimension()
	}
	resp.ReadyForSearch = resp.Model != embedding.StatusFailed
	writeJSON(r.Context(), w, http.StatusOK, resp)
}

func (h *Handler) Query(w http.ResponseWriter, r *http.Request) {
	var req rag.QueryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(r.Context(), w, http.StatusBadRequest, errorResponse{Error: "invalid json body"})
		return
	}
	if req.Text() == "" {
		writeJSON(r.Context(), w, http.StatusBadRequest, errorResponse{Error: "Prompt is required"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	resp, err := h.ragService.Query(ctx, req)
	if err != nil {
		handleError(ctx, w, err)
		return
	}

	writeJSON(ctx, w, http.StatusOK, resp)
}

func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	var req rag.SearchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(r.Context(), w, http.StatusBadRequest, errorResponse{Error: "invalid json body"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	resp, err := h.ragService.Search(ctx, req)
	if err != nil {
		handleError(ctx, w, err)
		return
	}

	writeJSON(ctx, w, http.StatusOK, resp)
}

func (h *Handler) RelatedQuestions(w http.ResponseWriter, r *http.Request) {
	var req rag.RelatedRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(r.Context(), w, http.StatusBadRequest, errorResponse{Error: "invalid json body"})
		return
	}

	writeJSON(r.Context(), w, http.StatusOK, h.ragService.Suggest(req))
}

func writeJSON(ctx context.Context, w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logging.From(ctx).Error("failed to write response", "error", err)
	}
}
