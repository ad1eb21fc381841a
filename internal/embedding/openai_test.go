package embedding_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/m-mizutani/gt"

	"github.com/josinaldojr/legal-rag/internal/embedding"
)

func TestOpenAILoader(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/embeddings" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		var req struct {
			Input []string `json:"input"`
			Model string   `json:"model"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		data := make([]map[string]any, len(req.Input))
		for i := range req.Input {
			data[i] = map[string]any{"object": "embedding", "index": i, "embedding": []float32{0, 2, 0}}
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{"object": "list", "model": req.Model, "data": data})
	}))
	defer srv.Close()

	svc := embedding.New(embedding.NewOpenAILoader("test-key", srv.URL+"/v1", "all-MiniLM-L6-v2"), "all-MiniLM-L6-v2", 3)
	vec, err := svc.Embed(context.Background(), "tenant eviction notice")
	gt.NoError(t, err).Required()
	gt.Value(t, vec).Equal([]float32{0, 1, 0})

	_, err = embedding.NewOpenAILoader("key", "", "").Load(context.Background())
	gt.Value(t, err).NotNil()
}
