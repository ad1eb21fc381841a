package llm_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/m-mizutani/gt"

	"github.com/josinaldojr/legal-rag/internal/llm"
)

func newChatServer(t *testing.T, content string, prompts *[]string) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("POST /v1/chat/completions", func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Model    string `json:"model"`
			Messages []struct {
				Role    string `json:"role"`
				Content string `json:"content"`
			} `json:"messages"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		for _, m := range req.Messages {
			*prompts = append(*prompts, m.Role+":"+m.Content)
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"id":    "chatcmpl-1",
			"model": req.Model,
			"choices": []map[string]any{
				{"index": 0, "message": map[string]any{"role": "assistant", "content": content}, "finish_reason": "stop"},
			},
		})
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestOpenAIClientGenerate(t *testing.T) {
	t.Run("sends the prompt as one user message", func(t *testing.T) {
		var prompts []string
		srv := newChatServer(t, "  Bail is a right (Source: Case A).\n", &prompts)

		client, err := llm.NewOpenAIClient("test-key", srv.URL+"/v1", "gpt-4o-mini")
		gt.NoError(t, err).Required()

		txt, err := client.Generate(context.Background(), "what is bail?")
		gt.NoError(t, err).Required()
		gt.Value(t, txt).Equal("Bail is a right (Source: Case A).")
		gt.Value(t, prompts).Equal([]string{"user:what is bail?"})
	})

	t.Run("empty completion is an error", func(t *testing.T) {
		var prompts []string
		srv := newChatServer(t, "   ", &prompts)

		client, err := llm.NewOpenAIClient("test-key", srv.URL+"/v1", "gpt-4o-mini")
		gt.NoError(t, err).Required()

		_, err = client.Generate(context.Background(), "what is bail?")
		gt.Value(t, err).NotNil()
	})

	t.Run("api error is returned", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusTooManyRequests)
			_, _ = w.Write([]byte(`{"error":{"message":"quota exceeded","type":"rate_limit"}}`))
		}))
		defer srv.Close()

		client, err := llm.NewOpenAIClient("test-key", srv.URL+"/v1", "gpt-4o-mini")
		gt.NoError(t, err).Required()

		_, err = client.Generate(context.Background(), "what is bail?")
		gt.Value(t, err).NotNil()
	})
}

func TestNewOpenAIClient(t *testing.T) {
	_, err := llm.NewOpenAIClient("", "", "gpt-4o-mini")
	gt.Value(t, err).NotNil()

	_, err = llm.NewOpenAIClient("key", "", "")
	gt.Value(t, err).NotNil()

	_, err = llm.NewOpenAIClient("", "http://localhost:8081/v1", "local-model")
	gt.NoError(t, err)
}
