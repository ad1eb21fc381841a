package embedding

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/m-mizutani/goerr/v2"
)

// DefaultOllamaModel serves all-MiniLM-L6-v2 (384 dimensions).
const DefaultOllamaModel = "all-minilm"

const (
	defaultOllamaHost = "http://localhost:11434"

	// segmentWords keeps each input inside the model's 256-token window;
	// longer texts are embedded per segment and mean-pooled.
	segmentWords = 180
)

// OllamaLoader pulls (if needed) and serves a sentence-transformer model
// from an Ollama server.
type OllamaLoader struct {
	host   string
	model  string
	client *http.Client
}

func NewOllamaLoader(host, model string) *OllamaLoader {
	host = strings.TrimRight(host, "/")
	if host == "" {
		host = defaultOllamaHost
	}
	if model == "" {
		model = DefaultOllamaModel
	}
	return &OllamaLoader{
		host:   host,
		model:  model,
		client: &http.Client{Timeout: 60 * time.Second},
	}
}

type ollamaModelRequest struct {
	Model  string `json:"model"`
	Stream bool   `json:"stream"`
}

type ollamaEmbedRequest struct {
	Model string   `json:"model"`
	Input []string `json:"input"`
}

type ollamaEmbedResponse struct {
	Embeddings [][]float32 `json:"embeddings"`
	Error      string      `json:"error"`
}

// Load makes sure the model is present on the server, pulling it once if not.
func (l *OllamaLoader) Load(ctx context.Context) (Model, error) {
	status, err := l.post(ctx, "/api/show", ollamaModelRequest{Model: l.model}, nil)
	if err != nil {
		return nil, err
	}
	if status == http.StatusNotFound {
		// pulls can take minutes; rely on ctx for the deadline
		pull := *l.client
		pull.Timeout = 0
		status, err = l.postWith(ctx, &pull, "/api/pull", ollamaModelRequest{Model: l.model}, nil)
		if err != nil {
			return nil, err
		}
	}
	if status != http.StatusOK {
		return nil, goerr.New("ollama model is not available", goerr.V("model", l.model), goerr.V("status", status))
	}
	return &ollamaModel{loader: l}, nil
}

type ollamaModel struct {
	loader *OllamaLoader
}

func (m *ollamaModel) Embed(ctx context.Context, text string) ([]float32, error) {
	segments := splitWords(text, segmentWords)

	var resp ollamaEmbedResponse
	status, err := m.loader.post(ctx, "/api/embed", ollamaEmbedRequest{Model: m.loader.model, Input: segments}, &resp)
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK {
		return nil, goerr.New("ollama embed API error", goerr.V("status", status), goerr.V("error", resp.Error))
	}
	if len(resp.Embeddings) != len(segments) {
		return nil, goerr.New("ollama returned unexpected number of embeddings",
			goerr.V("expected", len(segments)), goerr.V("got", len(resp.Embeddings)))
	}
	if len(resp.Embeddings) == 1 {
		return resp.Embeddings[0], nil
	}
	return MeanPool(resp.Embeddings), nil
}

func (l *OllamaLoader) post(ctx context.Context, path string, body, out any) (int, error) {
	return l.postWith(ctx, l.client, path, body, out)
}

func (l *OllamaLoader) postWith(ctx context.Context, client *http.Client, path string, body, out any) (int, error) {
	raw, err := json.Marshal(body)
	if err != nil {
		return 0, goerr.Wrap(err, "marshal ollama request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, l.host+path, bytes.NewReader(raw))
	if err != nil {
		return 0, goerr.Wrap(err, "create ollama request")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return 0, goerr.Wrap(err, "call ollama API", goerr.V("path", path))
	}
	defer resp.Body.Close()

	if out == nil || resp.StatusCode == http.StatusNotFound {
		_, _ = io.Copy(io.Discard, resp.Body)
		return resp.StatusCode, nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return resp.StatusCode, goerr.Wrap(err, "decode ollama response", goerr.V("path", path), goerr.V("status", resp.StatusCode))
	}
	return resp.StatusCode, nil
}

// splitWords groups whitespace-separated words into segments of at most n words.
func splitWords(text string, n int) []string {
	words := strings.Fields(text)
	if len(words) <= n {
		return []string{strings.Join(words, " ")}
	}
	segments := make([]string, 0, len(words)/n+1)
	for start := 0; start < len(words); start += n {
		end := min(start+n, len(words))
		segments = append(segments, strings.Join(words[start:end], " "))
	}
	return segments
}

var _ Loader = (*OllamaLoader)(nil)
