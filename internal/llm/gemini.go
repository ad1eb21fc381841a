package llm

import (
	"context"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"google.golang.org/genai"

	"github.com/josinaldojr/legal-rag/internal/embedding"
	"github.com/josinaldojr/legal-rag/internal/rag"
)

const (
	DefaultGeminiModel          = "gemini-2.5-flash"
	DefaultGeminiEmbeddingModel = "text-embedding-004"
)

type GeminiClient struct {
	client *genai.Client
	model  string
}

// NewGeminiClient creates a Gemini API client. model is the generation model.
func NewGeminiClient(ctx context.Context, apiKey, model string) (*GeminiClient, error) {
	if apiKey == "" {
		return nil, goerr.New("missing GEMINI_API_KEY or GOOGLE_API_KEY")
	}
	if model == "" {
		model = DefaultGeminiModel
	}

	c, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, goerr.Wrap(err, "create genai client")
	}

	return &GeminiClient{client: c, model: model}, nil
}

// Generate runs a single-shot completion of prompt.
func (g *GeminiClient) Generate(ctx context.Context, prompt string) (string, error) {
	resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(prompt), nil)
	if err != nil {
		return "", goerr.Wrap(err, "gemini generateContent error", goerr.V(rag.ModelKey, g.model))
	}
	if resp == nil {
		return "", goerr.New("empty response from gemini", goerr.V(rag.ModelKey, g.model))
	}

	txt := strings.TrimSpace(resp.Text())
	if txt == "" {
		return "", goerr.New("model returned empty text", goerr.V(rag.ModelKey, g.model))
	}
	return txt, nil
}

// EmbeddingLoader returns a loader for a Gemini embedding model truncated to
// dimension outputs.
func (g *GeminiClient) EmbeddingLoader(model string, dimension int) embedding.Loader {
	if model == "" {
		model = DefaultGeminiEmbeddingModel
	}
	return embedding.LoaderFunc(func(ctx context.Context) (embedding.Model, error) {
		return &geminiEmbedder{client: g.client, model: model, dimension: int32(dimension)}, nil
	})
}

type geminiEmbedder struct {
	client    *genai.Client
	model     string
	dimension int32
}

func (e *geminiEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	resp, err := e.client.Models.EmbedContent(
		ctx,
		e.model,
		genai.Text(text),
		&genai.EmbedContentConfig{
			TaskType:             "RETRIEVAL_QUERY",
			OutputDimensionality: genai.Ptr(e.dimension),
		},
	)
	if err != nil {
		return nil, goerr.Wrap(err, "gemini embed error", goerr.V(rag.ModelKey, e.model))
	}
	if len(resp.Embeddings) == 0 {
		return nil, goerr.New("no embeddings returned", goerr.V(rag.ModelKey, e.model))
	}

	values := resp.Embeddings[0].Values
	out := make([]float32, len(values))
	for i, v := range values {
		out[i] = float32(v)
	}
	return out, nil
}

var _ rag.Generator = (*GeminiClient)(nil)
