package embedding

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	openai "github.com/sashabaranov/go-openai"
)

// OpenAILoader serves embeddings from an OpenAI-compatible endpoint, such as
// a sentence-transformers inference server exposing /v1/embeddings.
type OpenAILoader struct {
	apiKey  string
	baseURL string
	model   string
}

func NewOpenAILoader(apiKey, baseURL, model string) *OpenAILoader {
	return &OpenAILoader{apiKey: apiKey, baseURL: baseURL, model: model}
}

func (l *OpenAILoader) Load(ctx context.Context) (Model, error) {
	if l.model == "" {
		return nil, goerr.New("embedding model is required for the openai provider")
	}

	cfg := openai.DefaultConfig(l.apiKey)
	if l.baseURL != "" {
		cfg.BaseURL = l.baseURL
	}
	return &openAIModel{client: openai.NewClientWithConfig(cfg), model: l.model}, nil
}

type openAIModel struct {
	client *openai.Client
	model  string
}

func (m *openAIModel) Embed(ctx context.Context, text string) ([]float32, error) {
	segments := splitWords(text, segmentWords)

	resp, err := m.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Model: openai.EmbeddingModel(m.model),
		Input: segments,
	})
	if err != nil {
		return nil, goerr.Wrap(err, "create openai embeddings", goerr.V("model", m.model))
	}
	if len(resp.Data) != len(segments) {
		return nil, goerr.New("openai returned unexpected number of embeddings",
			goerr.V("expected", len(segments)), goerr.V("got", len(resp.Data)))
	}

	vectors := make([][]float32, len(resp.Data))
	for i, d := range resp.Data {
		vectors[i] = d.Embedding
	}
	if len(vectors) == 1 {
		return vectors[0], nil
	}
	return MeanPool(vectors), nil
}

var _ Loader = (*OpenAILoader)(nil)
