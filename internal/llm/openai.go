package llm

import (
	"context"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	openai "github.com/sashabaranov/go-openai"

	"github.com/josinaldojr/legal-rag/internal/rag"
)

const DefaultOpenAIModel = "gpt-4o-mini"

// OpenAIClient generates answers through an OpenAI-compatible chat API.
type OpenAIClient struct {
	client *openai.Client
	model  string
}

func NewOpenAIClient(apiKey, baseURL, model string) (*OpenAIClient, error) {
	if apiKey == "" && baseURL == "" {
		return nil, goerr.New("openai provider selected but OPENAI_API_KEY not set")
	}
	if model == "" {
		return nil, goerr.New("generation model is required for the openai provider")
	}

	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	return &OpenAIClient{client: openai.NewClientWithConfig(cfg), model: model}, nil
}

func (c *OpenAIClient) Generate(ctx context.Context, prompt string) (string, error) {
	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	})
	if err != nil {
		return "", goerr.Wrap(err, "create openai chat completion", goerr.V(rag.ModelKey, c.model))
	}
	if len(resp.Choices) == 0 {
		return "", goerr.New("openai returned no choices", goerr.V(rag.ModelKey, c.model))
	}

	txt := strings.TrimSpace(resp.Choices[0].Message.Content)
	if txt == "" {
		return "", goerr.New("model returned empty text", goerr.V(rag.ModelKey, c.model))
	}
	return txt, nil
}

var _ rag.Generator = (*OpenAIClient)(nil)
