package config

import (
	"context"
	"net/http"

	"github.com/m-mizutani/goerr/v2"

	"github.com/josinaldojr/legal-rag/internal/db"
	"github.com/josinaldojr/legal-rag/internal/embedding"
	"github.com/josinaldojr/legal-rag/internal/llm"
	"github.com/josinaldojr/legal-rag/internal/rag"
	"github.com/josinaldojr/legal-rag/internal/vectorstore"
)

// Components are the long-lived collaborators of the query pipeline.
type Components struct {
	Embeddings *embedding.Service
	Store      rag.VectorStore
	Generator  rag.Generator
	Service    *rag.Service

	closers []func()
}

// Close releases pooled connections.
func (c *Components) Close() {
	for i := len(c.closers) - 1; i >= 0; i-- {
		c.closers[i]()
	}
}

// Configure builds the pipeline described by c. Nothing is loaded or
// queried yet except the Postgres pool, which is pinged.
func (c *Config) Configure(ctx context.Context) (*Components, error) {
	comp := &Components{}

	embeddingModel := c.ResolvedEmbeddingModel()
	generationModel := c.ResolvedGenerationModel()

	var gemini *llm.GeminiClient
	if c.EmbeddingProvider == ProviderGemini || c.GenerationProvider == ProviderGemini {
		geminiModel := llm.DefaultGeminiModel
		if c.GenerationProvider == ProviderGemini {
			geminiModel = generationModel
		}
		client, err := llm.NewGeminiClient(ctx, c.GeminiAPIKey, geminiModel)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to init Gemini client")
		}
		gemini = client
	}

	var loader embedding.Loader
	switch c.EmbeddingProvider {
	case ProviderOllama:
		loader = embedding.NewOllamaLoader(c.OllamaHost, embeddingModel)
	case ProviderOpenAI:
		loader = embedding.NewOpenAILoader(c.OpenAIAPIKey, c.OpenAIBaseURL, embeddingModel)
	case ProviderGemini:
		loader = gemini.EmbeddingLoader(embeddingModel, c.EmbeddingDimension)
	default:
		return nil, goerr.Wrap(ErrInvalidConfig, "unknown embedding provider", goerr.V("provider", c.EmbeddingProvider))
	}
	comp.Embeddings = embedding.New(loader, embeddingModel, c.EmbeddingDimension,
		embedding.WithWorkers(c.EmbedWorkers),
		embedding.WithLoadTimeout(c.EmbedLoadTimeout),
	)

	switch c.VectorBackend {
	case BackendChroma:
		comp.Store = vectorstore.NewChroma(c.ChromaURL, c.Collection,
			vectorstore.WithChromaTenant(c.ChromaTenant, c.ChromaDatabase),
			vectorstore.WithChromaHTTPClient(&http.Client{Timeout: c.ChromaTimeout}))
	case BackendPgVector:
		pool, err := db.NewPool(ctx, c.DatabaseURL)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to init pgvector backend")
		}
		comp.closers = append(comp.closers, pool.Close)
		comp.Store = vectorstore.NewPgVector(pool, c.Collection)
	default:
		return nil, goerr.Wrap(ErrInvalidConfig, "unknown vector backend", goerr.V("backend", c.VectorBackend))
	}

	switch c.GenerationProvider {
	case ProviderGemini:
		comp.Generator = gemini
	case ProviderOpenAI:
		client, err := llm.NewOpenAIClient(c.OpenAIAPIKey, c.OpenAIBaseURL, generationModel)
		if err != nil {
			comp.Close()
			return nil, goerr.Wrap(err, "failed to init OpenAI client")
		}
		comp.Generator = client
	default:
		comp.Close()
		return nil, goerr.Wrap(ErrInvalidConfig, "unknown generation provider", goerr.V("provider", c.GenerationProvider))
	}

	comp.Service = rag.NewService(comp.Embeddings, comp.Store, comp.Generator,
		rag.WithTopK(c.TopK),
		rag.WithMaxTopK(c.MaxTopK),
		rag.WithRetrievalTimeout(c.RetrievalTimeout),
		rag.WithGenerationTimeout(c.GenerationTimeout),
	)
	return comp, nil
}
