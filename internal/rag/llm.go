package rag

import "context"

// Embedder turns query text into a fixed-dimension, L2-normalized vector.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// VectorStore returns at most k passages nearest to embedding, ordered by
// descending score. An empty result is not an error.
type VectorStore interface {
	Query(ctx context.Context, embedding []float32, k int) ([]Passage, error)
}

// Generator runs a single-shot text generation for an assembled prompt.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}
