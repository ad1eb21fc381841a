package rag

import (
	"fmt"

	"github.com/m-mizutani/goerr/v2"
)

// Error kinds surfaced by the query pipeline. Adapters mark their failures
// with one of these so the HTTP boundary can pick a status code without
// knowing which backend is configured.
var (
	ErrValidation            = goerr.New("invalid request")
	ErrModelUnavailable      = goerr.New("embedding model unavailable")
	ErrEmbeddingFailed       = goerr.New("embedding failed")
	ErrRetrievalUnavailable  = goerr.New("retrieval unavailable")
	ErrGenerationUnavailable = goerr.New("generation unavailable")
)

// Context keys for error values
const (
	QueryLengthKey = "query_length"
	CollectionKey  = "collection"
	TopKKey        = "top_k"
	ModelKey       = "model"
	DimensionKey   = "dimension"
)

// Mark wraps cause so that errors.Is matches both kind and cause.
func Mark(kind, cause error, msg string, opts ...goerr.Option) error {
	if cause == nil {
		return goerr.Wrap(kind, msg, opts...)
	}
	return goerr.Wrap(fmt.Errorf("%w: %w", kind, cause), msg, opts...)
}
