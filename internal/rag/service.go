package rag

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	wl "github.com/abadojack/whatlanggo"
	"github.com/m-mizutani/goerr/v2"

	"github.com/josinaldojr/legal-rag/internal/logging"
)

const (
	defaultRetrievalTimeout  = 10 * time.Second
	defaultGenerationTimeout = 60 * time.Second
)

// Service runs the retrieval-augmented query pipeline.
type Service struct {
	embedder Embedder
	store    VectorStore
	answers  *AnswerGenerator

	topK              int
	maxTopK           int
	retrievalTimeout  time.Duration
	generationTimeout time.Duration
}

// Option configures a Service.
type Option func(*Service)

// WithTopK sets how many passages are retrieved per query.
func WithTopK(k int) Option {
	return func(s *Service) {
		if k > 0 {
			s.topK = k
		}
	}
}

// WithMaxTopK sets the largest k a search request may ask for.
func WithMaxTopK(k int) Option {
	return func(s *Service) {
		if k > 0 {
			s.maxTopK = k
		}
	}
}

// WithRetrievalTimeout bounds each vector store call.
func WithRetrievalTimeout(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.retrievalTimeout = d
		}
	}
}

// WithGenerationTimeout bounds each generation call.
func WithGenerationTimeout(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.generationTimeout = d
		}
	}
}

func NewService(embedder Embedder, store VectorStore, generator Generator, opts ...Option) *Service {
	s := &Service{
		embedder:          embedder,
		store:             store,
		answers:           NewAnswerGenerator(generator),
		topK:              DefaultTopK,
		maxTopK:           DefaultMaxTopK,
		retrievalTimeout:  defaultRetrievalTimeout,
		generationTimeout: defaultGenerationTimeout,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.maxTopK = max(s.maxTopK, s.topK)
	return s
}

// Query answers a question from the indexed documents.
func (s *Service) Query(ctx context.Context, req QueryRequest) (*QueryResponse, error) {
	q := req.Text()
	if q == "" {
		return nil, goerr.Wrap(ErrValidation, "Prompt is required")
	}

	logger := logging.From(ctx).With(slog.String("lang", detectLang(q)))
	logger.Info("query received", slog.Int("length", len(q)))

	passages, err := s.retrieve(ctx, q, s.topK)
	if err != nil {
		return nil, err
	}
	if len(passages) == 0 {
		logger.Info("no passages retrieved")
		return &QueryResponse{Answer: NoDocumentsAnswer}, nil
	}

	genCtx, cancel := context.WithTimeout(ctx, s.generationTimeout)
	defer cancel()

	text, err := s.answers.Generate(genCtx, q, BuildContext(passages))
	if err != nil {
		return nil, err
	}

	result := NewAnswerResult(text, passages)
	logger.Info("answer generated",
		slog.Int("passages", len(result.CitedSources)),
		slog.Int("answer_length", len(result.Text)),
	)
	return AssembleResponse(result.CitedSources, result.Text), nil
}

// Search returns the passages nearest to query without generating an answer.
func (s *Service) Search(ctx context.Context, req SearchRequest) (*SearchResponse, error) {
	q := strings.TrimSpace(req.Query)
	if q == "" {
		return nil, goerr.Wrap(ErrValidation, "Query is required")
	}

	k := req.TopK
	if k <= 0 {
		k = s.topK
	}
	if k > s.maxTopK {
		return nil, goerr.Wrap(ErrValidation, fmt.Sprintf("k must be at most %d", s.maxTopK),
			goerr.V(TopKKey, k))
	}

	passages, err := s.retrieve(ctx, q, k)
	if err != nil {
		return nil, err
	}
	if passages == nil {
		passages = []Passage{}
	}
	return &SearchResponse{Results: passages}, nil
}

// Suggest proposes follow-up questions for a question and its answer.
func (s *Service) Suggest(req RelatedRequest) *RelatedResponse {
	return &RelatedResponse{Questions: SuggestRelatedQuestions(req.Question, req.Answer)}
}

func (s *Service) retrieve(ctx context.Context, q string, k int) ([]Passage, error) {
	vec, err := s.embedder.Embed(ctx, q)
	if err != nil {
		return nil, err
	}

	retCtx, cancel := context.WithTimeout(ctx, s.retrievalTimeout)
	defer cancel()

	passages, err := s.store.Query(retCtx, vec, k)
	if err != nil {
		return nil, Mark(ErrRetrievalUnavailable, err, "failed to query vector store", goerr.V(TopKKey, k))
	}
	if len(passages) > k {
		passages = passages[:k]
	}
	return passages, nil
}

// detectLang returns the ISO 639-3 code of the query language, e.g. "eng".
func detectLang(s string) string {
	info := wl.Detect(s)
	return strings.ToLower(wl.LangToString(info.Lang))
}
