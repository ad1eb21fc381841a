// Package embedding owns the process-wide sentence-embedding model handle.
//
// The model is loaded lazily by the first Embed call. Callers arriving while
// the load is in flight wait for the same load; a failed load is permanent
// for the lifetime of the Service.
package embedding

import (
	"context"
	"log/slog"
	"math"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"golang.org/x/sync/semaphore"

	"github.com/josinaldojr/legal-rag/internal/logging"
	"github.com/josinaldojr/legal-rag/internal/rag"
)

// Model embeds a single text. Implementations may return an unnormalized
// vector; Service normalizes it.
type Model interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// Loader prepares a Model. It is called at most once per Service.
type Loader interface {
	Load(ctx context.Context) (Model, error)
}

// LoaderFunc adapts a function to Loader.
type LoaderFunc func(ctx context.Context) (Model, error)

func (f LoaderFunc) Load(ctx context.Context) (Model, error) { return f(ctx) }

// Status describes the lifecycle of the model handle.
type Status string

const (
	StatusIdle    Status = "idle"
	StatusLoading Status = "loading"
	StatusReady   Status = "ready"
	StatusFailed  Status = "failed"
)

const (
	defaultLoadTimeout = 5 * time.Minute
	sampleText         = "embedding dimension check"
)

// Service is the lock-guarded, lazily initialized embedding handle.
type Service struct {
	loader      Loader
	name        string
	dimension   int
	loadTimeout time.Duration
	pool        *semaphore.Weighted

	mu     sync.Mutex
	loaded chan struct{}
	model  Model
	err    error
}

// Option configures a Service.
type Option func(*Service)

// WithWorkers bounds concurrent inference calls.
func WithWorkers(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.pool = semaphore.NewWeighted(int64(n))
		}
	}
}

// WithLoadTimeout bounds the one-time model load.
func WithLoadTimeout(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.loadTimeout = d
		}
	}
}

// New creates a Service for a model named name producing vectors of the
// given dimension. Nothing is loaded until the first Embed or Warmup.
func New(loader Loader, name string, dimension int, opts ...Option) *Service {
	s := &Service{
		loader:      loader,
		name:        name,
		dimension:   dimension,
		loadTimeout: defaultLoadTimeout,
		pool:        semaphore.NewWeighted(int64(runtime.NumCPU())),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Dimension is the fixed length of every returned vector.
func (s *Service) Dimension() int { return s.dimension }

// Status reports whether the model has been loaded.
func (s *Service) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.loaded == nil {
		return StatusIdle
	}
	select {
	case <-s.loaded:
		if s.err != nil {
			return StatusFailed
		}
		return StatusReady
	default:
		return StatusLoading
	}
}

// Warmup loads the model now instead of on the first query.
func (s *Service) Warmup(ctx context.Context) error {
	_, err := s.instance(ctx)
	return err
}

// Embed returns the L2-normalized embedding of text.
func (s *Service) Embed(ctx context.Context, text string) ([]float32, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, goerr.Wrap(rag.ErrValidation, "empty text for embedding")
	}

	model, err := s.instance(ctx)
	if err != nil {
		return nil, err
	}

	if err := s.pool.Acquire(ctx, 1); err != nil {
		return nil, rag.Mark(rag.ErrEmbeddingFailed, err, "embedding worker unavailable")
	}
	defer s.pool.Release(1)

	vec, err := model.Embed(ctx, text)
	if err != nil {
		return nil, rag.Mark(rag.ErrEmbeddingFailed, err, "failed to embed text", goerr.V(rag.ModelKey, s.name))
	}
	if len(vec) != s.dimension {
		return nil, goerr.Wrap(rag.ErrEmbeddingFailed, "unexpected embedding size",
			goerr.V(rag.ModelKey, s.name),
			goerr.V(rag.DimensionKey, len(vec)),
			goerr.V("expected", s.dimension))
	}
	return Normalize(vec), nil
}

// instance returns the loaded model, starting the load if nobody has.
func (s *Service) instance(ctx context.Context) (Model, error) {
	s.mu.Lock()
	if s.loaded == nil {
		s.loaded = make(chan struct{})
		go s.load()
	}
	loaded := s.loaded
	s.mu.Unlock()

	select {
	case <-loaded:
	case <-ctx.Done():
		return nil, rag.Mark(rag.ErrEmbeddingFailed, ctx.Err(), "gave up waiting for embedding model")
	}

	// model and err are written once before loaded is closed.
	return s.model, s.err
}

func (s *Service) load() {
	ctx, cancel := context.WithTimeout(context.Background(), s.loadTimeout)
	defer cancel()

	logger := logging.Default().With(slog.String("model", s.name), slog.Int("dimension", s.dimension))
	logger.Info("loading embedding model")
	started := time.Now()

	model, err := s.loadModel(ctx)
	if err != nil {
		s.err = err
		logger.Error("embedding model failed to load", slog.Any("error", err))
	} else {
		s.model = model
		logger.Info("embedding model loaded", slog.Duration("elapsed", time.Since(started)))
	}
	close(s.loaded)
}

func (s *Service) loadModel(ctx context.Context) (Model, error) {
	model, err := s.loader.Load(ctx)
	if err != nil {
		return nil, rag.Mark(rag.ErrModelUnavailable, err, "failed to load embedding model", goerr.V(rag.ModelKey, s.name))
	}

	sample, err := model.Embed(ctx, sampleText)
	if err != nil {
		return nil, rag.Mark(rag.ErrModelUnavailable, err, "embedding model check failed", goerr.V(rag.ModelKey, s.name))
	}
	if len(sample) != s.dimension {
		return nil, goerr.Wrap(rag.ErrModelUnavailable, "embedding model dimension does not match the index",
			goerr.V(rag.ModelKey, s.name),
			goerr.V(rag.DimensionKey, len(sample)),
			goerr.V("expected", s.dimension))
	}
	return model, nil
}

// Normalize scales v to unit length in place and returns it. The zero
// vector is returned unchanged.
func Normalize(v []float32) []float32 {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	if sum == 0 {
		return v
	}
	norm := math.Sqrt(sum)
	for i, x := range v {
		v[i] = float32(float64(x) / norm)
	}
	return v
}

// MeanPool averages token vectors into one sentence vector.
func MeanPool(tokens [][]float32) []float32 {
	if len(tokens) == 0 {
		return nil
	}
	out := make([]float32, len(tokens[0]))
	for _, tok := range tokens {
		for i := range out {
			if i < len(tok) {
				out[i] += tok[i]
			}
		}
	}
	n := float32(len(tokens))
	for i := range out {
		out[i] /= n
	}
	return out
}

var _ rag.Embedder = (*Service)(nil)
