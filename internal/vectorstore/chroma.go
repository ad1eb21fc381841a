// Package vectorstore adapts external vector indexes to rag.VectorStore.
package vectorstore

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/m-mizutani/goerr/v2"

	"github.com/josinaldojr/legal-rag/internal/rag"
)

const (
	DefaultCollection = "legal_judgments"

	defaultChromaURL     = "http://localhost:8000"
	defaultChromaTenant  = "default_tenant"
	defaultChromaDB      = "default_database"
	defaultChromaTimeout = 30 * time.Second
	maxErrorBodyBytes    = 4096
)

var errChromaNotFound = goerr.New("chroma resource not found")

// Chroma queries a named collection of a Chroma server over its v2 REST API.
// The collection is expected to use the cosine space.
type Chroma struct {
	baseURL    string
	tenant     string
	database   string
	collection string
	client     *http.Client

	mu           sync.Mutex
	collectionID string
}

// ChromaOption configures a Chroma client.
type ChromaOption func(*Chroma)

func WithChromaTenant(tenant, database string) ChromaOption {
	return func(c *Chroma) {
		if tenant != "" {
			c.tenant = tenant
		}
		if database != "" {
			c.database = database
		}
	}
}

func WithChromaHTTPClient(client *http.Client) ChromaOption {
	return func(c *Chroma) {
		if client != nil {
			c.client = client
		}
	}
}

func NewChroma(baseURL, collection string, opts ...ChromaOption) *Chroma {
	baseURL = strings.TrimRight(baseURL, "/")
	if baseURL == "" {
		baseURL = defaultChromaURL
	}
	if collection == "" {
		collection = DefaultCollection
	}
	c := &Chroma{
		baseURL:    baseURL,
		tenant:     defaultChromaTenant,
		database:   defaultChromaDB,
		collection: collection,
		client:     &http.Client{Timeout: defaultChromaTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type chromaCollection struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type chromaQueryRequest struct {
	QueryEmbeddings [][]float32 `json:"query_embeddings"`
	NResults        int         `json:"n_results"`
	Include         []string    `json:"include"`
}

// Every field is a list per query embedding; we always send exactly one.
type chromaQueryResponse struct {
	IDs       [][]string       `json:"ids"`
	Documents [][]any          `json:"documents"`
	Metadatas [][]rag.Metadata `json:"metadatas"`
	Distances [][]*float64     `json:"distances"`
}

// Query returns the k nearest passages of the collection.
func (c *Chroma) Query(ctx context.Context, embedding []float32, k int) ([]rag.Passage, error) {
	if k <= 0 {
		k = rag.DefaultTopK
	}

	id, err := c.resolveCollection(ctx)
	if err != nil {
		return nil, err
	}

	body := chromaQueryRequest{
		QueryEmbeddings: [][]float32{embedding},
		NResults:        k,
		Include:         []string{"documents", "metadatas", "distances"},
	}

	var resp chromaQueryResponse
	err = c.do(ctx, http.MethodPost, c.collectionPath(id)+"/query", body, &resp)
	if errors.Is(err, errChromaNotFound) {
		// the collection was recreated under a new id
		c.forgetCollection(id)
		if id, err = c.resolveCollection(ctx); err != nil {
			return nil, err
		}
		err = c.do(ctx, http.MethodPost, c.collectionPath(id)+"/query", body, &resp)
	}
	if err != nil {
		return nil, rag.Mark(rag.ErrRetrievalUnavailable, err, "chroma query failed",
			goerr.V(rag.CollectionKey, c.collection), goerr.V(rag.TopKKey, k))
	}

	return chromaPassages(resp, k), nil
}

// forgetCollection drops the cached id unless another query already
// replaced it.
func (c *Chroma) forgetCollection(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.collectionID == id {
		c.collectionID = ""
	}
}

func chromaPassages(resp chromaQueryResponse, k int) []rag.Passage {
	if len(resp.Documents) == 0 {
		return []rag.Passage{}
	}

	docs := resp.Documents[0]
	passages := make([]rag.Passage, 0, len(docs))
	for i, doc := range docs {
		var meta rag.Metadata
		if len(resp.Metadatas) > 0 && i < len(resp.Metadatas[0]) {
			meta = resp.Metadatas[0][i]
		}
		score := 0.0
		if len(resp.Distances) > 0 && i < len(resp.Distances[0]) && resp.Distances[0][i] != nil {
			score = 1 - *resp.Distances[0][i]
		}
		passages = append(passages, newPassage(i, documentText(doc), meta, score))
	}
	return rankPassages(passages, k)
}

func (c *Chroma) resolveCollection(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.collectionID != "" {
		return c.collectionID, nil
	}

	var col chromaCollection
	if err := c.do(ctx, http.MethodGet, c.collectionPath(url.PathEscape(c.collection)), nil, &col); err != nil {
		return "", rag.Mark(rag.ErrRetrievalUnavailable, err, "failed to get chroma collection",
			goerr.V(rag.CollectionKey, c.collection))
	}
	if col.ID == "" {
		return "", goerr.Wrap(rag.ErrRetrievalUnavailable, "chroma collection has no id",
			goerr.V(rag.CollectionKey, c.collection))
	}

	c.collectionID = col.ID
	return c.collectionID, nil
}

func (c *Chroma) collectionPath(idOrName string) string {
	return "/api/v2/tenants/" + url.PathEscape(c.tenant) +
		"/databases/" + url.PathEscape(c.database) +
		"/collections/" + idOrName
}

func (c *Chroma) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return goerr.Wrap(err, "marshal chroma request")
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return goerr.Wrap(err, "create chroma request")
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return goerr.Wrap(err, "call chroma API", goerr.V("path", path))
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodyBytes))
		if resp.StatusCode == http.StatusNotFound {
			return goerr.Wrap(errChromaNotFound, "chroma API error",
				goerr.V("path", path),
				goerr.V("body", string(data)))
		}
		return goerr.New("chroma API error",
			goerr.V("path", path),
			goerr.V("status", resp.StatusCode),
			goerr.V("body", string(data)))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return goerr.Wrap(err, "decode chroma response", goerr.V("path", path))
	}
	return nil
}

var _ rag.VectorStore = (*Chroma)(nil)
