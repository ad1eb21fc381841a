package rag

import "strings"

const (
	// UnknownSource is used when a passage carries no source metadata.
	UnknownSource = "Unknown"

	// NoDocumentsAnswer is returned when the index has nothing for the query.
	NoDocumentsAnswer = "I couldn't find any relevant legal documents for your query."

	DefaultTopK = 2

	// DefaultMaxTopK bounds the k a search request may ask for.
	DefaultMaxTopK = 20
)

// Metadata is the free-form metadata attached to a chunk in the index.
// Values are untrusted and may be missing or of any JSON type.
type Metadata map[string]any

// Passage is one retrieved chunk, with Source and ChunkIndex already
// defaulted at the store boundary.
type Passage struct {
	Text       string   `json:"text"`
	Source     string   `json:"source"`
	ChunkIndex int      `json:"chunkIndex"`
	Score      float64  `json:"score"`
	Metadata   Metadata `json:"metadata"`
}

// CaseSummary is the per-passage view returned to clients.
type CaseSummary struct {
	Source     string   `json:"source"`
	ChunkIndex int      `json:"chunkIndex"`
	Summary    string   `json:"summary"`
	Content    string   `json:"content"`
	Metadata   Metadata `json:"metadata"`
}

// AnswerResult pairs a generated answer with the passages it was grounded on.
type AnswerResult struct {
	Text         string    `json:"text"`
	CitedSources []Passage `json:"citedSources"`
}

// QueryRequest is the payload of POST /query. Older clients send the same
// value as title or query.
type QueryRequest struct {
	Prompt string `json:"prompt"`
	Title  string `json:"title,omitempty"`
	Query  string `json:"query,omitempty"`
}

// Text returns the first non-empty of prompt, title and query, trimmed.
func (r QueryRequest) Text() string {
	for _, v := range []string{r.Prompt, r.Title, r.Query} {
		if s := strings.TrimSpace(v); s != "" {
			return s
		}
	}
	return ""
}

// QueryResponse is the outbound shape of POST /query.
type QueryResponse struct {
	Answer  string        `json:"answer"`
	Sources []Metadata    `json:"sources,omitempty"`
	Cases   []CaseSummary `json:"cases,omitempty"`
}

// SearchRequest is the payload of POST /search.
type SearchRequest struct {
	Query string `json:"query"`
	TopK  int    `json:"k,omitempty"`
}

// SearchResponse lists retrieved passages without generation.
type SearchResponse struct {
	Results []Passage `json:"results"`
}

// RelatedRequest is the payload of POST /related-questions.
type RelatedRequest struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// RelatedResponse carries suggested follow-up questions.
type RelatedResponse struct {
	Questions []string `json:"questions"`
}
