package vectorstore

import (
	"cmp"
	"encoding/json"
	"fmt"
	"math"
	"slices"
	"strconv"
	"strings"

	"github.com/josinaldojr/legal-rag/internal/rag"
)

// newPassage fills typed fields from untrusted metadata. position is the
// passage's index in the store response and doubles as the chunk index
// when metadata has none.
func newPassage(position int, text string, meta rag.Metadata, score float64) rag.Passage {
	if meta == nil {
		meta = rag.Metadata{}
	}
	return rag.Passage{
		Text:       text,
		Source:     metadataSource(meta),
		ChunkIndex: metadataChunkIndex(meta, position),
		Score:      score,
		Metadata:   meta,
	}
}

// documentText stringifies a stored document of unknown JSON type.
func documentText(doc any) string {
	switch v := doc.(type) {
	case nil:
		return ""
	case string:
		return v
	default:
		raw, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprint(v)
		}
		return string(raw)
	}
}

func metadataSource(meta rag.Metadata) string {
	v, ok := meta["source"]
	if !ok || v == nil {
		return rag.UnknownSource
	}
	s := strings.TrimSpace(documentText(v))
	if s == "" {
		return rag.UnknownSource
	}
	return s
}

func metadataChunkIndex(meta rag.Metadata, fallback int) int {
	for _, key := range []string{"chunk_index", "chunkIndex"} {
		if idx, ok := toInt(meta[key]); ok {
			return idx
		}
	}
	return fallback
}

func toInt(v any) (int, bool) {
	switch n := v.(type) {
	case float64:
		if math.IsNaN(n) || math.IsInf(n, 0) {
			return 0, false
		}
		return int(n), true
	case int:
		return n, true
	case int32:
		return int(n), true
	case int64:
		return int(n), true
	case json.Number:
		i, err := n.Int64()
		return int(i), err == nil
	case string:
		i, err := strconv.Atoi(strings.TrimSpace(n))
		return i, err == nil
	default:
		return 0, false
	}
}

// rankPassages orders passages by descending score, keeping store order for
// ties, and keeps at most k.
func rankPassages(passages []rag.Passage, k int) []rag.Passage {
	slices.SortStableFunc(passages, func(a, b rag.Passage) int {
		return cmp.Compare(b.Score, a.Score)
	})
	if k > 0 && len(passages) > k {
		passages = passages[:k]
	}
	return passages
}
