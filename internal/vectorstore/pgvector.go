package vectorstore

import (
	"context"
	"encoding/json"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/m-mizutani/goerr/v2"
	"github.com/pgvector/pgvector-go"

	"github.com/josinaldojr/legal-rag/internal/rag"
)

// maxPrealloc caps the result slice sized up front from k.
const maxPrealloc = 64

// PgVector queries chunks stored in Postgres with the pgvector extension.
// Collections are rows sharing the same collection column:
//
//	CREATE TABLE legal_chunk (
//	    id          BIGSERIAL PRIMARY KEY,
//	    collection  TEXT NOT NULL,
//	    source      TEXT,
//	    chunk_index INTEGER,
//	    content     TEXT NOT NULL,
//	    metadata    JSONB,
//	    embedding   vector(384) NOT NULL
//	);
type PgVector struct {
	db         *pgxpool.Pool
	collection string
}

func NewPgVector(db *pgxpool.Pool, collection string) *PgVector {
	if collection == "" {
		collection = DefaultCollection
	}
	return &PgVector{db: db, collection: collection}
}

// Query runs a cosine-distance nearest neighbour search within the collection.
func (r *PgVector) Query(ctx context.Context, embedding []float32, k int) ([]rag.Passage, error) {
	if k <= 0 {
		k = rag.DefaultTopK
	}

	rows, err := r.db.Query(ctx, `
		SELECT
			c.content, c.source, c.chunk_index, c.metadata,
			c.embedding <=> $2 AS distance
		FROM legal_chunk c
		WHERE c.collection = $1
		ORDER BY c.embedding <=> $2
		LIMIT $3
	`, r.collection, pgvector.NewVector(embedding), k)
	if err != nil {
		return nil, rag.Mark(rag.ErrRetrievalUnavailable, err, "query similar chunks",
			goerr.V(rag.CollectionKey, r.collection), goerr.V(rag.TopKKey, k))
	}
	defer rows.Close()

	passages := make([]rag.Passage, 0, min(k, maxPrealloc))
	for rows.Next() {
		var (
			content    string
			source     *string
			chunkIndex *int32
			rawMeta    []byte
			distance   float64
		)
		if err := rows.Scan(&content, &source, &chunkIndex, &rawMeta, &distance); err != nil {
			return nil, rag.Mark(rag.ErrRetrievalUnavailable, err, "scan similar chunk")
		}

		meta := rag.Metadata{}
		if len(rawMeta) > 0 {
			if err := json.Unmarshal(rawMeta, &meta); err != nil || meta == nil {
				meta = rag.Metadata{}
			}
		}
		// dedicated columns win over values duplicated in metadata
		if source != nil {
			meta["source"] = *source
		}
		if chunkIndex != nil {
			meta["chunk_index"] = int(*chunkIndex)
		}

		passages = append(passages, newPassage(len(passages), content, meta, 1-distance))
	}
	if err := rows.Err(); err != nil {
		return nil, rag.Mark(rag.ErrRetrievalUnavailable, err, "iterate similar chunks")
	}

	return rankPassages(passages, k), nil
}

var _ rag.VectorStore = (*PgVector)(nil)
