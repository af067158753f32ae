package vectorDB

import (
	"context"

	"github.com/synapserag/synapse/internal/domain/commonModels"
)

// Index is the contract the pipelines hold against the backing vector store.
//
// Score contract: the collection is configured with cosine distance and every
// stored or query vector is unit length, so Search reports the similarity
// exactly as the backend computes it. No distance-to-similarity conversion is
// applied anywhere; the relevance gate and the score surfaced to callers read
// the same number. Ties share a score and come back in backend order, which
// is not deterministic.
type Index interface {
	// UpsertBatch writes the whole batch in one call; the batch is the unit
	// of failure. Items are never retried individually.
	UpsertBatch(ctx context.Context, chunks []commonModels.DocChunk, vectors [][]float32) error

	// Search returns up to topK nearest neighbors by similarity. An empty
	// index yields an empty slice, not an error.
	Search(ctx context.Context, queryVector []float32, topK int) ([]commonModels.SearchResult, error)

	// DeleteByDocId removes every chunk owned by docId and reports how many
	// were removed. Zero is not an error.
	DeleteByDocId(ctx context.Context, docId string) (uint64, error)

	// ListAll enumerates every stored payload, for client-side catalog
	// reconstruction.
	ListAll(ctx context.Context) ([]commonModels.ChunkPayload, error)

	Ping(ctx context.Context) error
}
