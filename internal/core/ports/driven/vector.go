package driven

import (
	"context"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
)

// VectorIndex finds the stored chunks closest to a query vector.
//
// Implementations must score by cosine similarity, order by descending
// score with ties broken by ascending chunk Seq, skip chunks without an
// embedding, and honour SearchOptions: only the scoped document when
// DocumentID is set, otherwise only chunks of ready documents, and at
// most TopK results. The result is a snapshot; concurrent writes may or
// may not be visible but must never produce duplicates.
type VectorIndex interface {
	Search(ctx context.Context, query []float32, opts domain.SearchOptions) ([]domain.SearchResult, error)
}
