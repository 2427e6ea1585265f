package driving

import (
	"context"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
)

// SearchService provides raw passage retrieval without gating or completion.
type SearchService interface {
	// Search embeds the query and returns ranked passages.
	Search(ctx context.Context, query string, opts domain.SearchOptions) ([]domain.SearchResult, error)
}
