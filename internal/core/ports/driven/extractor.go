package driven

import (
	"context"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
)

// PageExtractor turns an uploaded file into page texts.
type PageExtractor interface {
	// SupportedMIMETypes returns the MIME types this extractor handles.
	SupportedMIMETypes() []string

	// Extract returns every physical page in order. Pages without text
	// have an empty Text.
	Extract(ctx context.Context, filename string, content []byte) ([]domain.Page, error)
}

// Chunker splits extracted pages into passages.
type Chunker interface {
	// Chunk returns chunks for documentID with Index assigned across all pages.
	Chunk(documentID string, pages []domain.Page) []domain.Chunk
}
