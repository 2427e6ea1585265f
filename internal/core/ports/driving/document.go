package driving

import (
	"context"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
)

// IngestRequest is one file to ingest.
type IngestRequest struct {
	// Filename is used to pick an extractor and shown in listings.
	Filename string

	// Content is the raw file bytes.
	Content []byte
}

// DocumentService manages ingested documents.
type DocumentService interface {
	// Ingest extracts, chunks and embeds a file. The returned document is
	// ready on success; on failure it is recorded as failed and an error is returned.
	Ingest(ctx context.Context, req IngestRequest) (*domain.Document, error)

	// Get retrieves a document by ID.
	Get(ctx context.Context, id string) (*domain.Document, error)

	// List returns all documents.
	List(ctx context.Context) ([]domain.Document, error)

	// Chunks returns a document's chunks in order.
	Chunks(ctx context.Context, id string) ([]domain.Chunk, error)

	// Delete removes a document and its chunks.
	Delete(ctx context.Context, id string) error
}
