package driven

import (
	"context"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
)

// DocumentStore persists documents and their chunks.
// Deleting a document must delete its chunks.
type DocumentStore interface {
	// SaveDocument creates or replaces a document record.
	SaveDocument(ctx context.Context, doc *domain.Document) error

	// GetDocument retrieves a document by ID.
	// Returns domain.ErrNotFound if missing.
	GetDocument(ctx context.Context, id string) (*domain.Document, error)

	// ListDocuments returns all documents, newest first.
	ListDocuments(ctx context.Context) ([]domain.Document, error)

	// DeleteDocument removes a document and its chunks.
	DeleteDocument(ctx context.Context, id string) error

	// SaveChunks appends chunks. The store assigns each chunk's Seq in
	// slice order, after every previously stored chunk.
	SaveChunks(ctx context.Context, chunks []domain.Chunk) error

	// GetChunks returns a document's chunks ordered by Index.
	GetChunks(ctx context.Context, documentID string) ([]domain.Chunk, error)

	// GetChunk retrieves a single chunk by ID.
	GetChunk(ctx context.Context, id string) (*domain.Chunk, error)

	// Ping checks the store is reachable.
	Ping(ctx context.Context) error
}

// QueryLogStore appends audit records. Records are never updated or deleted.
type QueryLogStore interface {
	// SaveQueryLog inserts one record.
	SaveQueryLog(ctx context.Context, log *domain.QueryLog) error

	// ListQueryLogs returns records newest first.
	ListQueryLogs(ctx context.Context, filter domain.QueryLogFilter) ([]domain.QueryLog, error)
}
