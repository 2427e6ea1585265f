package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
	"github.com/custodia-labs/sercha-rag/internal/core/ports/driven"
	"github.com/custodia-labs/sercha-rag/internal/similarity"
)

// Ensure DocumentStore implements the interfaces.
var (
	_ driven.DocumentStore = (*DocumentStore)(nil)
	_ driven.VectorIndex   = (*DocumentStore)(nil)
)

// DocumentStore is an in-memory implementation of driven.DocumentStore
// and driven.VectorIndex. Chunks are kept in insertion order.
type DocumentStore struct {
	mu        sync.RWMutex
	documents map[string]domain.Document
	chunks    []domain.Chunk
	nextSeq   int64
}

// NewDocumentStore creates a new in-memory document store.
func NewDocumentStore() *DocumentStore {
	return &DocumentStore{
		documents: make(map[string]domain.Document),
		nextSeq:   1,
	}
}

// SaveDocument stores or updates a document.
func (s *DocumentStore) SaveDocument(_ context.Context, doc *domain.Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.documents[doc.ID] = *doc
	return nil
}

// GetDocument retrieves a document by ID.
func (s *DocumentStore) GetDocument(_ context.Context, id string) (*domain.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	doc, ok := s.documents[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &doc, nil
}

// ListDocuments returns all documents, newest first.
func (s *DocumentStore) ListDocuments(_ context.Context) ([]domain.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result := make([]domain.Document, 0, len(s.documents))
	for id := range s.documents {
		result = append(result, s.documents[id])
	}
	sort.SliceStable(result, func(i, j int) bool {
		if result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].ID < result[j].ID
		}
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	return result, nil
}

// DeleteDocument removes a document and its chunks.
func (s *DocumentStore) DeleteDocument(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.documents, id)
	kept := s.chunks[:0]
	for i := range s.chunks {
		if s.chunks[i].DocumentID != id {
			kept = append(kept, s.chunks[i])
		}
	}
	// Zero the tail so dropped embeddings can be collected.
	for i := len(kept); i < len(s.chunks); i++ {
		s.chunks[i] = domain.Chunk{}
	}
	s.chunks = kept
	return nil
}

// SaveChunks appends chunks, assigning each a Seq in slice order.
// A chunk whose ID is already stored is rejected.
func (s *DocumentStore) SaveChunks(_ context.Context, chunks []domain.Chunk) error {
	if len(chunks) == 0 {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	seen := make(map[string]struct{}, len(s.chunks)+len(chunks))
	for i := range s.chunks {
		seen[s.chunks[i].ID] = struct{}{}
	}
	for i := range chunks {
		if _, dup := seen[chunks[i].ID]; dup {
			return fmt.Errorf("%w: duplicate chunk %s", domain.ErrInvalidInput, chunks[i].ID)
		}
		seen[chunks[i].ID] = struct{}{}
	}

	for i := range chunks {
		c := chunks[i]
		c.Embedding = append([]float32(nil), c.Embedding...)
		c.Seq = s.nextSeq
		s.nextSeq++
		chunks[i].Seq = c.Seq
		s.chunks = append(s.chunks, c)
	}
	return nil
}

// GetChunks returns a document's chunks ordered by Index.
func (s *DocumentStore) GetChunks(_ context.Context, documentID string) ([]domain.Chunk, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var result []domain.Chunk
	for i := range s.chunks {
		if s.chunks[i].DocumentID == documentID {
			result = append(result, s.chunks[i])
		}
	}
	sort.SliceStable(result, func(i, j int) bool { return result[i].Index < result[j].Index })
	return result, nil
}

// GetChunk retrieves a specific chunk by ID.
func (s *DocumentStore) GetChunk(_ context.Context, id string) (*domain.Chunk, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for i := range s.chunks {
		if s.chunks[i].ID == id {
			c := s.chunks[i]
			return &c, nil
		}
	}
	return nil, domain.ErrNotFound
}

// Ping always succeeds.
func (s *DocumentStore) Ping(_ context.Context) error {
	return nil
}

// Search scores a snapshot of the eligible chunks. The lock is released
// before scoring so ingestion is not blocked by long scans.
func (s *DocumentStore) Search(
	ctx context.Context, query []float32, opts domain.SearchOptions,
) ([]domain.SearchResult, error) {
	candidates := s.snapshot(opts)
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return similarity.Scan(query, candidates, opts.TopK)
}

func (s *DocumentStore) snapshot(opts domain.SearchOptions) []domain.Chunk {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Chunk, 0, len(s.chunks))
	for i := range s.chunks {
		c := s.chunks[i]
		if !c.HasEmbedding() {
			continue
		}
		if opts.IsScoped() {
			if c.DocumentID != opts.DocumentID {
				continue
			}
		} else if doc, ok := s.documents[c.DocumentID]; !ok || !doc.Status.IsReady() {
			continue
		}
		out = append(out, c)
	}
	return out
}
