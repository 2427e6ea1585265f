package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/sercha-rag/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/sercha-rag/internal/core/domain"
)

// seedDocument stores a document with the given status and one chunk per
// embedding, chunk i on page i+1.
func seedDocument(
	t *testing.T, store *memory.DocumentStore, id string, status domain.DocumentStatus, embeddings ...[]float32,
) []domain.Chunk {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, store.SaveDocument(ctx, &domain.Document{
		ID:        id,
		Filename:  id + ".pdf",
		Status:    status,
		CreatedAt: time.Now(),
	}))
	chunks := make([]domain.Chunk, len(embeddings))
	for i, e := range embeddings {
		chunks[i] = domain.Chunk{
			ID:         id + "-chunk-" + string(rune('a'+i)),
			DocumentID: id,
			Content:    "passage " + string(rune('a'+i)) + " of " + id,
			Embedding:  e,
			PageNumber: i + 1,
			Index:      i,
		}
	}
	require.NoError(t, store.SaveChunks(ctx, chunks))
	return chunks
}

func testRetrieval() domain.RetrievalSettings {
	return domain.DefaultAppSettings().Retrieval
}

func newTestSearch(store *memory.DocumentStore, embedder *mockEmbedder) *SearchService {
	gw := NewEmbeddingGateway(embedder, domain.EmbeddingSettings{BatchSize: 100}, testProviderSettings())
	return NewSearchService(store, store, gw, testRetrieval())
}

func TestSearchService_Search_RanksCollection(t *testing.T) {
	store := memory.NewDocumentStore()
	seedDocument(t, store, "doc-1", domain.DocumentStatusReady, []float32{0, 1}, []float32{1, 0})
	seedDocument(t, store, "doc-2", domain.DocumentStatusReady, []float32{1, 1})
	svc := newTestSearch(store, &mockEmbedder{fallback: []float32{1, 0}})

	results, err := svc.Search(context.Background(), "question", domain.SearchOptions{})

	require.NoError(t, err)
	require.Len(t, results, 3)
	assert.Equal(t, "doc-1-chunk-b", results[0].Chunk.ID)
	assert.Equal(t, "doc-2-chunk-a", results[1].Chunk.ID)
	assert.Equal(t, "doc-1-chunk-a", results[2].Chunk.ID)
	for i := 1; i < len(results); i++ {
		assert.GreaterOrEqual(t, results[i-1].Score, results[i].Score)
	}
}

func TestSearchService_Search_FewerThanTopKNotPadded(t *testing.T) {
	store := memory.NewDocumentStore()
	seedDocument(t, store, "doc-1", domain.DocumentStatusReady, []float32{1, 0}, []float32{1, 1}, []float32{0, 1})
	svc := newTestSearch(store, &mockEmbedder{fallback: []float32{1, 0}})

	results, err := svc.Search(context.Background(), "question", domain.SearchOptions{TopK: 5, DocumentID: "doc-1"})

	require.NoError(t, err)
	assert.Len(t, results, 3)
}

func TestSearchService_Search_TopK(t *testing.T) {
	store := memory.NewDocumentStore()
	seedDocument(t, store, "doc-1", domain.DocumentStatusReady, []float32{1, 0}, []float32{1, 1}, []float32{0, 1})
	svc := newTestSearch(store, &mockEmbedder{fallback: []float32{1, 0}})

	results, err := svc.Search(context.Background(), "question", domain.SearchOptions{TopK: 2})

	require.NoError(t, err)
	assert.Len(t, results, 2)
}

func TestSearchService_Search_ScopedExcludesOtherDocuments(t *testing.T) {
	store := memory.NewDocumentStore()
	seedDocument(t, store, "doc-1", domain.DocumentStatusReady, []float32{0, 1})
	seedDocument(t, store, "doc-2", domain.DocumentStatusReady, []float32{1, 0})
	svc := newTestSearch(store, &mockEmbedder{fallback: []float32{1, 0}})

	results, err := svc.Search(context.Background(), "question", domain.SearchOptions{DocumentID: "doc-1"})

	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "doc-1", results[0].Chunk.DocumentID)
}

func TestSearchService_Search_SkipsChunksWithoutEmbedding(t *testing.T) {
	store := memory.NewDocumentStore()
	seedDocument(t, store, "doc-1", domain.DocumentStatusReady, []float32{1, 0}, nil)
	svc := newTestSearch(store, &mockEmbedder{fallback: []float32{1, 0}})

	results, err := svc.Search(context.Background(), "question", domain.SearchOptions{})

	require.NoError(t, err)
	assert.Len(t, results, 1)
}

func TestSearchService_Search_EmptyDocument(t *testing.T) {
	store := memory.NewDocumentStore()
	seedDocument(t, store, "doc-1", domain.DocumentStatusReady)
	svc := newTestSearch(store, &mockEmbedder{fallback: []float32{1, 0}})

	results, err := svc.Search(context.Background(), "question", domain.SearchOptions{DocumentID: "doc-1"})

	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestSearchService_Search_Errors(t *testing.T) {
	store := memory.NewDocumentStore()
	seedDocument(t, store, "pending", domain.DocumentStatusProcessing, []float32{1, 0})

	tests := []struct {
		name    string
		query   string
		opts    domain.SearchOptions
		wantErr error
	}{
		{"empty query", "  ", domain.SearchOptions{}, domain.ErrInvalidQuery},
		{"negative top_k", "q", domain.SearchOptions{TopK: -1}, domain.ErrInvalidQuery},
		{"top_k above max", "q", domain.SearchOptions{TopK: 51}, domain.ErrInvalidQuery},
		{"unknown document", "q", domain.SearchOptions{DocumentID: "missing"}, domain.ErrNotFound},
		{"document not ready", "q", domain.SearchOptions{DocumentID: "pending"}, domain.ErrDocumentNotReady},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			embedder := &mockEmbedder{fallback: []float32{1, 0}}
			svc := newTestSearch(store, embedder)

			_, err := svc.Search(context.Background(), tt.query, tt.opts)

			assert.ErrorIs(t, err, tt.wantErr)
			assert.Zero(t, embedder.calls.Load(), "invalid requests must not reach the provider")
		})
	}
}

func TestSearchService_Search_QuestionTooLong(t *testing.T) {
	store := memory.NewDocumentStore()
	retrieval := testRetrieval()
	retrieval.MaxQuestionLength = 5
	svc := NewSearchService(store, store, &mockEmbedder{fallback: []float32{1}}, retrieval)

	_, err := svc.Search(context.Background(), "héllo!", domain.SearchOptions{})
	assert.ErrorIs(t, err, domain.ErrInvalidQuery)

	_, err = svc.Search(context.Background(), "héllo", domain.SearchOptions{})
	assert.NoError(t, err)
}

func TestSearchService_Search_EmbeddingUnavailable(t *testing.T) {
	store := memory.NewDocumentStore()
	svc := newTestSearch(store, &mockEmbedder{failFirst: 10})

	_, err := svc.Search(context.Background(), "question", domain.SearchOptions{})

	assert.ErrorIs(t, err, domain.ErrEmbeddingUnavailable)
}

func TestResolveMinSimilarity(t *testing.T) {
	retrieval := testRetrieval()
	override := 0.8
	tooHigh := 1.5

	m, err := resolveMinSimilarity(nil, retrieval)
	require.NoError(t, err)
	assert.InDelta(t, retrieval.MinSimilarity, m, 1e-9)

	m, err = resolveMinSimilarity(&override, retrieval)
	require.NoError(t, err)
	assert.InDelta(t, 0.8, m, 1e-9)

	_, err = resolveMinSimilarity(&tooHigh, retrieval)
	assert.ErrorIs(t, err, domain.ErrInvalidQuery)
}
