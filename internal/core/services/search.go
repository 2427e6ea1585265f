package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"unicode/utf8"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
	"github.com/custodia-labs/sercha-rag/internal/core/ports/driven"
	"github.com/custodia-labs/sercha-rag/internal/core/ports/driving"
	"github.com/custodia-labs/sercha-rag/internal/logger"
)

// Ensure SearchService implements the interface.
var _ driving.SearchService = (*SearchService)(nil)

// SearchService embeds queries and ranks stored passages by cosine similarity.
type SearchService struct {
	docStore  driven.DocumentStore
	index     driven.VectorIndex
	embedder  driven.EmbeddingService
	retrieval domain.RetrievalSettings
}

// NewSearchService creates a new search service.
// embedder is normally an *EmbeddingGateway so retries and timeouts apply.
func NewSearchService(
	docStore driven.DocumentStore,
	index driven.VectorIndex,
	embedder driven.EmbeddingService,
	retrieval domain.RetrievalSettings,
) *SearchService {
	return &SearchService{
		docStore:  docStore,
		index:     index,
		embedder:  embedder,
		retrieval: retrieval,
	}
}

// Search returns the passages closest to query, best first.
func (s *SearchService) Search(
	ctx context.Context, query string, opts domain.SearchOptions,
) ([]domain.SearchResult, error) {
	logger.Section("Search")

	query, err := validateQuestion(query, s.retrieval.MaxQuestionLength)
	if err != nil {
		return nil, err
	}
	opts.TopK, err = resolveTopK(opts.TopK, s.retrieval)
	if err != nil {
		return nil, err
	}
	if opts.IsScoped() {
		if _, err := s.requireReady(ctx, opts.DocumentID); err != nil {
			return nil, err
		}
	}

	vec, err := s.embed(ctx, query)
	if err != nil {
		return nil, err
	}
	return s.searchVector(ctx, vec, opts)
}

func (s *SearchService) embed(ctx context.Context, query string) ([]float32, error) {
	if s.embedder == nil {
		return nil, fmt.Errorf("%w: no provider configured", domain.ErrEmbeddingUnavailable)
	}
	defer logger.Timed("embed query")()
	return s.embedder.Embed(ctx, query)
}

// searchVector queries the index and normalises the ranking so every
// backend orders results identically.
func (s *SearchService) searchVector(
	ctx context.Context, vec []float32, opts domain.SearchOptions,
) ([]domain.SearchResult, error) {
	defer logger.Timed("vector search")()

	results, err := s.index.Search(ctx, vec, opts)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("vector search: %w", err)
	}

	ranked := domain.RankResults(results, opts.TopK)
	logger.Debug("Search returned %d results (top_k=%d, scope=%q)", len(ranked), opts.TopK, opts.DocumentID)
	for i := range ranked {
		logger.Debug("  [%d] chunk=%s page=%d score=%.4f",
			i+1, ranked[i].Chunk.ID, ranked[i].Chunk.PageNumber, ranked[i].Score)
	}
	return ranked, nil
}

// requireReady returns the document when it exists and is ready.
func (s *SearchService) requireReady(ctx context.Context, id string) (*domain.Document, error) {
	doc, err := s.docStore.GetDocument(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("document %s: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get document: %w", err)
	}
	if !doc.Status.IsReady() {
		return nil, fmt.Errorf("%w: document %s is %s", domain.ErrDocumentNotReady, id, doc.Status)
	}
	return doc, nil
}

// validateQuestion trims the question and rejects empty or oversized text.
func validateQuestion(question string, maxLength int) (string, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return "", fmt.Errorf("%w: question is empty", domain.ErrInvalidQuery)
	}
	if maxLength > 0 && utf8.RuneCountInString(question) > maxLength {
		return "", fmt.Errorf("%w: question exceeds %d characters", domain.ErrInvalidQuery, maxLength)
	}
	return question, nil
}

// resolveTopK applies the configured default and bounds.
func resolveTopK(requested int, retrieval domain.RetrievalSettings) (int, error) {
	switch {
	case requested < 0:
		return 0, fmt.Errorf("%w: top_k must not be negative", domain.ErrInvalidQuery)
	case requested == 0:
		return retrieval.TopK, nil
	case retrieval.MaxTopK > 0 && requested > retrieval.MaxTopK:
		return 0, fmt.Errorf("%w: top_k must be at most %d", domain.ErrInvalidQuery, retrieval.MaxTopK)
	default:
		return requested, nil
	}
}

// resolveMinSimilarity applies the configured floor unless overridden.
func resolveMinSimilarity(requested *float64, retrieval domain.RetrievalSettings) (float64, error) {
	if requested == nil {
		return retrieval.MinSimilarity, nil
	}
	m := *requested
	if math.IsNaN(m) || m < -1 || m > 1 {
		return 0, fmt.Errorf("%w: min_similarity must be within [-1, 1]", domain.ErrInvalidQuery)
	}
	return m, nil
}
