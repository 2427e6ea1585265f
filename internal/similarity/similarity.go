// Package similarity scores embeddings for the in-process vector indexes.
//
// Both the memory store and the SQLite vec_cosine function score through
// this package so every backend ranks identically.
package similarity

import (
	"fmt"

	"github.com/viant/vec/search"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
)

// Cosine returns the cosine similarity of a and b in [-1, 1].
// A zero-magnitude vector scores 0 against anything.
func Cosine(a, b []float32) (float64, error) {
	if len(a) != len(b) {
		return 0, fmt.Errorf("%w: %d vs %d", domain.ErrDimensionMismatch, len(a), len(b))
	}
	if len(a) == 0 {
		return 0, fmt.Errorf("%w: empty vector", domain.ErrInvalidInput)
	}
	return score(a, b), nil
}

// Scan scores every chunk against query and returns the ranked top results.
// Chunks without an embedding are skipped. A chunk whose dimensionality
// differs from the query fails the whole scan.
func Scan(query []float32, chunks []domain.Chunk, topK int) ([]domain.SearchResult, error) {
	if len(query) == 0 {
		return nil, fmt.Errorf("%w: empty query vector", domain.ErrInvalidInput)
	}

	results := make([]domain.SearchResult, 0, len(chunks))
	for i := range chunks {
		if !chunks[i].HasEmbedding() {
			continue
		}
		if len(chunks[i].Embedding) != len(query) {
			return nil, fmt.Errorf("%w: chunk %s has %d dimensions, query has %d",
				domain.ErrDimensionMismatch, chunks[i].ID, len(chunks[i].Embedding), len(query))
		}
		results = append(results, domain.SearchResult{
			Chunk: chunks[i],
			Score: score(query, chunks[i].Embedding),
		})
	}
	return domain.RankResults(results, topK), nil
}

// score expects equal lengths. CosineDistance returns 1 for a zero vector,
// which maps to a similarity of 0.
func score(a, b []float32) float64 {
	return 1 - float64(search.Float32s(a).CosineDistance(b))
}
