package services

import "github.com/custodia-labs/sercha-rag/internal/core/domain"

// Gate keeps the results scoring at least minSimilarity, in their ranked
// order. The collection can answer iff at least one result is kept.
func Gate(results []domain.SearchResult, minSimilarity float64) domain.GateDecision {
	accepted := make([]domain.SearchResult, 0, len(results))
	for i := range results {
		if results[i].Score >= minSimilarity {
			accepted = append(accepted, results[i])
		}
	}
	return domain.GateDecision{
		Accepted:     accepted,
		IsAnswerable: len(accepted) > 0,
	}
}
