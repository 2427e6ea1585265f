package domain

import "sort"

// SearchOptions configures a similarity search.
type SearchOptions struct {
	// TopK is the maximum number of results. Zero means no limit.
	TopK int

	// DocumentID scopes the search to one document. Empty searches
	// every ready document.
	DocumentID string
}

// IsScoped returns true if the search is limited to one document.
func (o SearchOptions) IsScoped() bool {
	return o.DocumentID != ""
}

// SearchResult pairs a chunk with its similarity to the query vector.
// It lives for one query only and is never persisted on its own.
type SearchResult struct {
	// Chunk is the matched passage.
	Chunk Chunk

	// Score is the cosine similarity in [-1, 1]; higher is closer.
	Score float64
}

// RankResults returns results ordered by descending score with ties broken by
// ascending chunk Seq. Chunks without an embedding and repeated chunk IDs
// are dropped (the first, highest-ranked occurrence wins). topK <= 0 keeps
// every result. The input slice is not modified.
func RankResults(results []SearchResult, topK int) []SearchResult {
	ranked := make([]SearchResult, 0, len(results))
	for i := range results {
		if !results[i].Chunk.HasEmbedding() {
			continue
		}
		ranked = append(ranked, results[i])
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].Score != ranked[j].Score {
			return ranked[i].Score > ranked[j].Score
		}
		return ranked[i].Chunk.Seq < ranked[j].Chunk.Seq
	})

	seen := make(map[string]struct{}, len(ranked))
	out := ranked[:0]
	for i := range ranked {
		if _, dup := seen[ranked[i].Chunk.ID]; dup {
			continue
		}
		seen[ranked[i].Chunk.ID] = struct{}{}
		out = append(out, ranked[i])
		if topK > 0 && len(out) == topK {
			break
		}
	}
	return out
}

// GateDecision is the outcome of the relevance gate.
type GateDecision struct {
	// Accepted holds results scoring at or above the floor, in ranked order.
	Accepted []SearchResult

	// IsAnswerable is true iff Accepted is non-empty.
	IsAnswerable bool
}
