package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func result(id string, seq int64, score float64) SearchResult {
	return SearchResult{
		Chunk: Chunk{ID: id, Seq: seq, Embedding: []float32{1}},
		Score: score,
	}
}

func ids(results []SearchResult) []string {
	out := make([]string, len(results))
	for i := range results {
		out[i] = results[i].Chunk.ID
	}
	return out
}

func TestRankResults_DescendingScore(t *testing.T) {
	in := []SearchResult{
		result("low", 1, 0.1),
		result("high", 2, 0.9),
		result("mid", 3, 0.5),
	}

	ranked := RankResults(in, 0)

	assert.Equal(t, []string{"high", "mid", "low"}, ids(ranked))
}

func TestRankResults_TiesKeepInsertionOrder(t *testing.T) {
	in := []SearchResult{
		result("c", 30, 0.7),
		result("a", 10, 0.7),
		result("b", 20, 0.7),
		result("top", 40, 0.8),
	}

	ranked := RankResults(in, 0)

	assert.Equal(t, []string{"top", "a", "b", "c"}, ids(ranked))
}

func TestRankResults_TopK(t *testing.T) {
	in := []SearchResult{
		result("a", 1, 0.9),
		result("b", 2, 0.8),
		result("c", 3, 0.7),
	}

	assert.Len(t, RankResults(in, 2), 2)
	assert.Len(t, RankResults(in, 5), 3, "fewer eligible chunks than top_k must not be padded")
	assert.Len(t, RankResults(in, 0), 3)
}

func TestRankResults_DropsMissingEmbeddings(t *testing.T) {
	in := []SearchResult{
		result("a", 1, 0.9),
		{Chunk: Chunk{ID: "bare", Seq: 2}, Score: 0.95},
	}

	ranked := RankResults(in, 0)

	assert.Equal(t, []string{"a"}, ids(ranked))
}

func TestRankResults_DropsDuplicates(t *testing.T) {
	in := []SearchResult{
		result("a", 1, 0.5),
		result("a", 1, 0.9),
		result("b", 2, 0.6),
	}

	ranked := RankResults(in, 0)

	require.Len(t, ranked, 2)
	assert.Equal(t, "a", ranked[0].Chunk.ID)
	assert.InDelta(t, 0.9, ranked[0].Score, 1e-9)
	assert.Equal(t, "b", ranked[1].Chunk.ID)
}

func TestRankResults_DoesNotModifyInput(t *testing.T) {
	in := []SearchResult{
		result("low", 1, 0.1),
		result("high", 2, 0.9),
	}

	_ = RankResults(in, 1)

	assert.Equal(t, []string{"low", "high"}, ids(in))
}

func TestRankResults_Empty(t *testing.T) {
	assert.Empty(t, RankResults(nil, 5))
}

func TestSearchOptions_IsScoped(t *testing.T) {
	assert.False(t, SearchOptions{}.IsScoped())
	assert.True(t, SearchOptions{DocumentID: "doc-1"}.IsScoped())
}

func TestQueryState_IsTerminal(t *testing.T) {
	terminal := []QueryState{QueryStateAnswered, QueryStateRefused, QueryStateFailed}
	for _, s := range terminal {
		assert.True(t, s.IsTerminal(), s.String())
	}
	for _, s := range []QueryState{QueryStateReceived, QueryStateEmbedded, QueryStateSearched, QueryStateGated} {
		assert.False(t, s.IsTerminal(), s.String())
	}
}

func TestQueryLog_AcceptedChunkIDs(t *testing.T) {
	log := QueryLog{Retrieved: []RetrievedChunk{
		{ChunkID: "a", Score: 0.9, Accepted: true},
		{ChunkID: "b", Score: 0.2},
		{ChunkID: "c", Score: 0.6, Accepted: true},
	}}

	assert.Equal(t, []string{"a", "c"}, log.AcceptedChunkIDs())
}
