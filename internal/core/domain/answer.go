package domain

import "time"

// RefusalMessage is the fixed reply when no passage clears the relevance gate.
const RefusalMessage = "Sorry, that information is not in the indexed documents. " +
	"Could you rephrase the question or ask something related to their content?"

// QueryOptions are the per-call overrides accepted by the answer pipeline.
// Zero values fall back to the configured retrieval settings.
type QueryOptions struct {
	// DocumentID scopes retrieval to one ready document.
	DocumentID string

	// TopK overrides the configured number of passages to retrieve.
	TopK int

	// MinSimilarity overrides the configured relevance floor when set.
	MinSimilarity *float64
}

// Citation identifies a passage that grounded an answer.
type Citation struct {
	ChunkID    string  `json:"chunk_id"`
	DocumentID string  `json:"document_id"`
	PageNumber int     `json:"page_number"`
	Score      float64 `json:"score"`
}

// Answer is the result of one pipeline run.
type Answer struct {
	// Text is the completion, or RefusalMessage when not answerable.
	Text string `json:"answer"`

	// Citations come from the gate-accepted results, in ranked order.
	Citations []Citation `json:"citations"`

	// IsAnswerable is false for refusals.
	IsAnswerable bool `json:"is_answerable"`

	// RetrievedChunksCount is the number of search results before gating.
	RetrievedChunksCount int `json:"retrieved_chunks_count"`

	// TokensUsed is the completion provider's reported usage.
	TokensUsed int `json:"tokens_used"`

	// Elapsed is the wall time of the whole pipeline.
	Elapsed time.Duration `json:"-"`
}

// ElapsedMS returns Elapsed in whole milliseconds.
func (a *Answer) ElapsedMS() int64 {
	return a.Elapsed.Milliseconds()
}

// QueryState is a step of the per-query state machine:
// received -> embedded -> searched -> gated -> {answered | refused | failed}.
type QueryState string

// Query states.
const (
	QueryStateReceived QueryState = "received"
	QueryStateEmbedded QueryState = "embedded"
	QueryStateSearched QueryState = "searched"
	QueryStateGated    QueryState = "gated"
	QueryStateAnswered QueryState = "answered"
	QueryStateRefused  QueryState = "refused"
	QueryStateFailed   QueryState = "failed"
)

// IsTerminal returns true for answered, refused and failed.
func (s QueryState) IsTerminal() bool {
	switch s {
	case QueryStateAnswered, QueryStateRefused, QueryStateFailed:
		return true
	default:
		return false
	}
}

// String returns the string representation.
func (s QueryState) String() string {
	return string(s)
}
