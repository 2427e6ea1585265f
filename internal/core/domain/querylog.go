package domain

import "time"

// RetrievedChunk records one search result considered by a query.
type RetrievedChunk struct {
	ChunkID  string  `json:"chunk_id"`
	Score    float64 `json:"score"`
	Accepted bool    `json:"accepted"`
}

// QueryLog is the immutable audit record written once per completed query.
// Stores append it and never update or delete it.
type QueryLog struct {
	// ID is the unique identifier for the record.
	ID string `json:"id"`

	// DocumentID is the search scope, empty for collection-wide queries.
	DocumentID string `json:"document_id,omitempty"`

	// QueryText is the question as received (trimmed).
	QueryText string `json:"query_text"`

	// AnswerText is the completion. Nil on refusal and failure.
	AnswerText *string `json:"answer_text"`

	// Retrieved lists every search result with its gate decision.
	Retrieved []RetrievedChunk `json:"retrieved"`

	// IsAnswerable mirrors the gate decision.
	IsAnswerable bool `json:"is_answerable"`

	// Outcome is the terminal query state.
	Outcome QueryState `json:"outcome"`

	// ErrorDetail describes a failed outcome.
	ErrorDetail string `json:"error_detail,omitempty"`

	// TokensUsed is the completion provider's reported usage.
	TokensUsed int `json:"tokens_used"`

	// ElapsedMS is the pipeline wall time in milliseconds.
	ElapsedMS int64 `json:"elapsed_ms"`

	// CreatedAt is when the record was written.
	CreatedAt time.Time `json:"created_at"`
}

// AcceptedChunkIDs returns the IDs of chunks that passed the gate, in order.
func (l *QueryLog) AcceptedChunkIDs() []string {
	ids := make([]string, 0, len(l.Retrieved))
	for _, r := range l.Retrieved {
		if r.Accepted {
			ids = append(ids, r.ChunkID)
		}
	}
	return ids
}

// QueryLogFilter narrows a query log listing.
type QueryLogFilter struct {
	// DocumentID keeps only queries scoped to this document.
	DocumentID string

	// Limit caps the number of records. Zero means the store default.
	Limit int
}
