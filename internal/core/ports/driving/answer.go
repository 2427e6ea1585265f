package driving

import (
	"context"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
)

// AnswerService answers questions from the ingested documents.
type AnswerService interface {
	// Answer runs the retrieval pipeline for one question.
	// A refusal is returned as an Answer with IsAnswerable false, not an error.
	Answer(ctx context.Context, question string, opts domain.QueryOptions) (*domain.Answer, error)
}
