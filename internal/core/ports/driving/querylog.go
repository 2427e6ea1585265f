package driving

import (
	"context"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
)

// QueryLogService exposes the query audit trail.
type QueryLogService interface {
	// List returns audit records newest first.
	List(ctx context.Context, filter domain.QueryLogFilter) ([]domain.QueryLog, error)
}
