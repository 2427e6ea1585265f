package services

import (
	"context"
	"fmt"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
	"github.com/custodia-labs/sercha-rag/internal/core/ports/driven"
	"github.com/custodia-labs/sercha-rag/internal/core/ports/driving"
)

// Ensure QueryLogService implements the interface.
var _ driving.QueryLogService = (*QueryLogService)(nil)

// defaultQueryLogLimit caps listings when the caller sets no limit.
const defaultQueryLogLimit = 20

// QueryLogService reads the query audit trail.
type QueryLogService struct {
	store driven.QueryLogStore
}

// NewQueryLogService creates a new query log service.
func NewQueryLogService(store driven.QueryLogStore) *QueryLogService {
	return &QueryLogService{store: store}
}

// List returns audit records newest first.
func (s *QueryLogService) List(ctx context.Context, filter domain.QueryLogFilter) ([]domain.QueryLog, error) {
	if filter.Limit < 0 {
		return nil, fmt.Errorf("%w: limit must not be negative", domain.ErrInvalidInput)
	}
	if filter.Limit == 0 {
		filter.Limit = defaultQueryLogLimit
	}
	return s.store.ListQueryLogs(ctx, filter)
}
