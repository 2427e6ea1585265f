package memory

import (
	"context"
	"sync"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
	"github.com/custodia-labs/sercha-rag/internal/core/ports/driven"
)

// Ensure QueryLogStore implements the interface.
var _ driven.QueryLogStore = (*QueryLogStore)(nil)

// QueryLogStore is an append-only in-memory audit trail.
type QueryLogStore struct {
	mu   sync.RWMutex
	logs []domain.QueryLog
}

// NewQueryLogStore creates a new in-memory query log store.
func NewQueryLogStore() *QueryLogStore {
	return &QueryLogStore{}
}

// SaveQueryLog appends one record.
func (s *QueryLogStore) SaveQueryLog(_ context.Context, log *domain.QueryLog) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	record := *log
	record.Retrieved = append([]domain.RetrievedChunk(nil), log.Retrieved...)
	s.logs = append(s.logs, record)
	return nil
}

// ListQueryLogs returns records newest first.
func (s *QueryLogStore) ListQueryLogs(_ context.Context, filter domain.QueryLogFilter) ([]domain.QueryLog, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var result []domain.QueryLog
	for i := len(s.logs) - 1; i >= 0; i-- {
		if filter.DocumentID != "" && s.logs[i].DocumentID != filter.DocumentID {
			continue
		}
		result = append(result, s.logs[i])
		if filter.Limit > 0 && len(result) == filter.Limit {
			break
		}
	}
	return result, nil
}

// Len returns the number of stored records.
func (s *QueryLogStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.logs)
}
