package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
	"github.com/custodia-labs/sercha-rag/internal/core/ports/driven"
)

// queryLogStore implements driven.QueryLogStore.
type queryLogStore struct {
	store *Store
}

var _ driven.QueryLogStore = (*queryLogStore)(nil)

// SaveQueryLog inserts one record. Records are never updated.
func (s *queryLogStore) SaveQueryLog(ctx context.Context, log *domain.QueryLog) error {
	retrieved := log.Retrieved
	if retrieved == nil {
		retrieved = []domain.RetrievedChunk{}
	}
	retrievedJSON, err := json.Marshal(retrieved)
	if err != nil {
		return fmt.Errorf("marshalling retrieved chunks: %w", err)
	}

	var answer sql.NullString
	if log.AnswerText != nil {
		answer = sql.NullString{String: *log.AnswerText, Valid: true}
	}

	_, err = s.store.db.ExecContext(ctx, `
		INSERT INTO query_logs (id, document_id, query_text, answer_text, retrieved,
			is_answerable, outcome, error_detail, tokens_used, elapsed_ms, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, log.ID, log.DocumentID, log.QueryText, answer, string(retrievedJSON),
		log.IsAnswerable, string(log.Outcome), log.ErrorDetail, log.TokensUsed,
		log.ElapsedMS, log.CreatedAt.UTC())
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: duplicate query log %s", domain.ErrInvalidInput, log.ID)
		}
		return fmt.Errorf("saving query log: %w", err)
	}
	return nil
}

// ListQueryLogs returns records newest first.
func (s *queryLogStore) ListQueryLogs(ctx context.Context, filter domain.QueryLogFilter) ([]domain.QueryLog, error) {
	query := `
		SELECT id, document_id, query_text, answer_text, retrieved, is_answerable,
			outcome, error_detail, tokens_used, elapsed_ms, created_at
		FROM query_logs`
	var args []any
	if filter.DocumentID != "" {
		query += " WHERE document_id = ?"
		args = append(args, filter.DocumentID)
	}
	query += " ORDER BY seq DESC"
	if filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)
	}

	rows, err := s.store.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying query logs: %w", err)
	}
	defer rows.Close()

	var logs []domain.QueryLog //nolint:prealloc // size unknown from query
	for rows.Next() {
		var (
			log           domain.QueryLog
			answer        sql.NullString
			retrievedJSON string
			outcome       string
		)
		if err := rows.Scan(&log.ID, &log.DocumentID, &log.QueryText, &answer, &retrievedJSON,
			&log.IsAnswerable, &outcome, &log.ErrorDetail, &log.TokensUsed,
			&log.ElapsedMS, &log.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning query log: %w", err)
		}
		if answer.Valid {
			text := answer.String
			log.AnswerText = &text
		}
		log.Outcome = domain.QueryState(outcome)
		if err := json.Unmarshal([]byte(retrievedJSON), &log.Retrieved); err != nil {
			return nil, fmt.Errorf("unmarshalling retrieved chunks: %w", err)
		}
		logs = append(logs, log)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating query logs: %w", err)
	}
	return logs, nil
}
