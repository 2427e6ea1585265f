package services

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
	"github.com/custodia-labs/sercha-rag/internal/core/ports/driven"
	"github.com/custodia-labs/sercha-rag/internal/core/ports/driving"
	"github.com/custodia-labs/sercha-rag/internal/logger"
)

// Ensure AnswerService implements the interface.
var _ driving.AnswerService = (*AnswerService)(nil)

// AnswerService runs the retrieval pipeline:
// received -> embedded -> searched -> gated -> {answered | refused | failed}.
//
// A query log is written once for answered, refused and completion-failed
// queries. Queries that fail before the gate (invalid input, document not
// ready, embedding or search failure) and cancelled queries write nothing.
type AnswerService struct {
	search    *SearchService
	assembler *Assembler
	queryLogs driven.QueryLogStore
	retrieval domain.RetrievalSettings
	now       func() time.Time
}

// NewAnswerService creates the pipeline. queryLogs may be nil to disable auditing.
func NewAnswerService(
	search *SearchService,
	assembler *Assembler,
	queryLogs driven.QueryLogStore,
	retrieval domain.RetrievalSettings,
) *AnswerService {
	return &AnswerService{
		search:    search,
		assembler: assembler,
		queryLogs: queryLogs,
		retrieval: retrieval,
		now:       time.Now,
	}
}

// Answer answers question from the ingested documents.
func (s *AnswerService) Answer(
	ctx context.Context, question string, opts domain.QueryOptions,
) (*domain.Answer, error) {
	start := s.now()
	logger.Section("Answer")

	question, err := validateQuestion(question, s.retrieval.MaxQuestionLength)
	if err != nil {
		return nil, err
	}
	topK, err := resolveTopK(opts.TopK, s.retrieval)
	if err != nil {
		return nil, err
	}
	minSimilarity, err := resolveMinSimilarity(opts.MinSimilarity, s.retrieval)
	if err != nil {
		return nil, err
	}
	searchOpts := domain.SearchOptions{TopK: topK, DocumentID: opts.DocumentID}
	if searchOpts.IsScoped() {
		if _, err := s.search.requireReady(ctx, searchOpts.DocumentID); err != nil {
			return nil, err
		}
	}
	logState(domain.QueryStateReceived, "question=%q top_k=%d min_similarity=%.3f", question, topK, minSimilarity)

	vec, err := s.search.embed(ctx, question)
	if err != nil {
		return nil, err
	}
	logState(domain.QueryStateEmbedded, "dimensions=%d", len(vec))

	results, err := s.search.searchVector(ctx, vec, searchOpts)
	if err != nil {
		return nil, err
	}
	logState(domain.QueryStateSearched, "results=%d", len(results))

	decision := Gate(results, minSimilarity)
	logState(domain.QueryStateGated, "accepted=%d answerable=%t", len(decision.Accepted), decision.IsAnswerable)

	record := newQueryLog(question, searchOpts.DocumentID, results, decision)

	assembly, err := s.assembler.Assemble(ctx, question, decision.Accepted)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		record.Outcome = domain.QueryStateFailed
		record.ErrorDetail = err.Error()
		record.ElapsedMS = s.now().Sub(start).Milliseconds()
		s.writeLog(ctx, record)
		logState(domain.QueryStateFailed, "%v", err)
		return nil, err
	}

	answer := &domain.Answer{
		Text:                 assembly.Text,
		Citations:            assembly.Citations,
		IsAnswerable:         decision.IsAnswerable,
		RetrievedChunksCount: len(results),
		TokensUsed:           assembly.TokensUsed,
		Elapsed:              s.now().Sub(start),
	}

	record.IsAnswerable = answer.IsAnswerable
	record.TokensUsed = answer.TokensUsed
	record.ElapsedMS = answer.ElapsedMS()
	if decision.IsAnswerable {
		text := answer.Text
		record.AnswerText = &text
		record.Outcome = domain.QueryStateAnswered
	} else {
		record.Outcome = domain.QueryStateRefused
	}
	s.writeLog(ctx, record)
	logState(record.Outcome, "elapsed=%dms tokens=%d citations=%d",
		answer.ElapsedMS(), answer.TokensUsed, len(answer.Citations))

	return answer, nil
}

// writeLog appends the audit record. The query has already completed, so
// the write is detached from caller cancellation. A failed write is
// reported but does not fail the query.
func (s *AnswerService) writeLog(ctx context.Context, record *domain.QueryLog) {
	if s.queryLogs == nil {
		return
	}
	record.CreatedAt = s.now()
	if err := s.queryLogs.SaveQueryLog(context.WithoutCancel(ctx), record); err != nil {
		logger.Error("write query log %s: %v", record.ID, err)
	}
}

func newQueryLog(
	question, documentID string, results []domain.SearchResult, decision domain.GateDecision,
) *domain.QueryLog {
	accepted := make(map[string]struct{}, len(decision.Accepted))
	for i := range decision.Accepted {
		accepted[decision.Accepted[i].Chunk.ID] = struct{}{}
	}
	retrieved := make([]domain.RetrievedChunk, 0, len(results))
	for i := range results {
		_, ok := accepted[results[i].Chunk.ID]
		retrieved = append(retrieved, domain.RetrievedChunk{
			ChunkID:  results[i].Chunk.ID,
			Score:    results[i].Score,
			Accepted: ok,
		})
	}
	return &domain.QueryLog{
		ID:         uuid.New().String(),
		DocumentID: documentID,
		QueryText:  question,
		Retrieved:  retrieved,
	}
}

func logState(state domain.QueryState, format string, args ...any) {
	logger.Debug("["+state.String()+"] "+format, args...)
}
