package cli

import (
	"context"
	"time"

	"github.com/custodia-labs/sercha-rag/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/sercha-rag/internal/core/domain"
	"github.com/custodia-labs/sercha-rag/internal/core/ports/driving"
	"github.com/custodia-labs/sercha-rag/internal/core/services"
)

var testTime = time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)

type mockAnswerService struct {
	answer   *domain.Answer
	err      error
	question string
	opts     domain.QueryOptions
}

func (m *mockAnswerService) Answer(_ context.Context, question string, opts domain.QueryOptions) (*domain.Answer, error) {
	m.question = question
	m.opts = opts
	return m.answer, m.err
}

type mockSearchService struct {
	results []domain.SearchResult
	err     error
	opts    domain.SearchOptions
}

func (m *mockSearchService) Search(_ context.Context, _ string, opts domain.SearchOptions) ([]domain.SearchResult, error) {
	m.opts = opts
	return m.results, m.err
}

type mockDocumentService struct {
	documents []domain.Document
	chunks    []domain.Chunk
	err       error
	ingested  []driving.IngestRequest
	deleted   []string
}

func (m *mockDocumentService) Ingest(_ context.Context, req driving.IngestRequest) (*domain.Document, error) {
	if m.err != nil {
		return nil, m.err
	}
	m.ingested = append(m.ingested, req)
	return &domain.Document{
		ID:         "doc-new",
		Filename:   req.Filename,
		Status:     domain.DocumentStatusReady,
		PageCount:  1,
		ChunkCount: 2,
	}, nil
}

func (m *mockDocumentService) Get(_ context.Context, id string) (*domain.Document, error) {
	if m.err != nil {
		return nil, m.err
	}
	for i := range m.documents {
		if m.documents[i].ID == id {
			return &m.documents[i], nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *mockDocumentService) List(_ context.Context) ([]domain.Document, error) {
	return m.documents, m.err
}

func (m *mockDocumentService) Chunks(_ context.Context, _ string) ([]domain.Chunk, error) {
	return m.chunks, m.err
}

func (m *mockDocumentService) Delete(_ context.Context, id string) error {
	if m.err != nil {
		return m.err
	}
	m.deleted = append(m.deleted, id)
	return nil
}

type mockQueryLogService struct {
	logs   []domain.QueryLog
	err    error
	filter domain.QueryLogFilter
}

func (m *mockQueryLogService) List(_ context.Context, filter domain.QueryLogFilter) ([]domain.QueryLog, error) {
	m.filter = filter
	return m.logs, m.err
}

type mockHealthService struct {
	report driving.HealthReport
}

func (m *mockHealthService) Check(_ context.Context) driving.HealthReport {
	return m.report
}

// setupTestServices installs canned services and returns a restore func.
func setupTestServices() func() {
	oldAnswer := answerService
	oldSearch := searchService
	oldDocument := documentService
	oldQueryLog := queryLogService
	oldSettings := settingsService
	oldHealth := healthService

	answerService = &mockAnswerService{
		answer: &domain.Answer{
			Text:         "Returns are accepted within 30 days [Page 2].",
			IsAnswerable: true,
			Citations: []domain.Citation{
				{ChunkID: "chunk-1", DocumentID: "doc-1", PageNumber: 2, Score: 0.81},
			},
			RetrievedChunksCount: 3,
			TokensUsed:           96,
			Elapsed:              420 * time.Millisecond,
		},
	}
	searchService = &mockSearchService{
		results: []domain.SearchResult{
			{
				Chunk: domain.Chunk{
					ID:         "chunk-1",
					DocumentID: "doc-1",
					PageNumber: 2,
					Content:    "Returns are accepted within 30 days of purchase.",
				},
				Score: 0.81,
			},
		},
	}
	documentService = &mockDocumentService{
		documents: []domain.Document{
			{
				ID:         "doc-1",
				Filename:   "policy.pdf",
				MIMEType:   "application/pdf",
				Size:       2048,
				Status:     domain.DocumentStatusReady,
				PageCount:  3,
				ChunkCount: 4,
				CreatedAt:  testTime,
				UpdatedAt:  testTime,
			},
		},
		chunks: []domain.Chunk{
			{ID: "chunk-1", DocumentID: "doc-1", PageNumber: 2, Index: 0, WordCount: 8,
				Content: "Returns are accepted within 30 days of purchase."},
		},
	}
	answer := "Returns are accepted within 30 days."
	queryLogService = &mockQueryLogService{
		logs: []domain.QueryLog{
			{
				ID:           "log-1",
				QueryText:    "What is the return policy?",
				AnswerText:   &answer,
				Retrieved:    []domain.RetrievedChunk{{ChunkID: "chunk-1", Score: 0.81, Accepted: true}},
				IsAnswerable: true,
				Outcome:      domain.QueryStateAnswered,
				TokensUsed:   96,
				ElapsedMS:    420,
				CreatedAt:    testTime,
			},
		},
	}
	settingsService = services.NewSettingsService(memory.NewConfigStore(), nil)
	healthService = &mockHealthService{
		report: driving.HealthReport{
			Healthy: true,
			Components: []driving.ComponentHealth{
				{Name: "store", OK: true},
				{Name: "embedding", OK: true},
				{Name: "completion", OK: true},
			},
		},
	}

	return func() {
		answerService = oldAnswer
		searchService = oldSearch
		documentService = oldDocument
		queryLogService = oldQueryLog
		settingsService = oldSettings
		healthService = oldHealth
	}
}
