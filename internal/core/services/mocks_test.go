package services

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
	"github.com/custodia-labs/sercha-rag/internal/core/ports/driven"
)

// --- Mock implementations ---

// mockEmbedder implements driven.EmbeddingService for testing.
// Vectors come from the vectors map, falling back to fallback.
type mockEmbedder struct {
	mu         sync.Mutex
	vectors    map[string][]float32
	fallback   []float32
	err        error
	failFirst  int
	block      bool
	calls      atomic.Int32
	batchSizes []int
}

func (m *mockEmbedder) vector(text string) []float32 {
	if v, ok := m.vectors[text]; ok {
		return v
	}
	return m.fallback
}

func (m *mockEmbedder) attempt(ctx context.Context) error {
	n := int(m.calls.Add(1))
	if m.block {
		<-ctx.Done()
		return ctx.Err()
	}
	if n <= m.failFirst {
		return errors.New("transient failure")
	}
	return m.err
}

func (m *mockEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if err := m.attempt(ctx); err != nil {
		return nil, err
	}
	return m.vector(text), nil
}

func (m *mockEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	m.mu.Lock()
	m.batchSizes = append(m.batchSizes, len(texts))
	m.mu.Unlock()
	if err := m.attempt(ctx); err != nil {
		return nil, err
	}
	out := make([][]float32, len(texts))
	for i, t := range texts {
		out[i] = m.vector(t)
	}
	return out, nil
}

func (m *mockEmbedder) Dimensions() int   { return len(m.fallback) }
func (m *mockEmbedder) ModelName() string { return "mock-embed" }
func (m *mockEmbedder) Ping(_ context.Context) error {
	return m.err
}
func (m *mockEmbedder) Close() error { return nil }

// mockCompletion implements driven.CompletionService for testing.
type mockCompletion struct {
	text     string
	tokens   int
	err      error
	block    bool
	calls    atomic.Int32
	requests []driven.CompletionRequest
	mu       sync.Mutex
}

func (m *mockCompletion) Complete(ctx context.Context, req driven.CompletionRequest) (*driven.Completion, error) {
	m.calls.Add(1)
	m.mu.Lock()
	m.requests = append(m.requests, req)
	m.mu.Unlock()
	if m.block {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	if m.err != nil {
		return nil, m.err
	}
	return &driven.Completion{Text: m.text, TokensUsed: m.tokens}, nil
}

func (m *mockCompletion) ModelName() string { return "mock-llm" }
func (m *mockCompletion) Ping(_ context.Context) error {
	return m.err
}
func (m *mockCompletion) Close() error { return nil }

// mockQueryLogStore records writes and can fail them.
type mockQueryLogStore struct {
	mu   sync.Mutex
	logs []domain.QueryLog
	err  error
}

func (m *mockQueryLogStore) SaveQueryLog(_ context.Context, log *domain.QueryLog) error {
	if m.err != nil {
		return m.err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.logs = append(m.logs, *log)
	return nil
}

func (m *mockQueryLogStore) ListQueryLogs(_ context.Context, _ domain.QueryLogFilter) ([]domain.QueryLog, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]domain.QueryLog(nil), m.logs...), m.err
}

// mockExtractor returns fixed pages for text/plain.
type mockExtractor struct {
	pages []domain.Page
	err   error
}

func (m *mockExtractor) SupportedMIMETypes() []string { return []string{"text/plain"} }

func (m *mockExtractor) Extract(_ context.Context, _ string, _ []byte) ([]domain.Page, error) {
	return m.pages, m.err
}

// lineChunker makes one chunk per non-empty line of each page.
type lineChunker struct{}

func (lineChunker) Chunk(documentID string, pages []domain.Page) []domain.Chunk {
	var chunks []domain.Chunk
	for _, p := range pages {
		for _, line := range strings.Split(p.Text, "\n") {
			if strings.TrimSpace(line) == "" {
				continue
			}
			chunks = append(chunks, domain.Chunk{
				ID:         documentID + "-" + line,
				DocumentID: documentID,
				Content:    line,
				PageNumber: p.Number,
				Index:      len(chunks),
			})
		}
	}
	return chunks
}

// mockPromptStore serves templates from a map.
type mockPromptStore struct {
	prompts map[string]string
}

func (m *mockPromptStore) Load(name string) (string, error) {
	p, ok := m.prompts[name]
	if !ok {
		return "", domain.ErrNotFound
	}
	return p, nil
}

func (m *mockPromptStore) Reload() {}

// testProviderSettings retries without waiting.
func testProviderSettings() domain.ProviderSettings {
	return domain.ProviderSettings{
		Timeout:     time.Second,
		MaxAttempts: 3,
	}
}
