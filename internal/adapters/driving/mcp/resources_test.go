package mcp

import (
	"context"
	"errors"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
)

func TestExtractDocumentID(t *testing.T) {
	tests := []struct {
		name     string
		uri      string
		expected string
	}{
		{
			name:     "valid document URI",
			uri:      "sercha-rag://documents/doc-456",
			expected: "doc-456",
		},
		{
			name:     "invalid prefix",
			uri:      "sercha://documents/doc-456",
			expected: "",
		},
		{
			name:     "nested path",
			uri:      "sercha-rag://documents/doc-456/chunks",
			expected: "",
		},
		{
			name:     "empty URI",
			uri:      "",
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := extractDocumentID(tt.uri)
			assert.Equal(t, tt.expected, result)
		})
	}
}

func makeReadResourceRequest(uri string) *mcp.ReadResourceRequest {
	return &mcp.ReadResourceRequest{
		Params: &mcp.ReadResourceParams{
			URI: uri,
		},
	}
}

func TestServer_handleDocumentsResource(t *testing.T) {
	ctx := context.Background()

	t.Run("nil document service returns empty list", func(t *testing.T) {
		server, err := NewServer(&Ports{Answer: &mockAnswerService{}})
		require.NoError(t, err)

		req := makeReadResourceRequest("sercha-rag://documents")
		result, err := server.handleDocumentsResource(ctx, req)

		require.NoError(t, err)
		require.Len(t, result.Contents, 1)
		assert.Equal(t, "[]", result.Contents[0].Text)
	})

	t.Run("returns documents successfully", func(t *testing.T) {
		mockDocs := &mockDocumentService{
			documents: []domain.Document{
				{ID: "doc-1", Filename: "manual.pdf", Status: domain.DocumentStatusReady},
			},
		}

		server, err := NewServer(&Ports{Answer: &mockAnswerService{}, Document: mockDocs})
		require.NoError(t, err)

		req := makeReadResourceRequest("sercha-rag://documents")
		result, err := server.handleDocumentsResource(ctx, req)

		require.NoError(t, err)
		require.Len(t, result.Contents, 1)
		assert.Equal(t, "application/json", result.Contents[0].MIMEType)
		assert.Contains(t, result.Contents[0].Text, "doc-1")
		assert.Contains(t, result.Contents[0].Text, "manual.pdf")
	})

	t.Run("returns error on list failure", func(t *testing.T) {
		mockDocs := &mockDocumentService{err: errors.New("database error")}

		server, err := NewServer(&Ports{Answer: &mockAnswerService{}, Document: mockDocs})
		require.NoError(t, err)

		req := makeReadResourceRequest("sercha-rag://documents")
		_, err = server.handleDocumentsResource(ctx, req)

		require.Error(t, err)
		assert.Contains(t, err.Error(), "listing documents")
	})
}

func TestServer_handleDocumentContentResource(t *testing.T) {
	ctx := context.Background()

	t.Run("returns page tagged passages", func(t *testing.T) {
		mockDocs := &mockDocumentService{
			chunks: []domain.Chunk{
				{ID: "c-1", PageNumber: 1, Content: "Intro text."},
				{ID: "c-2", PageNumber: 2, Content: "Second page."},
			},
		}

		server, err := NewServer(&Ports{Answer: &mockAnswerService{}, Document: mockDocs})
		require.NoError(t, err)

		req := makeReadResourceRequest("sercha-rag://documents/doc-1")
		result, err := server.handleDocumentContentResource(ctx, req)

		require.NoError(t, err)
		require.Len(t, result.Contents, 1)
		assert.Equal(t, "[Page 1]\nIntro text.\n\n[Page 2]\nSecond page.", result.Contents[0].Text)
	})

	t.Run("nil document service is not found", func(t *testing.T) {
		server, err := NewServer(&Ports{Answer: &mockAnswerService{}})
		require.NoError(t, err)

		req := makeReadResourceRequest("sercha-rag://documents/doc-1")
		_, err = server.handleDocumentContentResource(ctx, req)

		require.Error(t, err)
	})

	t.Run("malformed URI is not found", func(t *testing.T) {
		server, err := NewServer(&Ports{Answer: &mockAnswerService{}, Document: &mockDocumentService{}})
		require.NoError(t, err)

		req := makeReadResourceRequest("sercha-rag://other/doc-1")
		_, err = server.handleDocumentContentResource(ctx, req)

		require.Error(t, err)
	})

	t.Run("returns error on chunk failure", func(t *testing.T) {
		mockDocs := &mockDocumentService{err: domain.ErrNotFound}

		server, err := NewServer(&Ports{Answer: &mockAnswerService{}, Document: mockDocs})
		require.NoError(t, err)

		req := makeReadResourceRequest("sercha-rag://documents/missing")
		_, err = server.handleDocumentContentResource(ctx, req)

		require.Error(t, err)
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})
}
