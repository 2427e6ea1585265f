package mcp

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
)

// AskInput is the input schema for the ask tool.
type AskInput struct {
	Question      string   `json:"question" jsonschema:"the question to answer from the ingested documents"`
	DocumentID    string   `json:"document_id,omitempty" jsonschema:"restrict retrieval to this document"`
	TopK          int      `json:"top_k,omitempty" jsonschema:"number of passages to retrieve (default from settings)"`
	MinSimilarity *float64 `json:"min_similarity,omitempty" jsonschema:"relevance threshold between -1 and 1 (default from settings)"`
}

// AskOutput is the output schema for the ask tool.
type AskOutput struct {
	Answer               string            `json:"answer"`
	IsAnswerable         bool              `json:"is_answerable"`
	Citations            []domain.Citation `json:"citations"`
	RetrievedChunksCount int               `json:"retrieved_chunks_count"`
	TokensUsed           int               `json:"tokens_used"`
	ElapsedMS            int64             `json:"elapsed_ms"`
}

// SearchInput is the input schema for the search tool.
type SearchInput struct {
	Query      string `json:"query" jsonschema:"the text to find similar passages for"`
	DocumentID string `json:"document_id,omitempty" jsonschema:"restrict the search to this document"`
	Limit      int    `json:"limit,omitempty" jsonschema:"maximum number of results to return (default from settings)"`
}

// SearchOutput is the output schema for the search tool.
type SearchOutput struct {
	Results []SearchResultOutput `json:"results"`
	Count   int                  `json:"count"`
}

// SearchResultOutput represents a single search result.
type SearchResultOutput struct {
	ChunkID    string  `json:"chunk_id"`
	DocumentID string  `json:"document_id"`
	PageNumber int     `json:"page_number"`
	Score      float64 `json:"score"`
	Content    string  `json:"content"`
}

// ListDocumentsInput is the input schema for the list_documents tool.
type ListDocumentsInput struct{}

// ListDocumentsOutput is the output schema for the list_documents tool.
type ListDocumentsOutput struct {
	Documents []DocumentOutput `json:"documents"`
	Count     int              `json:"count"`
}

// GetDocumentInput is the input schema for the get_document tool.
type GetDocumentInput struct {
	DocumentID string `json:"document_id" jsonschema:"the document to describe"`
}

// DocumentOutput summarises one document.
type DocumentOutput struct {
	ID          string `json:"id"`
	Filename    string `json:"filename"`
	Status      string `json:"status"`
	PageCount   int    `json:"page_count"`
	ChunkCount  int    `json:"chunk_count"`
	ErrorDetail string `json:"error_detail,omitempty"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name: "ask",
		Description: "Answer a question using only passages from the ingested documents. " +
			"Returns a refusal when no passage is relevant enough.",
	}, s.handleAsk)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "search",
		Description: "Find the passages most similar to a query, without generating an answer",
	}, s.handleSearch)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "list_documents",
		Description: "List ingested documents and their status",
	}, s.handleListDocuments)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "get_document",
		Description: "Show one document's status, page count and chunk count",
	}, s.handleGetDocument)
}

// handleAsk handles the ask tool invocation.
func (s *Server) handleAsk(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input AskInput,
) (*mcp.CallToolResult, AskOutput, error) {
	ports := s.current()

	answer, err := ports.Answer.Answer(ctx, input.Question, domain.QueryOptions{
		DocumentID:    input.DocumentID,
		TopK:          input.TopK,
		MinSimilarity: input.MinSimilarity,
	})
	if err != nil {
		return nil, AskOutput{}, toolError("ask", err)
	}

	citations := answer.Citations
	if citations == nil {
		citations = []domain.Citation{}
	}

	return nil, AskOutput{
		Answer:               answer.Text,
		IsAnswerable:         answer.IsAnswerable,
		Citations:            citations,
		RetrievedChunksCount: answer.RetrievedChunksCount,
		TokensUsed:           answer.TokensUsed,
		ElapsedMS:            answer.ElapsedMS(),
	}, nil
}

// handleSearch handles the search tool invocation.
func (s *Server) handleSearch(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input SearchInput,
) (*mcp.CallToolResult, SearchOutput, error) {
	ports := s.current()
	if ports.Search == nil {
		return nil, SearchOutput{}, toolError("search", ErrServiceUnavailable)
	}

	opts := domain.SearchOptions{TopK: input.Limit, DocumentID: input.DocumentID}
	results, err := ports.Search.Search(ctx, input.Query, opts)
	if err != nil {
		return nil, SearchOutput{}, toolError("search", err)
	}

	output := SearchOutput{
		Results: make([]SearchResultOutput, len(results)),
		Count:   len(results),
	}

	for i := range results {
		output.Results[i] = SearchResultOutput{
			ChunkID:    results[i].Chunk.ID,
			DocumentID: results[i].Chunk.DocumentID,
			PageNumber: results[i].Chunk.PageNumber,
			Score:      results[i].Score,
			Content:    results[i].Chunk.Content,
		}
	}

	return nil, output, nil
}

// handleListDocuments handles the list_documents tool invocation.
func (s *Server) handleListDocuments(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	_ ListDocumentsInput,
) (*mcp.CallToolResult, ListDocumentsOutput, error) {
	ports := s.current()
	if ports.Document == nil {
		return nil, ListDocumentsOutput{}, toolError("list_documents", ErrServiceUnavailable)
	}

	docs, err := ports.Document.List(ctx)
	if err != nil {
		return nil, ListDocumentsOutput{}, toolError("list_documents", err)
	}

	output := ListDocumentsOutput{
		Documents: make([]DocumentOutput, len(docs)),
		Count:     len(docs),
	}
	for i := range docs {
		output.Documents[i] = toDocumentOutput(&docs[i])
	}

	return nil, output, nil
}

// handleGetDocument handles the get_document tool invocation.
func (s *Server) handleGetDocument(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input GetDocumentInput,
) (*mcp.CallToolResult, DocumentOutput, error) {
	ports := s.current()
	if ports.Document == nil {
		return nil, DocumentOutput{}, toolError("get_document", ErrServiceUnavailable)
	}
	if input.DocumentID == "" {
		return nil, DocumentOutput{}, toolError("get_document", domain.ErrInvalidInput)
	}

	doc, err := ports.Document.Get(ctx, input.DocumentID)
	if err != nil {
		return nil, DocumentOutput{}, toolError("get_document", err)
	}

	return nil, toDocumentOutput(doc), nil
}

func toDocumentOutput(doc *domain.Document) DocumentOutput {
	return DocumentOutput{
		ID:          doc.ID,
		Filename:    doc.Filename,
		Status:      doc.Status.String(),
		PageCount:   doc.PageCount,
		ChunkCount:  doc.ChunkCount,
		ErrorDetail: doc.ErrorDetail,
	}
}
