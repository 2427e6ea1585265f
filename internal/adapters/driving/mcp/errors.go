// Package mcp provides an MCP (Model Context Protocol) server adapter for sercha-rag.
// It lets AI assistants ask grounded questions about the ingested documents.
package mcp

import (
	"errors"
	"fmt"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
)

// ErrMissingAnswerService is returned when the answer service is not provided.
var ErrMissingAnswerService = errors.New("mcp: answer service is required")

// ErrServiceUnavailable is returned by tools whose port was not provided.
var ErrServiceUnavailable = errors.New("mcp: service not available")

// toolError prefixes err with a hint the calling assistant can act on.
// The original error stays in the chain.
func toolError(tool string, err error) error {
	var hint string
	switch {
	case errors.Is(err, domain.ErrInvalidQuery), errors.Is(err, domain.ErrInvalidInput):
		hint = "invalid arguments"
	case errors.Is(err, domain.ErrNotFound):
		hint = "document not found"
	case errors.Is(err, domain.ErrDocumentNotReady):
		hint = "document is not ready, wait for ingestion to finish"
	case errors.Is(err, domain.ErrEmbeddingUnavailable), errors.Is(err, domain.ErrCompletionUnavailable):
		hint = "AI provider unavailable, retry later"
	default:
		return fmt.Errorf("%s: %w", tool, err)
	}
	return fmt.Errorf("%s: %s: %w", tool, hint, err)
}
