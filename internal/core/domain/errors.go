package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnsupportedType indicates a file type no extractor handles.
	ErrUnsupportedType = errors.New("unsupported type")

	// ErrConfigNotFound indicates a settings key has no stored value.
	ErrConfigNotFound = errors.New("config key not found")

	// Query Errors.

	// ErrInvalidQuery indicates the question is empty, oversized or carries
	// out-of-range options. It is raised before any provider call.
	ErrInvalidQuery = errors.New("invalid query")

	// ErrDocumentNotReady indicates a query was scoped to a document that
	// has not finished ingestion.
	ErrDocumentNotReady = errors.New("document not ready")

	// Provider Errors.

	// ErrEmbeddingUnavailable indicates the embedding provider failed after
	// the retry budget was exhausted, or is not configured.
	ErrEmbeddingUnavailable = errors.New("embedding service unavailable")

	// ErrCompletionUnavailable indicates the completion provider failed or timed out.
	ErrCompletionUnavailable = errors.New("completion service unavailable")

	// ErrRateLimited indicates the provider rate limit was exceeded.
	ErrRateLimited = errors.New("rate limited")

	// ErrProviderRejected indicates the provider refused the request
	// (bad credentials, unknown model). Retrying will not help.
	ErrProviderRejected = errors.New("provider rejected request")

	// Storage Errors.

	// ErrDimensionMismatch indicates an embedding does not match the
	// dimensionality of the vectors it is compared against.
	ErrDimensionMismatch = errors.New("embedding dimension mismatch")

	// ErrInvalidTransition indicates an illegal document status change.
	ErrInvalidTransition = errors.New("invalid status transition")

	// ErrFileTooLarge indicates an upload exceeded the configured size limit.
	ErrFileTooLarge = errors.New("file too large")
)
