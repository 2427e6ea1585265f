package domain

import (
	"fmt"
	"math"
	"time"
)

const unknownDescription = "Unknown"

// AIProvider identifies an AI service provider for embeddings or completions.
type AIProvider string

// Available AI providers.
const (
	// AIProviderOllama is local Ollama instance.
	AIProviderOllama AIProvider = "ollama"

	// AIProviderOpenAI is OpenAI cloud API.
	AIProviderOpenAI AIProvider = "openai"

	// AIProviderAnthropic is Anthropic cloud API.
	AIProviderAnthropic AIProvider = "anthropic"
)

// IsValid returns true if the AI provider is recognised.
func (p AIProvider) IsValid() bool {
	switch p {
	case AIProviderOllama, AIProviderOpenAI, AIProviderAnthropic:
		return true
	default:
		return false
	}
}

// SupportsEmbeddings returns true if the provider offers an embedding API.
func (p AIProvider) SupportsEmbeddings() bool {
	return p == AIProviderOllama || p == AIProviderOpenAI
}

// RequiresAPIKey returns true if this provider needs an API key.
func (p AIProvider) RequiresAPIKey() bool {
	return p == AIProviderOpenAI || p == AIProviderAnthropic
}

// IsLocal returns true if this provider runs locally.
func (p AIProvider) IsLocal() bool {
	return p == AIProviderOllama
}

// String returns the string representation.
func (p AIProvider) String() string {
	return string(p)
}

// Description returns a human-readable description of the provider.
func (p AIProvider) Description() string {
	switch p {
	case AIProviderOllama:
		return "Ollama (local)"
	case AIProviderOpenAI:
		return "OpenAI (cloud)"
	case AIProviderAnthropic:
		return "Anthropic (cloud)"
	default:
		return unknownDescription
	}
}

// StorageBackend selects the chunk and query log store.
type StorageBackend string

// Available storage backends.
const (
	// StorageBackendSQLite is an embedded database file.
	StorageBackendSQLite StorageBackend = "sqlite"

	// StorageBackendPostgres is a PostgreSQL server with the pgvector extension.
	StorageBackendPostgres StorageBackend = "postgres"

	// StorageBackendMemory keeps everything in process. Nothing survives exit.
	StorageBackendMemory StorageBackend = "memory"
)

// IsValid returns true if the backend is recognised.
func (b StorageBackend) IsValid() bool {
	switch b {
	case StorageBackendSQLite, StorageBackendPostgres, StorageBackendMemory:
		return true
	default:
		return false
	}
}

// Description returns a human-readable description of the backend.
func (b StorageBackend) Description() string {
	switch b {
	case StorageBackendSQLite:
		return "SQLite (embedded file)"
	case StorageBackendPostgres:
		return "PostgreSQL + pgvector"
	case StorageBackendMemory:
		return "In-memory (ephemeral)"
	default:
		return unknownDescription
	}
}

// EmbeddingSettings holds embedding provider configuration.
type EmbeddingSettings struct {
	// Provider is the embedding service provider.
	Provider AIProvider

	// Model is the embedding model name.
	Model string

	// BaseURL overrides the provider endpoint.
	BaseURL string

	// APIKey is the API key (for OpenAI).
	APIKey string

	// BatchSize is the maximum number of texts per provider call.
	BatchSize int
}

// IsConfigured returns true if the embedding provider is set up.
func (e EmbeddingSettings) IsConfigured() bool {
	if !e.Provider.IsValid() || !e.Provider.SupportsEmbeddings() {
		return false
	}
	if e.Provider.RequiresAPIKey() && e.APIKey == "" {
		return false
	}
	return true
}

// LLMSettings holds completion provider configuration.
type LLMSettings struct {
	// Provider is the completion service provider.
	Provider AIProvider

	// Model is the completion model name.
	Model string

	// BaseURL overrides the provider endpoint.
	BaseURL string

	// APIKey is the API key (for OpenAI/Anthropic).
	APIKey string

	// Temperature is the sampling temperature.
	Temperature float64

	// MaxTokens caps the completion length.
	MaxTokens int

	// MaxAttempts is the number of completion attempts per query.
	MaxAttempts int
}

// IsConfigured returns true if the completion provider is set up.
func (l LLMSettings) IsConfigured() bool {
	if !l.Provider.IsValid() {
		return false
	}
	if l.Provider.RequiresAPIKey() && l.APIKey == "" {
		return false
	}
	return true
}

// RetrievalSettings tune the search and relevance gate.
type RetrievalSettings struct {
	// TopK is the default number of passages retrieved per query.
	TopK int

	// MaxTopK is the largest TopK a caller may request.
	MaxTopK int

	// MinSimilarity is the relevance floor applied by the gate.
	MinSimilarity float64

	// MaxQuestionLength is the longest accepted question, in runes.
	MaxQuestionLength int
}

// ProviderSettings bound every outbound provider call.
type ProviderSettings struct {
	// Timeout bounds a single provider call.
	Timeout time.Duration

	// MaxAttempts is the embedding retry budget, first try included.
	MaxAttempts int

	// BaseBackoff is the delay before the second attempt; it doubles per attempt.
	BaseBackoff time.Duration

	// MaxBackoff caps the delay between attempts.
	MaxBackoff time.Duration

	// RequestsPerSecond paces provider calls. Zero disables pacing.
	RequestsPerSecond float64
}

// ChunkingSettings control how pages are split into passages.
type ChunkingSettings struct {
	// Size is the target chunk length in characters.
	Size int

	// Overlap is the number of characters shared by adjacent chunks.
	Overlap int
}

// StorageSettings select and locate the store.
type StorageSettings struct {
	// Backend is the store implementation.
	Backend StorageBackend

	// Path is the SQLite database file.
	Path string

	// DSN is the PostgreSQL connection string.
	DSN string
}

// IngestSettings limit uploads.
type IngestSettings struct {
	// MaxFileSizeMB is the largest accepted file.
	MaxFileSizeMB int
}

// MaxFileSizeBytes returns MaxFileSizeMB in bytes.
func (s IngestSettings) MaxFileSizeBytes() int64 {
	return int64(s.MaxFileSizeMB) * 1024 * 1024
}

// AppSettings holds all application settings.
// It is built once and passed explicitly into service construction.
type AppSettings struct {
	Embedding EmbeddingSettings
	LLM       LLMSettings
	Retrieval RetrievalSettings
	Provider  ProviderSettings
	Chunking  ChunkingSettings
	Storage   StorageSettings
	Ingest    IngestSettings
}

// Validate checks the settings for values the pipeline cannot run with.
func (s AppSettings) Validate() error {
	switch {
	case s.Retrieval.TopK <= 0:
		return fmt.Errorf("%w: retrieval.top_k must be positive", ErrInvalidInput)
	case s.Retrieval.MaxTopK < s.Retrieval.TopK:
		return fmt.Errorf("%w: retrieval.max_top_k must be at least retrieval.top_k", ErrInvalidInput)
	case math.IsNaN(s.Retrieval.MinSimilarity) || s.Retrieval.MinSimilarity < -1 || s.Retrieval.MinSimilarity > 1:
		return fmt.Errorf("%w: retrieval.min_similarity must be within [-1, 1]", ErrInvalidInput)
	case math.IsNaN(s.LLM.Temperature) || math.IsInf(s.LLM.Temperature, 0) || s.LLM.Temperature < 0:
		return fmt.Errorf("%w: llm.temperature must be a non-negative number", ErrInvalidInput)
	case s.Retrieval.MaxQuestionLength <= 0:
		return fmt.Errorf("%w: retrieval.max_question_length must be positive", ErrInvalidInput)
	case s.Embedding.BatchSize <= 0 || s.Embedding.BatchSize > MaxEmbeddingBatchSize:
		return fmt.Errorf("%w: embedding.batch_size must be within [1, %d]", ErrInvalidInput, MaxEmbeddingBatchSize)
	case s.Provider.Timeout <= 0:
		return fmt.Errorf("%w: provider.timeout must be positive", ErrInvalidInput)
	case s.Provider.MaxAttempts <= 0 || s.LLM.MaxAttempts <= 0:
		return fmt.Errorf("%w: max_attempts must be positive", ErrInvalidInput)
	case s.Chunking.Size <= 0 || s.Chunking.Overlap < 0 || s.Chunking.Overlap >= s.Chunking.Size:
		return fmt.Errorf("%w: chunking.overlap must be within [0, chunking.size)", ErrInvalidInput)
	case !s.Storage.Backend.IsValid():
		return fmt.Errorf("%w: unknown storage.backend %q", ErrInvalidInput, s.Storage.Backend)
	}
	return nil
}

// MaxEmbeddingBatchSize is the hard ceiling on texts per embedding call.
const MaxEmbeddingBatchSize = 2048

// DefaultAppSettings returns settings with sensible defaults.
// MinSimilarity is a starting point meant to be tuned per deployment.
func DefaultAppSettings() AppSettings {
	return AppSettings{
		Embedding: EmbeddingSettings{
			Provider:  AIProviderOpenAI,
			Model:     DefaultEmbeddingModels()[AIProviderOpenAI],
			BatchSize: 100,
		},
		LLM: LLMSettings{
			Provider:    AIProviderOpenAI,
			Model:       DefaultLLMModels()[AIProviderOpenAI],
			Temperature: 0.1,
			MaxTokens:   1000,
			MaxAttempts: 1,
		},
		Retrieval: RetrievalSettings{
			TopK:              5,
			MaxTopK:           50,
			MinSimilarity:     0.3,
			MaxQuestionLength: 2000,
		},
		Provider: ProviderSettings{
			Timeout:           30 * time.Second,
			MaxAttempts:       3,
			BaseBackoff:       500 * time.Millisecond,
			MaxBackoff:        8 * time.Second,
			RequestsPerSecond: 0,
		},
		Chunking: ChunkingSettings{
			Size:    2400, // ~600 tokens at 4 characters per token
			Overlap: 400,
		},
		Storage: StorageSettings{
			Backend: StorageBackendSQLite,
		},
		Ingest: IngestSettings{
			MaxFileSizeMB: 50,
		},
	}
}

// AllEmbeddingProviders returns providers that support embeddings.
func AllEmbeddingProviders() []AIProvider {
	return []AIProvider{
		AIProviderOllama,
		AIProviderOpenAI,
	}
}

// AllLLMProviders returns providers that support completions.
func AllLLMProviders() []AIProvider {
	return []AIProvider{
		AIProviderOllama,
		AIProviderOpenAI,
		AIProviderAnthropic,
	}
}

// DefaultEmbeddingModels returns default models for each embedding provider.
func DefaultEmbeddingModels() map[AIProvider]string {
	return map[AIProvider]string{
		AIProviderOllama: "nomic-embed-text",
		AIProviderOpenAI: "text-embedding-3-small",
	}
}

// DefaultLLMModels returns default models for each completion provider.
func DefaultLLMModels() map[AIProvider]string {
	return map[AIProvider]string{
		AIProviderOllama:    "llama3.2",
		AIProviderOpenAI:    "gpt-4o-mini",
		AIProviderAnthropic: "claude-3-5-sonnet-latest",
	}
}

// EmbeddingDimensions returns the vector dimensions for known models.
func EmbeddingDimensions() map[string]int {
	return map[string]int{
		// Ollama models
		"nomic-embed-text":  768,
		"mxbai-embed-large": 1024,
		"all-minilm":        384,
		// OpenAI models
		"text-embedding-3-small": 1536,
		"text-embedding-3-large": 3072,
		"text-embedding-ada-002": 1536,
	}
}
