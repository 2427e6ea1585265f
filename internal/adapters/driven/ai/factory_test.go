package ai

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
)

func TestCreateEmbeddingService(t *testing.T) {
	tests := []struct {
		name      string
		settings  domain.EmbeddingSettings
		wantModel string
		wantDims  int
		wantErr   error
	}{
		{
			name:      "ollama",
			settings:  domain.EmbeddingSettings{Provider: domain.AIProviderOllama, Model: "mxbai-embed-large"},
			wantModel: "mxbai-embed-large",
			wantDims:  1024,
		},
		{
			name:      "openai",
			settings:  domain.EmbeddingSettings{Provider: domain.AIProviderOpenAI, APIKey: "k", Model: "text-embedding-3-large"},
			wantModel: "text-embedding-3-large",
			wantDims:  3072,
		},
		{
			name:     "openai without key",
			settings: domain.EmbeddingSettings{Provider: domain.AIProviderOpenAI},
			wantErr:  ErrNotConfigured,
		},
		{
			name:     "anthropic has no embeddings",
			settings: domain.EmbeddingSettings{Provider: domain.AIProviderAnthropic, APIKey: "k"},
			wantErr:  domain.ErrInvalidInput,
		},
		{
			name:     "unknown provider",
			settings: domain.EmbeddingSettings{Provider: "cohere"},
			wantErr:  ErrNotConfigured,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, err := CreateEmbeddingService(tt.settings)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, svc)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantModel, svc.ModelName())
			assert.Equal(t, tt.wantDims, svc.Dimensions())
			assert.NoError(t, svc.Close())
		})
	}
}

func TestCreateCompletionService(t *testing.T) {
	tests := []struct {
		name      string
		settings  domain.LLMSettings
		wantModel string
		wantErr   error
	}{
		{"ollama", domain.LLMSettings{Provider: domain.AIProviderOllama, Model: "llama3.2"}, "llama3.2", nil},
		{"openai", domain.LLMSettings{Provider: domain.AIProviderOpenAI, APIKey: "k", Model: "gpt-4o"}, "gpt-4o", nil},
		{"anthropic", domain.LLMSettings{Provider: domain.AIProviderAnthropic, APIKey: "k"}, "claude-3-5-sonnet-latest", nil},
		{"anthropic without key", domain.LLMSettings{Provider: domain.AIProviderAnthropic}, "", ErrNotConfigured},
		{"empty", domain.LLMSettings{}, "", ErrNotConfigured},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, err := CreateCompletionService(tt.settings)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantModel, svc.ModelName())
		})
	}
}
