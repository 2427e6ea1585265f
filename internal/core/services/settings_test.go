package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/sercha-rag/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/sercha-rag/internal/core/domain"
)

func TestSettingsService_Get_ReturnsDefaults(t *testing.T) {
	service := NewSettingsService(memory.NewConfigStore(), nil)

	settings, err := service.Get()

	require.NoError(t, err)
	assert.Equal(t, domain.DefaultAppSettings(), *settings)
}

func TestSettingsService_Get_ReturnsStoredValues(t *testing.T) {
	store := memory.NewConfigStore()
	_ = store.Set(KeyMinSimilarity, 0.55)
	_ = store.Set(KeyTopK, int64(8))
	_ = store.Set(KeyProviderTimeout, "45s")
	_ = store.Set(KeyEmbedModel, "text-embedding-3-large")
	_ = store.Set(KeyStorageBackend, "postgres")

	settings, err := NewSettingsService(store, nil).Get()

	require.NoError(t, err)
	assert.InDelta(t, 0.55, settings.Retrieval.MinSimilarity, 1e-9)
	assert.Equal(t, 8, settings.Retrieval.TopK)
	assert.Equal(t, 45*time.Second, settings.Provider.Timeout)
	assert.Equal(t, "text-embedding-3-large", settings.Embedding.Model)
	assert.Equal(t, domain.StorageBackendPostgres, settings.Storage.Backend)
}

func TestSettingsService_Get_OverridesWin(t *testing.T) {
	store := memory.NewConfigStore()
	_ = store.Set(KeyLLMAPIKey, "from-file")

	settings, err := NewSettingsService(store, map[string]string{
		KeyLLMAPIKey:     "from-env",
		KeyMinSimilarity: "0.7",
		KeyEmbedAPIKey:   "",
	}).Get()

	require.NoError(t, err)
	assert.Equal(t, "from-env", settings.LLM.APIKey)
	assert.InDelta(t, 0.7, settings.Retrieval.MinSimilarity, 1e-9)
	assert.Empty(t, settings.Embedding.APIKey)
}

func TestSettingsService_Get_ProviderAPIKeys(t *testing.T) {
	store := memory.NewConfigStore()
	_ = store.Set(KeyLLMProvider, "anthropic")

	settings, err := NewSettingsService(store, map[string]string{
		ProviderAPIKey(domain.AIProviderOpenAI):    "sk-openai",
		ProviderAPIKey(domain.AIProviderAnthropic): "sk-ant",
	}).Get()

	require.NoError(t, err)
	assert.Equal(t, "sk-openai", settings.Embedding.APIKey)
	assert.Equal(t, "sk-ant", settings.LLM.APIKey)
}

func TestSettingsService_Get_SectionKeyBeatsProviderKey(t *testing.T) {
	settings, err := NewSettingsService(memory.NewConfigStore(), map[string]string{
		KeyEmbedAPIKey:                          "sk-embed",
		ProviderAPIKey(domain.AIProviderOpenAI): "sk-openai",
	}).Get()

	require.NoError(t, err)
	assert.Equal(t, "sk-embed", settings.Embedding.APIKey)
	assert.Equal(t, "sk-openai", settings.LLM.APIKey)
}

func TestSettingsService_Get_InvalidValuesKeepDefaults(t *testing.T) {
	store := memory.NewConfigStore()
	_ = store.Set(KeyEmbedProvider, "invalid_provider")
	_ = store.Set(KeyTopK, "many")
	_ = store.Set(KeyMinSimilarity, "NaN")

	settings, err := NewSettingsService(store, nil).Get()

	require.NoError(t, err)
	defaults := domain.DefaultAppSettings()
	assert.Equal(t, defaults.Embedding.Provider, settings.Embedding.Provider)
	assert.Equal(t, defaults.Retrieval.TopK, settings.Retrieval.TopK)
	assert.InDelta(t, defaults.Retrieval.MinSimilarity, settings.Retrieval.MinSimilarity, 1e-9)
	require.NoError(t, settings.Validate())

	decision := Gate([]domain.SearchResult{{Chunk: domain.Chunk{ID: "c"}, Score: 0.99}}, settings.Retrieval.MinSimilarity)
	assert.True(t, decision.IsAnswerable)
}

func TestSettingsService_Get_ProviderSwitchUsesProviderDefaults(t *testing.T) {
	store := memory.NewConfigStore()
	_ = store.Set(KeyEmbedProvider, "ollama")
	_ = store.Set(KeyLLMProvider, "anthropic")

	settings, err := NewSettingsService(store, nil).Get()

	require.NoError(t, err)
	assert.Equal(t, "nomic-embed-text", settings.Embedding.Model)
	assert.Equal(t, "http://localhost:11434", settings.Embedding.BaseURL)
	assert.Equal(t, domain.DefaultLLMModels()[domain.AIProviderAnthropic], settings.LLM.Model)
	assert.Empty(t, settings.LLM.BaseURL)
}

func TestSettingsService_Set(t *testing.T) {
	store := memory.NewConfigStore()
	service := NewSettingsService(store, nil)

	require.NoError(t, service.Set(KeyMinSimilarity, "0.42"))
	require.NoError(t, service.Set(KeyProviderTimeout, "10"))
	require.NoError(t, service.Set(KeyLLMProvider, "Ollama"))

	assert.InDelta(t, 0.42, store.GetFloat(KeyMinSimilarity), 1e-9)
	assert.Equal(t, "10s", store.GetString(KeyProviderTimeout))
	assert.Equal(t, "ollama", store.GetString(KeyLLMProvider))

	value, err := service.Show(KeyMinSimilarity)
	require.NoError(t, err)
	assert.Equal(t, "0.42", value)
}

func TestSettingsService_Set_Rejects(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{"unknown key", "search.mode", "hybrid"},
		{"not a number", KeyMinSimilarity, "high"},
		{"out of range", KeyMinSimilarity, "1.5"},
		{"NaN similarity", KeyMinSimilarity, "NaN"},
		{"infinite similarity", KeyMinSimilarity, "-Inf"},
		{"NaN temperature", KeyLLMTemperature, "nan"},
		{"negative temperature", KeyLLMTemperature, "-0.5"},
		{"zero top_k", KeyTopK, "0"},
		{"bad provider", KeyLLMProvider, "cohere"},
		{"bad backend", KeyStorageBackend, "redis"},
		{"bad duration", KeyProviderTimeout, "soon"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := memory.NewConfigStore()
			service := NewSettingsService(store, nil)

			err := service.Set(tt.key, tt.value)

			assert.ErrorIs(t, err, domain.ErrInvalidInput)
			_, stored := store.Get(tt.key)
			assert.False(t, stored)
		})
	}
}

func TestSettingsService_Keys(t *testing.T) {
	keys := NewSettingsService(nil, nil).Keys()

	assert.Contains(t, keys, KeyMinSimilarity)
	assert.Contains(t, keys, KeyStorageDSN)
	assert.Equal(t, KeyEmbedProvider, keys[0])
	for _, k := range keys {
		_, ok := lookupSetting(k)
		assert.True(t, ok, k)
	}
}

func TestSettingsService_ValidateAndReload(t *testing.T) {
	store := memory.NewConfigStore()
	service := NewSettingsService(store, nil)

	require.NoError(t, service.Validate())
	require.NoError(t, service.Reload())

	_ = store.Set(KeyChunkOverlap, 5000)
	assert.ErrorIs(t, service.Validate(), domain.ErrInvalidInput)
}

func TestSettingsService_GetDefaults(t *testing.T) {
	service := NewSettingsService(nil, nil)
	assert.Equal(t, domain.DefaultAppSettings(), service.GetDefaults())
}
