package services

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
	"github.com/custodia-labs/sercha-rag/internal/core/ports/driven"
	"github.com/custodia-labs/sercha-rag/internal/core/ports/driving"
	"github.com/custodia-labs/sercha-rag/internal/logger"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// Config keys for settings storage.
//
//nolint:gosec // G101: These are config key names, not actual credentials.
const (
	KeyEmbedProvider      = "embedding.provider"
	KeyEmbedModel         = "embedding.model"
	KeyEmbedBaseURL       = "embedding.base_url"
	KeyEmbedAPIKey        = "embedding.api_key"
	KeyEmbedBatchSize     = "embedding.batch_size"
	KeyLLMProvider        = "llm.provider"
	KeyLLMModel           = "llm.model"
	KeyLLMBaseURL         = "llm.base_url"
	KeyLLMAPIKey          = "llm.api_key"
	KeyLLMTemperature     = "llm.temperature"
	KeyLLMMaxTokens       = "llm.max_tokens"
	KeyLLMMaxAttempts     = "llm.max_attempts"
	KeyTopK               = "retrieval.top_k"
	KeyMaxTopK            = "retrieval.max_top_k"
	KeyMinSimilarity      = "retrieval.min_similarity"
	KeyMaxQuestionLength  = "retrieval.max_question_length"
	KeyProviderTimeout    = "provider.timeout"
	KeyProviderAttempts   = "provider.max_attempts"
	KeyProviderBackoff    = "provider.base_backoff"
	KeyProviderMaxBackoff = "provider.max_backoff"
	KeyProviderRPS        = "provider.requests_per_second"
	KeyChunkSize          = "chunking.size"
	KeyChunkOverlap       = "chunking.overlap"
	KeyStorageBackend     = "storage.backend"
	KeyStoragePath        = "storage.path"
	KeyStorageDSN         = "storage.dsn"
	KeyMaxFileSizeMB      = "ingest.max_file_size_mb"
)

// setting binds a config key to a field of domain.AppSettings.
type setting struct {
	key   string
	apply func(s *domain.AppSettings, value string) error
	show  func(s *domain.AppSettings) string
	// typed converts a validated string into the value written to the config file.
	typed func(value string) any
}

func stringSetting(key string, field func(*domain.AppSettings) *string) setting {
	return setting{
		key:   key,
		apply: func(s *domain.AppSettings, v string) error { *field(s) = v; return nil },
		show:  func(s *domain.AppSettings) string { return *field(s) },
		typed: func(v string) any { return v },
	}
}

func intSetting(key string, field func(*domain.AppSettings) *int) setting {
	return setting{
		key: key,
		apply: func(s *domain.AppSettings, v string) error {
			n, err := strconv.Atoi(v)
			if err != nil {
				return fmt.Errorf("%w: %s must be an integer", domain.ErrInvalidInput, key)
			}
			*field(s) = n
			return nil
		},
		show:  func(s *domain.AppSettings) string { return strconv.Itoa(*field(s)) },
		typed: func(v string) any { n, _ := strconv.Atoi(v); return n },
	}
}

func floatSetting(key string, field func(*domain.AppSettings) *float64) setting {
	return setting{
		key: key,
		apply: func(s *domain.AppSettings, v string) error {
			f, err := strconv.ParseFloat(v, 64)
			if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
				return fmt.Errorf("%w: %s must be a number", domain.ErrInvalidInput, key)
			}
			*field(s) = f
			return nil
		},
		show:  func(s *domain.AppSettings) string { return strconv.FormatFloat(*field(s), 'g', -1, 64) },
		typed: func(v string) any { f, _ := strconv.ParseFloat(v, 64); return f },
	}
}

// durationSetting accepts Go duration strings ("30s") or whole seconds.
func durationSetting(key string, field func(*domain.AppSettings) *time.Duration) setting {
	return setting{
		key: key,
		apply: func(s *domain.AppSettings, v string) error {
			d, err := parseDuration(v)
			if err != nil {
				return fmt.Errorf("%w: %s must be a duration such as 30s", domain.ErrInvalidInput, key)
			}
			*field(s) = d
			return nil
		},
		show:  func(s *domain.AppSettings) string { return field(s).String() },
		typed: func(v string) any { d, _ := parseDuration(v); return d.String() },
	}
}

func parseDuration(v string) (time.Duration, error) {
	if secs, err := strconv.Atoi(v); err == nil {
		return time.Duration(secs) * time.Second, nil
	}
	return time.ParseDuration(v)
}

func providerSetting(key string, field func(*domain.AppSettings) *domain.AIProvider) setting {
	return setting{
		key: key,
		apply: func(s *domain.AppSettings, v string) error {
			p := domain.AIProvider(strings.ToLower(v))
			if !p.IsValid() {
				return fmt.Errorf("%w: unknown provider %q", domain.ErrInvalidInput, v)
			}
			*field(s) = p
			return nil
		},
		show:  func(s *domain.AppSettings) string { return field(s).String() },
		typed: func(v string) any { return strings.ToLower(v) },
	}
}

// settings lists every key in display order.
var settings = []setting{
	providerSetting(KeyEmbedProvider, func(s *domain.AppSettings) *domain.AIProvider { return &s.Embedding.Provider }),
	stringSetting(KeyEmbedModel, func(s *domain.AppSettings) *string { return &s.Embedding.Model }),
	stringSetting(KeyEmbedBaseURL, func(s *domain.AppSettings) *string { return &s.Embedding.BaseURL }),
	stringSetting(KeyEmbedAPIKey, func(s *domain.AppSettings) *string { return &s.Embedding.APIKey }),
	intSetting(KeyEmbedBatchSize, func(s *domain.AppSettings) *int { return &s.Embedding.BatchSize }),
	providerSetting(KeyLLMProvider, func(s *domain.AppSettings) *domain.AIProvider { return &s.LLM.Provider }),
	stringSetting(KeyLLMModel, func(s *domain.AppSettings) *string { return &s.LLM.Model }),
	stringSetting(KeyLLMBaseURL, func(s *domain.AppSettings) *string { return &s.LLM.BaseURL }),
	stringSetting(KeyLLMAPIKey, func(s *domain.AppSettings) *string { return &s.LLM.APIKey }),
	floatSetting(KeyLLMTemperature, func(s *domain.AppSettings) *float64 { return &s.LLM.Temperature }),
	intSetting(KeyLLMMaxTokens, func(s *domain.AppSettings) *int { return &s.LLM.MaxTokens }),
	intSetting(KeyLLMMaxAttempts, func(s *domain.AppSettings) *int { return &s.LLM.MaxAttempts }),
	intSetting(KeyTopK, func(s *domain.AppSettings) *int { return &s.Retrieval.TopK }),
	intSetting(KeyMaxTopK, func(s *domain.AppSettings) *int { return &s.Retrieval.MaxTopK }),
	floatSetting(KeyMinSimilarity, func(s *domain.AppSettings) *float64 { return &s.Retrieval.MinSimilarity }),
	intSetting(KeyMaxQuestionLength, func(s *domain.AppSettings) *int { return &s.Retrieval.MaxQuestionLength }),
	durationSetting(KeyProviderTimeout, func(s *domain.AppSettings) *time.Duration { return &s.Provider.Timeout }),
	intSetting(KeyProviderAttempts, func(s *domain.AppSettings) *int { return &s.Provider.MaxAttempts }),
	durationSetting(KeyProviderBackoff, func(s *domain.AppSettings) *time.Duration { return &s.Provider.BaseBackoff }),
	durationSetting(KeyProviderMaxBackoff, func(s *domain.AppSettings) *time.Duration { return &s.Provider.MaxBackoff }),
	floatSetting(KeyProviderRPS, func(s *domain.AppSettings) *float64 { return &s.Provider.RequestsPerSecond }),
	intSetting(KeyChunkSize, func(s *domain.AppSettings) *int { return &s.Chunking.Size }),
	intSetting(KeyChunkOverlap, func(s *domain.AppSettings) *int { return &s.Chunking.Overlap }),
	{
		key: KeyStorageBackend,
		apply: func(s *domain.AppSettings, v string) error {
			b := domain.StorageBackend(strings.ToLower(v))
			if !b.IsValid() {
				return fmt.Errorf("%w: unknown storage backend %q", domain.ErrInvalidInput, v)
			}
			s.Storage.Backend = b
			return nil
		},
		show:  func(s *domain.AppSettings) string { return string(s.Storage.Backend) },
		typed: func(v string) any { return strings.ToLower(v) },
	},
	stringSetting(KeyStoragePath, func(s *domain.AppSettings) *string { return &s.Storage.Path }),
	stringSetting(KeyStorageDSN, func(s *domain.AppSettings) *string { return &s.Storage.DSN }),
	intSetting(KeyMaxFileSizeMB, func(s *domain.AppSettings) *int { return &s.Ingest.MaxFileSizeMB }),
}

// ProviderAPIKey is the override key holding a credential shared by every
// section configured for provider, e.g. "openai.api_key".
func ProviderAPIKey(provider domain.AIProvider) string {
	return string(provider) + ".api_key"
}

func lookupSetting(key string) (setting, bool) {
	for _, s := range settings {
		if s.key == key {
			return s, true
		}
	}
	return setting{}, false
}

// SettingsService resolves settings from defaults, the config file and
// environment overrides, in increasing precedence.
type SettingsService struct {
	configStore driven.ConfigStore
	overrides   map[string]string
}

// NewSettingsService creates a new settings service. overrides maps config
// keys to values that win over the config file (typically from the environment).
func NewSettingsService(configStore driven.ConfigStore, overrides map[string]string) *SettingsService {
	return &SettingsService{
		configStore: configStore,
		overrides:   overrides,
	}
}

// Get returns the effective settings. Stored values that fail to parse
// are logged and the default is kept.
func (s *SettingsService) Get() (*domain.AppSettings, error) {
	resolved := domain.DefaultAppSettings()
	explicit := make(map[string]bool, len(settings))
	for _, st := range settings {
		value, ok := s.lookup(st.key)
		if !ok {
			continue
		}
		if err := st.apply(&resolved, value); err != nil {
			logger.Warn("Ignoring %s: %v", st.key, err)
			continue
		}
		explicit[st.key] = true
	}

	// A provider switch without a model picks that provider's default model.
	if !explicit[KeyEmbedModel] {
		if m, ok := domain.DefaultEmbeddingModels()[resolved.Embedding.Provider]; ok {
			resolved.Embedding.Model = m
		}
	}
	if !explicit[KeyLLMModel] {
		if m, ok := domain.DefaultLLMModels()[resolved.LLM.Provider]; ok {
			resolved.LLM.Model = m
		}
	}

	// Provider-wide keys (OPENAI_API_KEY) fill whichever section uses that provider.
	if resolved.Embedding.APIKey == "" {
		resolved.Embedding.APIKey = s.overrides[ProviderAPIKey(resolved.Embedding.Provider)]
	}
	if resolved.LLM.APIKey == "" {
		resolved.LLM.APIKey = s.overrides[ProviderAPIKey(resolved.LLM.Provider)]
	}

	// Ollama works without a base URL in config; point it at the local daemon.
	if resolved.Embedding.Provider.IsLocal() && resolved.Embedding.BaseURL == "" {
		resolved.Embedding.BaseURL = "http://localhost:11434"
	}
	if resolved.LLM.Provider.IsLocal() && resolved.LLM.BaseURL == "" {
		resolved.LLM.BaseURL = "http://localhost:11434"
	}
	return &resolved, nil
}

func (s *SettingsService) lookup(key string) (string, bool) {
	if v, ok := s.overrides[key]; ok && v != "" {
		return v, true
	}
	if s.configStore == nil {
		return "", false
	}
	v, ok := s.configStore.Get(key)
	if !ok || v == nil {
		return "", false
	}
	str := strings.TrimSpace(fmt.Sprint(v))
	return str, str != ""
}

// Set validates and stores one key.
func (s *SettingsService) Set(key, value string) error {
	st, ok := lookupSetting(key)
	if !ok {
		return fmt.Errorf("%w: unknown setting %q", domain.ErrInvalidInput, key)
	}
	value = strings.TrimSpace(value)

	current, err := s.Get()
	if err != nil {
		return err
	}
	if err := st.apply(current, value); err != nil {
		return err
	}
	if err := current.Validate(); err != nil {
		return err
	}
	if err := s.configStore.Set(key, st.typed(value)); err != nil {
		return fmt.Errorf("save %s: %w", key, err)
	}
	return nil
}

// Show returns the effective value of key as text.
func (s *SettingsService) Show(key string) (string, error) {
	st, ok := lookupSetting(key)
	if !ok {
		return "", fmt.Errorf("%w: unknown setting %q", domain.ErrInvalidInput, key)
	}
	current, err := s.Get()
	if err != nil {
		return "", err
	}
	return st.show(current), nil
}

// Keys returns every settable key in display order.
func (s *SettingsService) Keys() []string {
	keys := make([]string, len(settings))
	for i, st := range settings {
		keys[i] = st.key
	}
	return keys
}

// Reload re-reads the config file.
func (s *SettingsService) Reload() error {
	if s.configStore == nil {
		return nil
	}
	return s.configStore.Load()
}

// Validate checks the effective settings.
func (s *SettingsService) Validate() error {
	current, err := s.Get()
	if err != nil {
		return err
	}
	return current.Validate()
}

// GetDefaults returns default settings.
func (s *SettingsService) GetDefaults() domain.AppSettings {
	return domain.DefaultAppSettings()
}
