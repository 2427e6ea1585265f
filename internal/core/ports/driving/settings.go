package driving

import "github.com/custodia-labs/sercha-rag/internal/core/domain"

// SettingsService manages application settings.
type SettingsService interface {
	// Get returns the effective settings: defaults, then the config
	// file, then environment overrides.
	Get() (*domain.AppSettings, error)

	// Set parses and stores one dotted key (e.g. "retrieval.top_k").
	Set(key, value string) error

	// Show returns the effective value of one key as text.
	Show(key string) (string, error)

	// Keys returns every settable key in display order.
	Keys() []string

	// Reload re-reads the config file.
	Reload() error

	// Validate checks the effective settings.
	Validate() error

	// GetDefaults returns default settings.
	GetDefaults() domain.AppSettings
}
