package driving

import "github.com/custodia-labs/alexandria/internal/core/domain"

// SettingsService manages application settings.
type SettingsService interface {
	// Get retrieves current settings with environment overrides applied.
	Get() (*domain.AppSettings, error)

	// Save persists settings to the config file.
	Save(settings *domain.AppSettings) error

	// SetEmbeddingProvider configures the embedding provider.
	SetEmbeddingProvider(provider domain.EmbeddingProvider, model, apiKey string) error

	// GetDefaults returns default settings.
	GetDefaults() domain.AppSettings
}
