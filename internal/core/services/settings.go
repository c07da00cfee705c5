package services

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/custodia-labs/alexandria/internal/core/domain"
	"github.com/custodia-labs/alexandria/internal/core/ports/driven"
	"github.com/custodia-labs/alexandria/internal/core/ports/driving"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// Config keys for settings storage.
//
//nolint:gosec // G101: These are config key names, not actual credentials.
const (
	keyDatabasePath  = "database.path"
	keyRegistryPath  = "registry.path"
	keySearchLimit   = "search.limit"
	keyEmbedProvider = "embedding.provider"
	keyEmbedModel    = "embedding.model"
	keyEmbedBaseURL  = "embedding.base_url"
	keyEmbedAPIKey   = "embedding.api_key"
	keyEmbedDims     = "embedding.dimensions"
)

// Environment variables that override the config file.
//
//nolint:gosec // G101: These are variable names, not credentials.
const (
	EnvDatabasePath      = "ALEXANDRIA_DB_PATH"
	EnvRegistryPath      = "ALEXANDRIA_REGISTRY"
	EnvEmbeddingProvider = "EMBEDDING_PROVIDER"
	EnvVoyageAPIKey      = "VOYAGE_API_KEY"
	EnvOpenAIAPIKey      = "OPENAI_API_KEY"
	EnvOllamaURL         = "OLLAMA_URL"
	EnvOllamaModel       = "OLLAMA_MODEL"
	EnvOllamaDimension   = "OLLAMA_DIMENSION"
)

// SettingsService manages application settings. Values resolve from the
// environment first, then the config file, then defaults.
type SettingsService struct {
	configStore driven.ConfigStore
	getenv      func(string) string
}

// NewSettingsService creates a new settings service.
func NewSettingsService(configStore driven.ConfigStore) *SettingsService {
	return &SettingsService{
		configStore: configStore,
		getenv:      os.Getenv,
	}
}

// Get retrieves current application settings.
func (s *SettingsService) Get() (*domain.AppSettings, error) {
	settings := s.GetDefaults()

	settings.Storage.Path = s.firstOf(s.getenv(EnvDatabasePath), s.configStore.GetString(keyDatabasePath))
	if settings.Storage.Path == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		settings.Storage.Path = filepath.Join(home, ".alexandria", "alexandria.db")
	}

	settings.Registry.Path = s.firstOf(s.getenv(EnvRegistryPath), s.configStore.GetString(keyRegistryPath), "apis.yml")

	if limit := s.configStore.GetInt(keySearchLimit); limit > 0 {
		settings.Search.Limit = limit
	}

	settings.Embedding = s.embeddingSettings(settings.Embedding)
	return &settings, nil
}

// embeddingSettings layers file and environment values over defaults. File
// values for model, URL and key only apply when the file names the same
// provider that ends up selected.
func (s *SettingsService) embeddingSettings(defaults domain.EmbeddingSettings) domain.EmbeddingSettings {
	fileProvider := domain.EmbeddingProvider(s.configStore.GetString(keyEmbedProvider))
	provider := domain.EmbeddingProvider(s.firstOf(
		s.getenv(EnvEmbeddingProvider), string(fileProvider), string(defaults.Provider)))

	e := domain.EmbeddingSettings{
		Provider: provider,
		Model:    domain.DefaultEmbeddingModels()[provider],
	}

	if fileProvider == provider {
		e.Model = s.firstOf(s.configStore.GetString(keyEmbedModel), e.Model)
		e.BaseURL = s.configStore.GetString(keyEmbedBaseURL)
		e.APIKey = s.configStore.GetString(keyEmbedAPIKey)
		e.Dimensions = s.configStore.GetInt(keyEmbedDims)
	}

	switch provider {
	case domain.EmbeddingProviderVoyage:
		e.APIKey = s.firstOf(s.getenv(EnvVoyageAPIKey), e.APIKey)
	case domain.EmbeddingProviderOpenAI:
		e.APIKey = s.firstOf(s.getenv(EnvOpenAIAPIKey), e.APIKey)
	case domain.EmbeddingProviderOllama:
		e.BaseURL = s.firstOf(s.getenv(EnvOllamaURL), e.BaseURL)
		e.Model = s.firstOf(s.getenv(EnvOllamaModel), e.Model)
		if d, err := strconv.Atoi(s.getenv(EnvOllamaDimension)); err == nil && d > 0 {
			e.Dimensions = d
		}
	}

	return e
}

// Save persists application settings in one write. Environment overrides
// are not written. An empty API key or zero dimensions leave the stored
// value untouched.
func (s *SettingsService) Save(settings *domain.AppSettings) error {
	values := map[string]any{
		keyDatabasePath:  settings.Storage.Path,
		keyRegistryPath:  settings.Registry.Path,
		keySearchLimit:   settings.Search.Limit,
		keyEmbedProvider: settings.Embedding.Provider.String(),
		keyEmbedModel:    settings.Embedding.Model,
		keyEmbedBaseURL:  settings.Embedding.BaseURL,
	}
	if settings.Embedding.APIKey != "" {
		values[keyEmbedAPIKey] = settings.Embedding.APIKey
	}
	if settings.Embedding.Dimensions > 0 {
		values[keyEmbedDims] = settings.Embedding.Dimensions
	}

	if err := s.configStore.Update(values); err != nil {
		return fmt.Errorf("saving settings to %s: %w", s.configStore.Path(), err)
	}
	return nil
}

// SetEmbeddingProvider configures the embedding provider.
func (s *SettingsService) SetEmbeddingProvider(provider domain.EmbeddingProvider, model, apiKey string) error {
	if !provider.IsValid() {
		return fmt.Errorf("%w: invalid embedding provider: %s", domain.ErrInvalidInput, provider)
	}
	if provider.RequiresAPIKey() && apiKey == "" {
		return fmt.Errorf("%w: API key required for %s", domain.ErrInvalidInput, provider)
	}

	settings, err := s.Get()
	if err != nil {
		return err
	}

	settings.Embedding = domain.EmbeddingSettings{
		Provider: provider,
		Model:    s.firstOf(model, domain.DefaultEmbeddingModels()[provider]),
		APIKey:   apiKey,
	}
	if provider == domain.EmbeddingProviderOllama {
		settings.Embedding.BaseURL = "http://localhost:11434"
	}

	return s.Save(settings)
}

// GetDefaults returns default settings.
func (s *SettingsService) GetDefaults() domain.AppSettings {
	return domain.DefaultAppSettings()
}

// firstOf returns the first non-empty value.
func (s *SettingsService) firstOf(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
