package domain

const unknownDescription = "Unknown"

// EmbeddingProvider identifies an embedding backend.
type EmbeddingProvider string

// Available embedding providers.
const (
	// EmbeddingProviderVoyage is the Voyage AI cloud API.
	EmbeddingProviderVoyage EmbeddingProvider = "voyage"

	// EmbeddingProviderOllama is a local Ollama daemon.
	EmbeddingProviderOllama EmbeddingProvider = "ollama"

	// EmbeddingProviderOpenAI is an OpenAI-compatible embeddings API.
	EmbeddingProviderOpenAI EmbeddingProvider = "openai"

	// EmbeddingProviderTransformers is an in-process model. It is a valid
	// name but has no backend in this build.
	EmbeddingProviderTransformers EmbeddingProvider = "transformers"
)

// AllEmbeddingProviders returns every recognised provider name.
func AllEmbeddingProviders() []EmbeddingProvider {
	return []EmbeddingProvider{
		EmbeddingProviderVoyage,
		EmbeddingProviderOllama,
		EmbeddingProviderOpenAI,
		EmbeddingProviderTransformers,
	}
}

// IsValid returns true if the provider is recognised.
func (p EmbeddingProvider) IsValid() bool {
	switch p {
	case EmbeddingProviderVoyage, EmbeddingProviderOllama,
		EmbeddingProviderOpenAI, EmbeddingProviderTransformers:
		return true
	default:
		return false
	}
}

// RequiresAPIKey returns true if the provider needs an API key.
func (p EmbeddingProvider) RequiresAPIKey() bool {
	return p == EmbeddingProviderVoyage || p == EmbeddingProviderOpenAI
}

// String returns the string representation.
func (p EmbeddingProvider) String() string {
	return string(p)
}

// Description returns a human-readable description of the provider.
func (p EmbeddingProvider) Description() string {
	switch p {
	case EmbeddingProviderVoyage:
		return "Voyage AI (cloud)"
	case EmbeddingProviderOllama:
		return "Ollama (local)"
	case EmbeddingProviderOpenAI:
		return "OpenAI (cloud)"
	case EmbeddingProviderTransformers:
		return "Transformers (in-process)"
	default:
		return unknownDescription
	}
}

// DefaultEmbeddingModels returns default models for each provider.
func DefaultEmbeddingModels() map[EmbeddingProvider]string {
	return map[EmbeddingProvider]string{
		EmbeddingProviderVoyage:       "voyage-3",
		EmbeddingProviderOllama:       "bge-large",
		EmbeddingProviderOpenAI:       "text-embedding-3-small",
		EmbeddingProviderTransformers: "Xenova/all-MiniLM-L6-v2",
	}
}

// DefaultEmbeddingDimensions returns the vector size of each default model.
func DefaultEmbeddingDimensions() map[EmbeddingProvider]int {
	return map[EmbeddingProvider]int{
		EmbeddingProviderVoyage:       1024,
		EmbeddingProviderOllama:       1024,
		EmbeddingProviderOpenAI:       1536,
		EmbeddingProviderTransformers: 384,
	}
}

// DefaultDimension is used when a store is created without one.
const DefaultDimension = 1024

// EmbeddingSettings configures the embedding provider.
type EmbeddingSettings struct {
	// Provider selects the backend.
	Provider EmbeddingProvider

	// Model is the provider-specific model name.
	Model string

	// BaseURL overrides the provider endpoint.
	BaseURL string

	// APIKey authenticates cloud providers.
	APIKey string

	// Dimensions overrides the model's vector size (ollama only).
	Dimensions int
}

// IsConfigured returns true if the provider has what it needs to run.
func (e EmbeddingSettings) IsConfigured() bool {
	if !e.Provider.IsValid() {
		return false
	}
	if e.Provider.RequiresAPIKey() && e.APIKey == "" {
		return false
	}
	return true
}

// StorageSettings locates the database.
type StorageSettings struct {
	// Path is the SQLite database file.
	Path string
}

// RegistrySettings locates the registry file.
type RegistrySettings struct {
	// Path is the apis.yml file.
	Path string
}

// SearchSettings configures query defaults.
type SearchSettings struct {
	// Limit is the default result count.
	Limit int
}

// AppSettings holds all user-configurable settings.
type AppSettings struct {
	Storage   StorageSettings
	Registry  RegistrySettings
	Search    SearchSettings
	Embedding EmbeddingSettings
}

// DefaultAppSettings returns settings with sensible defaults.
// Paths are left empty; the settings service fills them relative to the
// user's home directory.
func DefaultAppSettings() AppSettings {
	return AppSettings{
		Search: SearchSettings{
			Limit: DefaultSearchLimit,
		},
		Embedding: EmbeddingSettings{
			Provider: EmbeddingProviderVoyage,
			Model:    DefaultEmbeddingModels()[EmbeddingProviderVoyage],
		},
	}
}
