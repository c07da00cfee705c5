package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEmbeddingProvider_IsValid(t *testing.T) {
	tests := []struct {
		name     string
		provider EmbeddingProvider
		expected bool
	}{
		{name: "voyage is valid", provider: EmbeddingProviderVoyage, expected: true},
		{name: "ollama is valid", provider: EmbeddingProviderOllama, expected: true},
		{name: "openai is valid", provider: EmbeddingProviderOpenAI, expected: true},
		{name: "transformers is valid", provider: EmbeddingProviderTransformers, expected: true},
		{name: "empty string is invalid", provider: EmbeddingProvider(""), expected: false},
		{name: "unknown provider is invalid", provider: EmbeddingProvider("cohere"), expected: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.provider.IsValid())
		})
	}
}

func TestEmbeddingProvider_RequiresAPIKey(t *testing.T) {
	assert.True(t, EmbeddingProviderVoyage.RequiresAPIKey())
	assert.True(t, EmbeddingProviderOpenAI.RequiresAPIKey())
	assert.False(t, EmbeddingProviderOllama.RequiresAPIKey())
	assert.False(t, EmbeddingProviderTransformers.RequiresAPIKey())
}

func TestEmbeddingProvider_Description(t *testing.T) {
	for _, p := range AllEmbeddingProviders() {
		assert.NotEqual(t, unknownDescription, p.Description(), p)
	}
	assert.Equal(t, unknownDescription, EmbeddingProvider("x").Description())
}

func TestDefaultEmbeddingTables_CoverAllProviders(t *testing.T) {
	models := DefaultEmbeddingModels()
	dims := DefaultEmbeddingDimensions()
	for _, p := range AllEmbeddingProviders() {
		assert.NotEmpty(t, models[p], p)
		assert.Positive(t, dims[p], p)
	}
}

func TestEmbeddingSettings_IsConfigured(t *testing.T) {
	t.Run("voyage without key", func(t *testing.T) {
		s := EmbeddingSettings{Provider: EmbeddingProviderVoyage}
		assert.False(t, s.IsConfigured())
	})

	t.Run("voyage with key", func(t *testing.T) {
		s := EmbeddingSettings{Provider: EmbeddingProviderVoyage, APIKey: "k"}
		assert.True(t, s.IsConfigured())
	})

	t.Run("ollama needs no key", func(t *testing.T) {
		s := EmbeddingSettings{Provider: EmbeddingProviderOllama}
		assert.True(t, s.IsConfigured())
	})

	t.Run("invalid provider", func(t *testing.T) {
		s := EmbeddingSettings{Provider: "nope"}
		assert.False(t, s.IsConfigured())
	})
}

func TestDefaultAppSettings(t *testing.T) {
	s := DefaultAppSettings()
	assert.Equal(t, EmbeddingProviderVoyage, s.Embedding.Provider)
	assert.Equal(t, "voyage-3", s.Embedding.Model)
	assert.Equal(t, DefaultSearchLimit, s.Search.Limit)
}
