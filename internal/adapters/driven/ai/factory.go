// Package ai provides factory functions for creating embedding service adapters.
package ai

import (
	"fmt"
	"strings"

	ollamaembed "github.com/custodia-labs/alexandria/internal/adapters/driven/embedding/ollama"
	openaiembed "github.com/custodia-labs/alexandria/internal/adapters/driven/embedding/openai"
	voyageembed "github.com/custodia-labs/alexandria/internal/adapters/driven/embedding/voyage"
	"github.com/custodia-labs/alexandria/internal/core/domain"
	"github.com/custodia-labs/alexandria/internal/core/ports/driven"
)

// CreateEmbeddingService creates the embedding service the settings select.
// An empty provider selects voyage.
func CreateEmbeddingService(settings domain.EmbeddingSettings) (driven.EmbeddingService, error) {
	if settings.Provider == "" {
		settings.Provider = domain.EmbeddingProviderVoyage
	}

	switch settings.Provider {
	case domain.EmbeddingProviderVoyage:
		return createVoyageEmbedding(settings)

	case domain.EmbeddingProviderOllama:
		return createOllamaEmbedding(settings)

	case domain.EmbeddingProviderOpenAI:
		return createOpenAIEmbedding(settings)

	case domain.EmbeddingProviderTransformers:
		return nil, fmt.Errorf("%w: the transformers provider is not available in this build, use voyage, ollama or openai",
			domain.ErrConfiguration)

	default:
		return nil, fmt.Errorf("%w: Invalid EMBEDDING_PROVIDER %q. Valid options: %s",
			domain.ErrConfiguration, settings.Provider, validProviders())
	}
}

func validProviders() string {
	names := make([]string, 0, len(domain.AllEmbeddingProviders()))
	for _, p := range domain.AllEmbeddingProviders() {
		names = append(names, p.String())
	}
	return strings.Join(names, ", ")
}

// createVoyageEmbedding creates a Voyage AI embedding service.
func createVoyageEmbedding(settings domain.EmbeddingSettings) (driven.EmbeddingService, error) {
	svc, err := voyageembed.NewEmbeddingService(voyageembed.Config{
		APIKey:     settings.APIKey,
		BaseURL:    settings.BaseURL,
		Model:      settings.Model,
		Dimensions: settings.Dimensions,
	})
	if err != nil {
		return nil, err
	}
	return svc, nil
}

// createOllamaEmbedding creates an Ollama embedding service.
func createOllamaEmbedding(settings domain.EmbeddingSettings) (driven.EmbeddingService, error) {
	svc, err := ollamaembed.NewEmbeddingService(ollamaembed.Config{
		BaseURL:    settings.BaseURL,
		Model:      settings.Model,
		Dimensions: settings.Dimensions,
	})
	if err != nil {
		return nil, err
	}
	return svc, nil
}

// createOpenAIEmbedding creates an OpenAI embedding service.
func createOpenAIEmbedding(settings domain.EmbeddingSettings) (driven.EmbeddingService, error) {
	svc, err := openaiembed.NewEmbeddingService(openaiembed.Config{
		APIKey:     settings.APIKey,
		BaseURL:    settings.BaseURL,
		Model:      settings.Model,
		Dimensions: settings.Dimensions,
	})
	if err != nil {
		return nil, err
	}
	return svc, nil
}
