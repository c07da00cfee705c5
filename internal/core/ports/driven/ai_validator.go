package driven

import (
	"context"

	"github.com/custodia-labs/alexandria/internal/core/domain"
)

// AIConfigValidator validates embedding provider configurations.
// Implementations verify that configurations are valid by testing connectivity
// to the underlying service.
type AIConfigValidator interface {
	// ValidateEmbedding creates the configured provider and pings it.
	ValidateEmbedding(ctx context.Context, settings domain.EmbeddingSettings) error
}
