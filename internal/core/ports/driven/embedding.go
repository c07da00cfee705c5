// Package driven provides interfaces for infrastructure adapters (secondary/outbound ports).
package driven

import "context"

// EmbeddingService generates vector embeddings from text.
//
// Implementations may include:
//   - Voyage AI (voyage-3)
//   - Ollama (bge-large, nomic-embed-text)
//   - OpenAI-compatible APIs (text-embedding-3-small)
type EmbeddingService interface {
	// EmbedDocuments embeds texts for storage. Vectors are returned in input
	// order, one per text. Batching is the implementation's concern.
	EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error)

	// EmbedQuery embeds a single search query.
	EmbedQuery(ctx context.Context, text string) ([]float32, error)

	// Dimensions returns the embedding vector size (e.g., 384, 1024, 1536).
	// It must match the dimension the store was created with.
	Dimensions() int

	// ModelName returns the name of the embedding model being used.
	ModelName() string

	// Ping validates the service is reachable by making a lightweight test request.
	Ping(ctx context.Context) error

	// Close releases resources.
	Close() error
}
