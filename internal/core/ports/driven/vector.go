package driven

import (
	"context"

	"github.com/custodia-labs/alexandria/internal/core/domain"
)

// VectorIndex provides semantic similarity search operations.
type VectorIndex interface {
	// Search finds the k nearest neighbours to the query vector, then drops
	// those the filter rejects. Results are ordered by ascending distance.
	Search(ctx context.Context, query []float32, k int, filter domain.SearchFilter) ([]VectorHit, error)
}

// VectorHit represents a similarity search result.
type VectorHit struct {
	// ChunkID is the matched chunk.
	ChunkID string

	// Distance is the Euclidean distance to the query.
	Distance float64
}
