package driven

import (
	"context"

	"github.com/custodia-labs/alexandria/internal/core/domain"
)

// SearchEngine provides full-text search operations.
// Backed by SQLite FTS5.
type SearchEngine interface {
	// Search runs a match expression made of quoted literal terms and returns
	// chunk IDs in the engine's relevance order, best first.
	Search(ctx context.Context, match string, limit int, filter domain.SearchFilter) ([]SearchHit, error)
}

// SearchHit represents a search result from the engine.
type SearchHit struct {
	// ChunkID is the matched chunk.
	ChunkID string

	// Score is the engine's relevance score (FTS5 bm25, lower is better).
	Score float64
}
