package driving

import (
	"context"

	"github.com/custodia-labs/alexandria/internal/core/domain"
)

// SearchService answers natural-language queries over every indexed source.
type SearchService interface {
	// Search ranks chunks by fusing keyword and vector results. If the query
	// cannot be embedded, keyword results alone are returned.
	Search(ctx context.Context, query string, opts domain.SearchOptions) ([]domain.SearchResult, error)
}
