package driving

import (
	"context"

	"github.com/custodia-labs/alexandria/internal/core/domain"
)

// IngestService drives ingestion runs.
type IngestService interface {
	// IngestAPI ingests an OpenAPI spec and an optional docs directory.
	IngestAPI(ctx context.Context, name, specPath, docsPath string, opts domain.IngestOptions) (*domain.IngestResult, error)

	// IngestDocs ingests a standalone docs directory.
	IngestDocs(ctx context.Context, name, docsPath string, opts domain.IngestOptions) (*domain.IngestResult, error)

	// IngestRegistry ingests every entry sequentially. Recoverable failures are
	// collected in the summary; a fatal error stops the batch and is returned
	// together with the partial summary.
	IngestRegistry(ctx context.Context, entries []domain.RegistryEntry, opts domain.IngestOptions) (*domain.BatchSummary, error)
}
