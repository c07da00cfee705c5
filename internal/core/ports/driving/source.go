package driving

import (
	"context"

	"github.com/custodia-labs/alexandria/internal/core/domain"
)

// SourceService exposes indexed sources to external actors.
type SourceService interface {
	// List returns every indexed source.
	List(ctx context.Context) ([]domain.Source, error)

	// GetByName returns a source. Unknown names yield domain.ErrSourceNotFound.
	GetByName(ctx context.Context, name string) (*domain.Source, error)

	// Endpoints returns the endpoint chunks of a source.
	Endpoints(ctx context.Context, name string) ([]domain.Chunk, error)

	// Spec returns the raw spec text of a source.
	Spec(ctx context.Context, name string) (string, error)

	// Remove deletes a source and all of its chunks.
	Remove(ctx context.Context, name string) error
}
