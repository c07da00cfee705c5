package driven

import (
	"context"

	"github.com/custodia-labs/alexandria/internal/core/domain"
)

// SourceStore persists source records.
type SourceStore interface {
	// Save inserts or replaces a source by ID. Mutable fields are last write wins.
	Save(ctx context.Context, source domain.Source) error

	// Get retrieves a source by ID. Returns domain.ErrNotFound if absent.
	Get(ctx context.Context, id string) (*domain.Source, error)

	// GetByName retrieves a source by name. Returns domain.ErrNotFound if absent.
	GetByName(ctx context.Context, name string) (*domain.Source, error)

	// List returns every source ordered by name.
	List(ctx context.Context) ([]domain.Source, error)

	// Delete removes a source and, by cascade, all of its chunks.
	Delete(ctx context.Context, id string) error
}
