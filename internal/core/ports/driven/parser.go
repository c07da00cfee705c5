package driven

import (
	"context"

	"github.com/custodia-labs/alexandria/internal/core/domain"
)

// SpecDocument is the result of parsing an API spec.
type SpecDocument struct {
	// Title is info.title.
	Title string

	// Version is info.version.
	Version string

	// Raw is the spec file as read.
	Raw []byte

	// Chunks are the overview, endpoint and schema chunks.
	Chunks []domain.Chunk
}

// SpecParser turns an API spec file into chunks.
// Identical input must yield identical chunk IDs and content hashes.
type SpecParser interface {
	ParseSpec(ctx context.Context, path, sourceID string) (*SpecDocument, error)
}

// MarkdownParser turns markdown files into section chunks.
// Identical input must yield identical chunk IDs and content hashes.
type MarkdownParser interface {
	// ParseFile parses one markdown file.
	ParseFile(ctx context.Context, path, sourceID string) ([]domain.Chunk, error)

	// ParseDir parses every .md file in a directory, in filename order.
	ParseDir(ctx context.Context, dir, sourceID string) ([]domain.Chunk, error)
}
