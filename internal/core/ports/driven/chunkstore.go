package driven

import (
	"context"

	"github.com/custodia-labs/alexandria/internal/core/domain"
)

// IngestCommit is everything one ingestion run writes.
type IngestCommit struct {
	// Source is upserted with its new source hash.
	Source domain.Source

	// Upserts are the changed chunks with their fresh embeddings.
	Upserts []domain.EmbeddedChunk

	// Deletes are the ids of orphaned chunks.
	Deletes []string
}

// ChunkStore persists chunks. Every write keeps the record, its full-text
// entry and its vector in lockstep.
type ChunkStore interface {
	// UpsertChunk writes or replaces a chunk in all three views.
	UpsertChunk(ctx context.Context, chunk domain.EmbeddedChunk) error

	// DeleteChunk removes a chunk from all three views. Missing ids are not an error.
	DeleteChunk(ctx context.Context, id string) error

	// DeleteChunksBySource removes every chunk of a source.
	DeleteChunksBySource(ctx context.Context, sourceID string) error

	// GetChunk retrieves a chunk by ID. Returns domain.ErrNotFound if absent.
	GetChunk(ctx context.Context, id string) (*domain.Chunk, error)

	// GetChunksByIDs retrieves chunks in no particular order. Missing ids are omitted.
	GetChunksByIDs(ctx context.Context, ids []string) ([]domain.Chunk, error)

	// GetChunksBySource lists a source's chunks, optionally restricted to kinds.
	GetChunksBySource(ctx context.Context, sourceID string, kinds ...domain.ChunkKind) ([]domain.Chunk, error)

	// Commit applies an ingestion run in one transaction.
	Commit(ctx context.Context, commit IngestCommit) error

	// Dimension returns the fixed embedding dimension of the store.
	Dimension() int
}
