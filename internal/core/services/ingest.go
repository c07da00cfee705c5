package services

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/custodia-labs/alexandria/internal/core/domain"
	"github.com/custodia-labs/alexandria/internal/core/identity"
	"github.com/custodia-labs/alexandria/internal/core/ports/driven"
	"github.com/custodia-labs/alexandria/internal/core/ports/driving"
	"github.com/custodia-labs/alexandria/internal/logger"
)

// Ensure IngestOrchestrator implements the interface.
var _ driving.IngestService = (*IngestOrchestrator)(nil)

// IngestOrchestrator drives ingestion runs: source-hash check, parse, diff,
// embed, then one atomic commit.
type IngestOrchestrator struct {
	sourceStore      driven.SourceStore
	chunkStore       driven.ChunkStore
	embeddingService driven.EmbeddingService
	specParser       driven.SpecParser
	markdownParser   driven.MarkdownParser

	// Runs are serialised; watch mode may trigger one while another is active.
	mu  sync.Mutex
	now func() time.Time
}

// NewIngestOrchestrator creates a new ingestion orchestrator.
func NewIngestOrchestrator(
	sourceStore driven.SourceStore,
	chunkStore driven.ChunkStore,
	embeddingService driven.EmbeddingService,
	specParser driven.SpecParser,
	markdownParser driven.MarkdownParser,
) *IngestOrchestrator {
	return &IngestOrchestrator{
		sourceStore:      sourceStore,
		chunkStore:       chunkStore,
		embeddingService: embeddingService,
		specParser:       specParser,
		markdownParser:   markdownParser,
		now:              time.Now,
	}
}

// IngestAPI ingests an OpenAPI spec plus an optional docs directory.
// A docs directory that does not exist contributes no chunks.
func (o *IngestOrchestrator) IngestAPI(
	ctx context.Context,
	name, specPath, docsPath string,
	opts domain.IngestOptions,
) (*domain.IngestResult, error) {
	if name == "" || specPath == "" {
		return nil, fmt.Errorf("%w: source name and spec path are required", domain.ErrInvalidInput)
	}

	o.mu.Lock()
	defer o.mu.Unlock()

	start := o.now()
	id := identity.SourceID(name)
	logger.Section("Ingest " + name)

	// 1. Source-level skip
	hash, err := ComputeSourceHash(specPath, docsPath)
	if err != nil {
		return nil, err
	}
	skip, err := o.unchanged(ctx, id, hash, opts)
	if err != nil {
		return nil, err
	}
	if skip {
		return &domain.IngestResult{Source: name, Unchanged: true, Duration: o.now().Sub(start)}, nil
	}

	// 2. Parse
	spec, err := o.specParser.ParseSpec(ctx, specPath, id)
	if err != nil {
		return nil, err
	}
	chunks := spec.Chunks
	if docsPath != "" {
		docChunks, err := o.markdownParser.ParseDir(ctx, docsPath, id)
		if err != nil {
			return nil, err
		}
		chunks = append(chunks, docChunks...)
	}
	logger.Debug("Parsed %d chunks (%d from spec)", len(chunks), len(spec.Chunks))

	source := domain.Source{
		ID:          id,
		Name:        name,
		Version:     spec.Version,
		SpecPath:    absPath(specPath),
		DocsPath:    absPath(docsPath),
		SourceHash:  hash,
		SpecContent: string(spec.Raw),
	}

	return o.ingestChunks(ctx, source, chunks, start)
}

// IngestDocs ingests a standalone markdown directory.
func (o *IngestOrchestrator) IngestDocs(
	ctx context.Context,
	name, docsPath string,
	opts domain.IngestOptions,
) (*domain.IngestResult, error) {
	if name == "" || docsPath == "" {
		return nil, fmt.Errorf("%w: source name and docs path are required", domain.ErrInvalidInput)
	}
	if _, err := os.Stat(docsPath); err != nil {
		return nil, fmt.Errorf("%w: docs path does not exist: %s", domain.ErrInvalidInput, docsPath)
	}

	o.mu.Lock()
	defer o.mu.Unlock()

	start := o.now()
	id := identity.SourceID(name)
	logger.Section("Ingest " + name)

	hash, err := ComputeSourceHash("", docsPath)
	if err != nil {
		return nil, err
	}
	skip, err := o.unchanged(ctx, id, hash, opts)
	if err != nil {
		return nil, err
	}
	if skip {
		return &domain.IngestResult{Source: name, Unchanged: true, Duration: o.now().Sub(start)}, nil
	}

	chunks, err := o.markdownParser.ParseDir(ctx, docsPath, id)
	if err != nil {
		return nil, err
	}
	logger.Debug("Parsed %d chunks", len(chunks))

	source := domain.Source{
		ID:         id,
		Name:       name,
		DocsPath:   absPath(docsPath),
		SourceHash: hash,
	}

	return o.ingestChunks(ctx, source, chunks, start)
}

// unchanged reports whether the stored source hash equals hash.
func (o *IngestOrchestrator) unchanged(
	ctx context.Context,
	sourceID, hash string,
	opts domain.IngestOptions,
) (bool, error) {
	if opts.Force {
		logger.Debug("Force: skipping source hash check")
		return false, nil
	}

	stored, err := o.sourceStore.Get(ctx, sourceID)
	if errors.Is(err, domain.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("get source: %w", err)
	}

	if stored.SourceHash == hash {
		logger.Info("Source hash unchanged, skipping")
		return true, nil
	}
	return false, nil
}

// ingestChunks runs DIFF, EMBED and COMMIT for a parsed source. Nothing is
// written unless every chunk that needs it has been embedded.
func (o *IngestOrchestrator) ingestChunks(
	ctx context.Context,
	source domain.Source,
	chunks []domain.Chunk,
	start time.Time,
) (*domain.IngestResult, error) {
	if err := checkUniqueIDs(chunks); err != nil {
		return nil, err
	}

	// 3. Diff against stored chunks
	stored, err := o.chunkStore.GetChunksBySource(ctx, source.ID)
	if err != nil {
		return nil, fmt.Errorf("get stored chunks: %w", err)
	}
	changes := DiffChunks(chunks, stored)
	logger.Debug("Diff: %d changed, %d skipped, %d orphaned",
		len(changes.Changed), changes.Skipped, len(changes.Orphans))

	// 4. Embed changed chunks before any write
	stopEmbed := logger.Timer("Embedding")
	upserts, err := o.embed(ctx, changes.Changed)
	stopEmbed()
	if err != nil {
		return nil, err
	}

	// 5. Commit source, upserts and orphan deletions together
	commit := driven.IngestCommit{
		Source:  source,
		Upserts: upserts,
		Deletes: changes.Orphans,
	}
	if err := o.chunkStore.Commit(ctx, commit); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}

	result := &domain.IngestResult{
		Source:   source.Name,
		Total:    len(chunks),
		Embedded: len(upserts),
		Skipped:  changes.Skipped,
		Deleted:  len(changes.Orphans),
		Duration: o.now().Sub(start),
	}
	logger.Info("%s:%s", source.Name, result.Summary())
	return result, nil
}

// embed pairs each changed chunk with a fresh embedding, checking the
// provider returned one vector of the store's dimension per chunk.
func (o *IngestOrchestrator) embed(ctx context.Context, changed []domain.Chunk) ([]domain.EmbeddedChunk, error) {
	if len(changed) == 0 {
		return nil, nil
	}
	if o.embeddingService == nil {
		return nil, fmt.Errorf("%w: no embedding provider configured", domain.ErrEmbeddingUnavailable)
	}

	texts := make([]string, len(changed))
	for i, c := range changed {
		texts[i] = c.Content
	}

	logger.Debug("Embedding %d chunks with %s", len(texts), o.embeddingService.ModelName())
	vectors, err := o.embeddingService.EmbedDocuments(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("embed: %w", err)
	}
	if len(vectors) != len(changed) {
		return nil, fmt.Errorf("%w: provider returned %d embeddings for %d chunks",
			domain.ErrEmbeddingUnavailable, len(vectors), len(changed))
	}

	dim := o.chunkStore.Dimension()
	now := o.now().UTC()
	out := make([]domain.EmbeddedChunk, len(changed))
	for i, c := range changed {
		if len(vectors[i]) != dim {
			return nil, &domain.DimensionMismatchError{Stored: dim, Requested: len(vectors[i])}
		}
		c.CreatedAt = now
		out[i] = domain.EmbeddedChunk{Chunk: c, Embedding: vectors[i]}
	}
	return out, nil
}

// checkUniqueIDs rejects a parse that yields the same id twice, which would
// otherwise silently drop a chunk.
func checkUniqueIDs(chunks []domain.Chunk) error {
	seen := make(map[string]bool, len(chunks))
	for _, c := range chunks {
		if seen[c.ID] {
			return fmt.Errorf("%w: duplicate chunk id %s", domain.ErrInvalidInput, c.ID)
		}
		seen[c.ID] = true
	}
	return nil
}

func absPath(p string) string {
	if p == "" {
		return ""
	}
	if abs, err := filepath.Abs(p); err == nil {
		return abs
	}
	return p
}
