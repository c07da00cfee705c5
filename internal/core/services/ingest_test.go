package services

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/alexandria/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/alexandria/internal/core/domain"
	"github.com/custodia-labs/alexandria/internal/core/identity"
)

// ingestFixture wires the orchestrator to a real store with fake parsers
// and a deterministic embedder.
type ingestFixture struct {
	store    *sqlite.Store
	orch     *IngestOrchestrator
	spec     *fakeSpecParser
	markdown *fakeMarkdownParser
	embedder *mockEmbeddingService

	specPath string
	docsPath string
}

func newIngestFixture(t *testing.T) *ingestFixture {
	t.Helper()

	dir := t.TempDir()
	store, err := sqlite.NewStore(filepath.Join(dir, "test.db"), 3)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	f := &ingestFixture{
		store:    store,
		spec:     &fakeSpecParser{specs: make(map[string]map[string]string)},
		markdown: &fakeMarkdownParser{},
		embedder: &mockEmbeddingService{dims: 3},
		specPath: filepath.Join(dir, "openapi.yaml"),
		docsPath: filepath.Join(dir, "docs"),
	}
	f.orch = NewIngestOrchestrator(store.SourceStore(), store.ChunkStore(), f.embedder, f.spec, f.markdown)

	f.setSpec(t, "v1", map[string]string{"/payments": "create a payment", "/refunds": "refund a payment"})
	writeFile(t, filepath.Join(f.docsPath, "guide.md"), "# Guide")
	writeFile(t, filepath.Join(f.docsPath, "glossary.md"), "# Glossary")
	return f
}

// setSpec writes the spec file (changing the source hash) and sets the
// endpoints the parser will return for it.
func (f *ingestFixture) setSpec(t *testing.T, raw string, endpoints map[string]string) {
	t.Helper()
	writeFile(t, f.specPath, raw)
	f.spec.specs[f.specPath] = endpoints
}

func (f *ingestFixture) ingest(t *testing.T, opts domain.IngestOptions) *domain.IngestResult {
	t.Helper()
	result, err := f.orch.IngestAPI(context.Background(), "payments", f.specPath, f.docsPath, opts)
	require.NoError(t, err)
	return result
}

func (f *ingestFixture) storedChunks(t *testing.T) []domain.Chunk {
	t.Helper()
	chunks, err := f.store.ChunkStore().GetChunksBySource(context.Background(), identity.SourceID("payments"))
	require.NoError(t, err)
	return chunks
}

func TestIngestAPI_FirstIngest(t *testing.T) {
	f := newIngestFixture(t)

	result := f.ingest(t, domain.IngestOptions{})
	assert.Equal(t, "payments", result.Source)
	assert.False(t, result.Unchanged)
	assert.Equal(t, 4, result.Total)
	assert.Equal(t, 4, result.Embedded)
	assert.Zero(t, result.Skipped)
	assert.Zero(t, result.Deleted)
	assert.Len(t, f.storedChunks(t), 4)

	source, err := f.store.SourceStore().GetByName(context.Background(), "payments")
	require.NoError(t, err)
	assert.Equal(t, identity.SourceID("payments"), source.ID)
	assert.Equal(t, "1.0.0", source.Version)
	assert.Equal(t, "openapi: 3.0.0", source.SpecContent)
	assert.True(t, filepath.IsAbs(source.SpecPath))
	assert.NotEmpty(t, source.SourceHash)
}

func TestIngestAPI_UnchangedSourceIsSkipped(t *testing.T) {
	f := newIngestFixture(t)
	f.ingest(t, domain.IngestOptions{})
	calls, embedded := f.spec.calls, f.embedder.embeddedCount()

	result := f.ingest(t, domain.IngestOptions{})
	assert.True(t, result.Unchanged)
	assert.Equal(t, "  unchanged, skipping", result.Summary())
	assert.Equal(t, calls, f.spec.calls, "parser not invoked")
	assert.Equal(t, embedded, f.embedder.embeddedCount(), "nothing embedded")
}

func TestIngestAPI_ForceSkipsUnchangedChunks(t *testing.T) {
	f := newIngestFixture(t)
	f.ingest(t, domain.IngestOptions{})
	embedded := f.embedder.embeddedCount()

	result := f.ingest(t, domain.IngestOptions{Force: true})
	assert.False(t, result.Unchanged)
	assert.Equal(t, 4, result.Total)
	assert.Zero(t, result.Embedded)
	assert.Equal(t, 4, result.Skipped)
	assert.Equal(t, embedded, f.embedder.embeddedCount())
}

func TestIngestAPI_PartialChange(t *testing.T) {
	f := newIngestFixture(t)
	f.ingest(t, domain.IngestOptions{})

	f.setSpec(t, "v2", map[string]string{"/payments": "create a payment", "/refunds": "refund part of a payment"})
	result := f.ingest(t, domain.IngestOptions{})

	assert.Equal(t, 1, result.Embedded)
	assert.Equal(t, 3, result.Skipped)
	assert.Zero(t, result.Deleted)

	chunk, err := f.store.ChunkStore().GetChunk(context.Background(), identity.EndpointID(identity.SourceID("payments"), "GET", "/refunds"))
	require.NoError(t, err)
	assert.Equal(t, "refund part of a payment", chunk.Content)
}

func TestIngestAPI_OrphansDeleted(t *testing.T) {
	f := newIngestFixture(t)
	f.ingest(t, domain.IngestOptions{})

	f.setSpec(t, "v2", map[string]string{"/payments": "create a payment"})
	result := f.ingest(t, domain.IngestOptions{})

	assert.Equal(t, 3, result.Total)
	assert.Zero(t, result.Embedded)
	assert.Equal(t, 1, result.Deleted)

	_, err := f.store.ChunkStore().GetChunk(context.Background(), identity.EndpointID(identity.SourceID("payments"), "GET", "/refunds"))
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.Len(t, f.storedChunks(t), 3)
}

func TestIngestAPI_EmbeddingFailureWritesNothing(t *testing.T) {
	f := newIngestFixture(t)
	f.ingest(t, domain.IngestOptions{})
	before := f.storedChunks(t)
	source, err := f.store.SourceStore().GetByName(context.Background(), "payments")
	require.NoError(t, err)

	f.setSpec(t, "v2", map[string]string{"/payments": "changed", "/orders": "new"})
	f.embedder.embedErr = errors.New("voyage: 503")

	_, err = f.orch.IngestAPI(context.Background(), "payments", f.specPath, f.docsPath, domain.IngestOptions{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "503")

	assert.ElementsMatch(t, before, f.storedChunks(t))
	after, err := f.store.SourceStore().GetByName(context.Background(), "payments")
	require.NoError(t, err)
	assert.Equal(t, source.SourceHash, after.SourceHash, "hash not advanced, so the next run retries")

	f.embedder.embedErr = nil
	result := f.ingest(t, domain.IngestOptions{})
	assert.False(t, result.Unchanged)
	assert.Equal(t, 2, result.Embedded)
	assert.Equal(t, 1, result.Deleted)
}

func TestIngestAPI_EmbeddingCountMismatch(t *testing.T) {
	f := newIngestFixture(t)
	f.embedder.short = true

	_, err := f.orch.IngestAPI(context.Background(), "payments", f.specPath, f.docsPath, domain.IngestOptions{})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrEmbeddingUnavailable)
	assert.False(t, domain.IsFatal(err))
	assert.Empty(t, f.storedChunks(t))
}

func TestIngestAPI_DimensionMismatchIsFatal(t *testing.T) {
	f := newIngestFixture(t)
	f.embedder.badDim = 5

	_, err := f.orch.IngestAPI(context.Background(), "payments", f.specPath, f.docsPath, domain.IngestOptions{})
	require.Error(t, err)

	var mismatch *domain.DimensionMismatchError
	require.ErrorAs(t, err, &mismatch)
	assert.Equal(t, 3, mismatch.Stored)
	assert.Equal(t, 5, mismatch.Requested)
	assert.True(t, domain.IsFatal(err))
	assert.Empty(t, f.storedChunks(t))
}

func TestIngestAPI_ParseErrorWritesNothing(t *testing.T) {
	f := newIngestFixture(t)
	f.spec.err = errors.New("yaml: line 3: mapping values are not allowed")

	_, err := f.orch.IngestAPI(context.Background(), "payments", f.specPath, f.docsPath, domain.IngestOptions{})
	require.Error(t, err)

	_, err = f.store.SourceStore().GetByName(context.Background(), "payments")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestIngestAPI_MissingDocsDirContributesNothing(t *testing.T) {
	f := newIngestFixture(t)

	result, err := f.orch.IngestAPI(context.Background(), "payments", f.specPath, filepath.Join(t.TempDir(), "absent"), domain.IngestOptions{})
	require.NoError(t, err)
	assert.Equal(t, 2, result.Total)
}

func TestIngestAPI_InvalidInput(t *testing.T) {
	f := newIngestFixture(t)
	ctx := context.Background()

	_, err := f.orch.IngestAPI(ctx, "", f.specPath, "", domain.IngestOptions{})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = f.orch.IngestAPI(ctx, "payments", "", "", domain.IngestOptions{})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = f.orch.IngestAPI(ctx, "payments", filepath.Join(t.TempDir(), "missing.yaml"), "", domain.IngestOptions{})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestIngestDocs(t *testing.T) {
	f := newIngestFixture(t)
	ctx := context.Background()

	result, err := f.orch.IngestDocs(ctx, "handbook", f.docsPath, domain.IngestOptions{})
	require.NoError(t, err)
	assert.Equal(t, 2, result.Total)
	assert.Equal(t, 2, result.Embedded)

	source, err := f.store.SourceStore().GetByName(ctx, "handbook")
	require.NoError(t, err)
	assert.False(t, source.HasSpec())
	assert.Empty(t, source.SpecContent)

	again, err := f.orch.IngestDocs(ctx, "handbook", f.docsPath, domain.IngestOptions{})
	require.NoError(t, err)
	assert.True(t, again.Unchanged)

	writeFile(t, filepath.Join(f.docsPath, "faq.md"), "# FAQ")
	third, err := f.orch.IngestDocs(ctx, "handbook", f.docsPath, domain.IngestOptions{})
	require.NoError(t, err)
	assert.Equal(t, 1, third.Embedded)
	assert.Equal(t, 2, third.Skipped)
}

func TestIngestDocs_MissingDirectory(t *testing.T) {
	f := newIngestFixture(t)

	_, err := f.orch.IngestDocs(context.Background(), "handbook", filepath.Join(t.TempDir(), "nope"), domain.IngestOptions{})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Contains(t, err.Error(), "docs path does not exist")
}

func TestIngest_NoEmbedder(t *testing.T) {
	f := newIngestFixture(t)
	orch := NewIngestOrchestrator(f.store.SourceStore(), f.store.ChunkStore(), nil, f.spec, f.markdown)

	_, err := orch.IngestAPI(context.Background(), "payments", f.specPath, f.docsPath, domain.IngestOptions{})
	assert.ErrorIs(t, err, domain.ErrEmbeddingUnavailable)
}

func TestCheckUniqueIDs(t *testing.T) {
	assert.NoError(t, checkUniqueIDs([]domain.Chunk{{ID: "a"}, {ID: "b"}}))

	err := checkUniqueIDs([]domain.Chunk{{ID: "a"}, {ID: "b"}, {ID: "a"}})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Contains(t, err.Error(), "duplicate chunk id a")
}
