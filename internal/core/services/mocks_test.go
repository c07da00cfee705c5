package services

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/custodia-labs/alexandria/internal/core/domain"
	"github.com/custodia-labs/alexandria/internal/core/identity"
	"github.com/custodia-labs/alexandria/internal/core/ports/driven"
)

// --- Mock implementations ---

// mockSearchEngine implements driven.SearchEngine for testing.
type mockSearchEngine struct {
	hits      []driven.SearchHit
	searchErr error

	mu        sync.Mutex
	lastMatch string
	lastLimit int
}

func (m *mockSearchEngine) Search(_ context.Context, match string, limit int, _ domain.SearchFilter) ([]driven.SearchHit, error) {
	m.mu.Lock()
	m.lastMatch, m.lastLimit = match, limit
	m.mu.Unlock()
	if m.searchErr != nil {
		return nil, m.searchErr
	}
	if limit > len(m.hits) {
		return m.hits, nil
	}
	return m.hits[:limit], nil
}

// mockVectorIndex implements driven.VectorIndex for testing.
type mockVectorIndex struct {
	hits      []driven.VectorHit
	searchErr error

	mu     sync.Mutex
	calls  int
	lastK  int
	filter domain.SearchFilter
}

func (m *mockVectorIndex) Search(_ context.Context, _ []float32, k int, filter domain.SearchFilter) ([]driven.VectorHit, error) {
	m.mu.Lock()
	m.calls++
	m.lastK, m.filter = k, filter
	m.mu.Unlock()
	if m.searchErr != nil {
		return nil, m.searchErr
	}
	if k > len(m.hits) {
		return m.hits, nil
	}
	return m.hits[:k], nil
}

// mockChunkStore implements the read side of driven.ChunkStore for testing.
type mockChunkStore struct {
	chunks map[string]domain.Chunk
	err    error
}

func newMockChunkStore(ids ...string) *mockChunkStore {
	m := &mockChunkStore{chunks: make(map[string]domain.Chunk)}
	for _, id := range ids {
		m.chunks[id] = domain.Chunk{ID: id, SourceID: "s1", Title: "title " + id, Kind: domain.ChunkKindGuide}
	}
	return m
}

func (m *mockChunkStore) UpsertChunk(_ context.Context, _ domain.EmbeddedChunk) error { return nil }
func (m *mockChunkStore) DeleteChunk(_ context.Context, _ string) error             { return nil }
func (m *mockChunkStore) DeleteChunksBySource(_ context.Context, _ string) error    { return nil }
func (m *mockChunkStore) Commit(_ context.Context, _ driven.IngestCommit) error     { return nil }
func (m *mockChunkStore) Dimension() int                                            { return 3 }

func (m *mockChunkStore) GetChunk(_ context.Context, id string) (*domain.Chunk, error) {
	c, ok := m.chunks[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &c, nil
}

func (m *mockChunkStore) GetChunksByIDs(_ context.Context, ids []string) ([]domain.Chunk, error) {
	if m.err != nil {
		return nil, m.err
	}
	var out []domain.Chunk
	for _, id := range ids {
		if c, ok := m.chunks[id]; ok {
			out = append(out, c)
		}
	}
	return out, nil
}

func (m *mockChunkStore) GetChunksBySource(_ context.Context, sourceID string, kinds ...domain.ChunkKind) ([]domain.Chunk, error) {
	filter := domain.SearchFilter{SourceIDs: []string{sourceID}, Kinds: kinds}
	var out []domain.Chunk
	for _, c := range m.chunks {
		if filter.Allows(c) {
			out = append(out, c)
		}
	}
	return out, m.err
}

// mockSourceStore implements driven.SourceStore for testing.
type mockSourceStore struct {
	sources map[string]domain.Source
	err     error
	deleted []string
}

func newMockSourceStore(sources ...domain.Source) *mockSourceStore {
	m := &mockSourceStore{sources: make(map[string]domain.Source)}
	for _, s := range sources {
		m.sources[s.ID] = s
	}
	return m
}

func (m *mockSourceStore) Save(_ context.Context, s domain.Source) error {
	m.sources[s.ID] = s
	return m.err
}

func (m *mockSourceStore) Get(_ context.Context, id string) (*domain.Source, error) {
	if m.err != nil {
		return nil, m.err
	}
	s, ok := m.sources[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &s, nil
}

func (m *mockSourceStore) GetByName(_ context.Context, name string) (*domain.Source, error) {
	if m.err != nil {
		return nil, m.err
	}
	for _, s := range m.sources {
		if s.Name == name {
			return &s, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *mockSourceStore) List(_ context.Context) ([]domain.Source, error) {
	var out []domain.Source
	for _, s := range m.sources {
		out = append(out, s)
	}
	return out, m.err
}

func (m *mockSourceStore) Delete(_ context.Context, id string) error {
	m.deleted = append(m.deleted, id)
	delete(m.sources, id)
	return m.err
}

// mockEmbeddingService implements driven.EmbeddingService for testing.
// Vectors are derived from text length so they are deterministic.
type mockEmbeddingService struct {
	dims     int
	embedErr error
	queryErr error

	mu       sync.Mutex
	embedded []string
	short    bool // return one vector fewer than asked
	badDim   int  // when set, vectors have this length
}

func (m *mockEmbeddingService) EmbedDocuments(_ context.Context, texts []string) ([][]float32, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.embedErr != nil {
		return nil, m.embedErr
	}
	m.embedded = append(m.embedded, texts...)
	n := len(texts)
	if m.short && n > 0 {
		n--
	}
	out := make([][]float32, n)
	for i := range out {
		out[i] = m.vector(texts[i])
	}
	return out, nil
}

func (m *mockEmbeddingService) EmbedQuery(_ context.Context, text string) ([]float32, error) {
	if m.queryErr != nil {
		return nil, m.queryErr
	}
	return m.vector(text), nil
}

func (m *mockEmbeddingService) vector(text string) []float32 {
	dim := m.dims
	if m.badDim > 0 {
		dim = m.badDim
	}
	v := make([]float32, dim)
	for i := range v {
		v[i] = float32(len(text)%7+i) / 10
	}
	return v
}

func (m *mockEmbeddingService) Dimensions() int             { return m.dims }
func (m *mockEmbeddingService) ModelName() string           { return "mock" }
func (m *mockEmbeddingService) Ping(_ context.Context) error { return nil }
func (m *mockEmbeddingService) Close() error                { return nil }

func (m *mockEmbeddingService) embeddedCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.embedded)
}

// fakeSpecParser turns a spec file into chunks from a fixed table of
// endpoint path -> body, keyed by spec path.
type fakeSpecParser struct {
	specs map[string]map[string]string
	err   error
	calls int
}

func (p *fakeSpecParser) ParseSpec(_ context.Context, path, sourceID string) (*driven.SpecDocument, error) {
	p.calls++
	if p.err != nil {
		return nil, p.err
	}
	endpoints, ok := p.specs[path]
	if !ok {
		return nil, fmt.Errorf("%w: no spec at %s", domain.ErrInvalidInput, path)
	}
	doc := &driven.SpecDocument{Title: "Test API", Version: "1.0.0", Raw: []byte("openapi: 3.0.0")}
	for route, body := range endpoints {
		doc.Chunks = append(doc.Chunks, domain.Chunk{
			ID:          identity.EndpointID(sourceID, "get", route),
			SourceID:    sourceID,
			Kind:        domain.ChunkKindEndpoint,
			Title:       "GET " + route,
			Content:     body,
			ContentHash: identity.ContentHash(body),
			Metadata:    map[string]any{"path": route, "method": "GET"},
		})
	}
	return doc, nil
}

// fakeMarkdownParser emits one chunk per .md file with the file's name as content.
type fakeMarkdownParser struct {
	err error
}

func (p *fakeMarkdownParser) ParseFile(_ context.Context, path, sourceID string) ([]domain.Chunk, error) {
	return nil, errors.New("not used")
}

func (p *fakeMarkdownParser) ParseDir(_ context.Context, dir, sourceID string) ([]domain.Chunk, error) {
	if p.err != nil {
		return nil, p.err
	}
	files, err := markdownFiles(dir)
	if err != nil {
		return nil, err
	}
	var chunks []domain.Chunk
	for _, f := range files {
		body := "doc " + f
		chunks = append(chunks, domain.Chunk{
			ID:          identity.DocID(sourceID, f, []string{"Intro"}, -1),
			SourceID:    sourceID,
			Kind:        domain.ChunkKindGuide,
			Title:       "Intro",
			Content:     body,
			ContentHash: identity.ContentHash(body),
		})
	}
	return chunks, nil
}
