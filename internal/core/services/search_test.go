package services

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/alexandria/internal/core/domain"
	"github.com/custodia-labs/alexandria/internal/core/ports/driven"
)

func keywordHits(ids ...string) []driven.SearchHit {
	hits := make([]driven.SearchHit, len(ids))
	for i, id := range ids {
		hits[i] = driven.SearchHit{ChunkID: id, Score: float64(-10 + i)}
	}
	return hits
}

func vectorHits(ids ...string) []driven.VectorHit {
	hits := make([]driven.VectorHit, len(ids))
	for i, id := range ids {
		hits[i] = driven.VectorHit{ChunkID: id, Distance: float64(i) / 10}
	}
	return hits
}

func resultIDs(results []domain.SearchResult) []string {
	ids := make([]string, len(results))
	for i, r := range results {
		ids[i] = r.Chunk.ID
	}
	return ids
}

func TestSanitizeMatchQuery(t *testing.T) {
	tests := []struct {
		name  string
		query string
		want  string
	}{
		{name: "plain words", query: "create payment", want: `"create" "payment"`},
		{name: "operators stripped", query: `user:name -deleted "quoted"`, want: `"user" "name" "deleted" "quoted"`},
		{name: "wildcard and grouping", query: "(pay*) ^boost ~near", want: `"pay" "boost" "near"`},
		{name: "punctuation-only tokens dropped", query: "refund ... ?? !", want: `"refund"`},
		{name: "path keeps slashes", query: "/v1/payments", want: `"/v1/payments"`},
		{name: "nothing left", query: "*** --- ()", want: ""},
		{name: "empty", query: "   ", want: ""},
		{name: "unicode letters kept", query: "café", want: `"café"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, sanitizeMatchQuery(tt.query))
		})
	}
}

func TestReciprocalRankFusion(t *testing.T) {
	keyword := []scoredChunk{{chunkID: "a"}, {chunkID: "b"}, {chunkID: "c"}}
	vector := []scoredChunk{{chunkID: "b"}, {chunkID: "d"}}

	merged := reciprocalRankFusion(keyword, vector, 60)
	require.Len(t, merged, 4)

	// b is rank 2 in keyword and rank 1 in vector.
	assert.Equal(t, "b", merged[0].chunkID)
	assert.InDelta(t, 1.0/62+1.0/61, merged[0].score, 1e-12)

	// a and d are both single-list rank 1 items: first-seen order wins.
	assert.Equal(t, "a", merged[1].chunkID)
	assert.InDelta(t, 1.0/61, merged[1].score, 1e-12)
	assert.Equal(t, "d", merged[2].chunkID)
	assert.InDelta(t, 1.0/62, merged[2].score, 1e-12)

	assert.Equal(t, "c", merged[3].chunkID)
	assert.InDelta(t, 1.0/63, merged[3].score, 1e-12)
}

func TestReciprocalRankFusion_TopInBoth(t *testing.T) {
	merged := reciprocalRankFusion(
		[]scoredChunk{{chunkID: "x"}},
		[]scoredChunk{{chunkID: "x"}},
		60,
	)
	require.Len(t, merged, 1)
	assert.InDelta(t, 2.0/61, merged[0].score, 1e-12)
}

func TestReciprocalRankFusion_Empty(t *testing.T) {
	assert.Empty(t, reciprocalRankFusion(nil, nil, 60))
}

func TestHybridSearch(t *testing.T) {
	ctx := context.Background()

	t.Run("fuses both branches", func(t *testing.T) {
		engine := &mockSearchEngine{hits: keywordHits("a", "b", "c")}
		vectors := &mockVectorIndex{hits: vectorHits("b", "d")}
		svc := NewSearchService(engine, vectors, newMockChunkStore("a", "b", "c", "d"), nil, nil)

		results, err := svc.HybridSearch(ctx, "payments", []float32{1, 0, 0}, domain.SearchOptions{})
		require.NoError(t, err)
		assert.Equal(t, []string{"b", "a", "d", "c"}, resultIDs(results))
		assert.InDelta(t, 1.0/62+1.0/61, results[0].Score, 1e-12)
	})

	t.Run("truncates to limit", func(t *testing.T) {
		engine := &mockSearchEngine{hits: keywordHits("a", "b", "c", "d", "e")}
		svc := NewSearchService(engine, &mockVectorIndex{}, newMockChunkStore("a", "b", "c", "d", "e"), nil, nil)

		results, err := svc.HybridSearch(ctx, "x", nil, domain.SearchOptions{Limit: 2})
		require.NoError(t, err)
		assert.Equal(t, []string{"a", "b"}, resultIDs(results))
		assert.Equal(t, 6, engine.lastLimit, "lexical branch over-fetches")
	})

	t.Run("default limit", func(t *testing.T) {
		engine := &mockSearchEngine{}
		svc := NewSearchService(engine, &mockVectorIndex{}, newMockChunkStore(), nil, nil)

		results, err := svc.HybridSearch(ctx, "x", nil, domain.SearchOptions{})
		require.NoError(t, err)
		assert.Empty(t, results)
		assert.NotNil(t, results)
		assert.Equal(t, domain.DefaultSearchLimit*domain.DefaultLexicalOverFetch, engine.lastLimit)
	})

	t.Run("filter widens vector k", func(t *testing.T) {
		vectors := &mockVectorIndex{hits: vectorHits("a", "b", "c", "d", "e", "f", "g", "h")}
		svc := NewSearchService(&mockSearchEngine{}, vectors, newMockChunkStore("a", "b", "c"), nil, nil)

		opts := domain.SearchOptions{Limit: 1, SourceID: "s1"}
		results, err := svc.HybridSearch(ctx, "x", []float32{1, 0, 0}, opts)
		require.NoError(t, err)
		assert.Equal(t, 15, vectors.lastK)
		assert.Equal(t, []string{"s1"}, vectors.filter.SourceIDs)
		assert.Equal(t, []string{"a"}, resultIDs(results))
	})

	t.Run("no filter uses fetch limit as k", func(t *testing.T) {
		vectors := &mockVectorIndex{}
		svc := NewSearchService(&mockSearchEngine{}, vectors, newMockChunkStore(), nil, nil)

		_, err := svc.HybridSearch(ctx, "x", []float32{1, 0, 0}, domain.SearchOptions{Limit: 4})
		require.NoError(t, err)
		assert.Equal(t, 12, vectors.lastK)
	})

	t.Run("custom fusion config", func(t *testing.T) {
		engine := &mockSearchEngine{}
		vectors := &mockVectorIndex{}
		cfg := domain.FusionConfig{K: 10, DefaultLimit: 5, OverFetch: 2, VectorFilterOverFetch: 4}
		svc := NewSearchService(engine, vectors, newMockChunkStore(), nil, nil, WithFusionConfig(cfg))

		_, err := svc.HybridSearch(ctx, "x", []float32{1}, domain.SearchOptions{Kinds: []domain.ChunkKind{domain.ChunkKindEndpoint}})
		require.NoError(t, err)
		assert.Equal(t, 10, engine.lastLimit)
		assert.Equal(t, 40, vectors.lastK)
	})

	t.Run("empty embedding skips vector branch", func(t *testing.T) {
		vectors := &mockVectorIndex{hits: vectorHits("a")}
		svc := NewSearchService(&mockSearchEngine{}, vectors, newMockChunkStore("a"), nil, nil)

		results, err := svc.HybridSearch(ctx, "x", nil, domain.SearchOptions{})
		require.NoError(t, err)
		assert.Empty(t, results)
		assert.Zero(t, vectors.calls)
	})

	t.Run("query without terms skips keyword branch", func(t *testing.T) {
		engine := &mockSearchEngine{hits: keywordHits("a")}
		svc := NewSearchService(engine, &mockVectorIndex{hits: vectorHits("b")}, newMockChunkStore("a", "b"), nil, nil)

		results, err := svc.HybridSearch(ctx, "***", []float32{1}, domain.SearchOptions{})
		require.NoError(t, err)
		assert.Equal(t, []string{"b"}, resultIDs(results))
		assert.Empty(t, engine.lastMatch)
	})

	t.Run("drops ids missing from store", func(t *testing.T) {
		engine := &mockSearchEngine{hits: keywordHits("a", "gone", "b")}
		svc := NewSearchService(engine, &mockVectorIndex{}, newMockChunkStore("a", "b"), nil, nil)

		results, err := svc.HybridSearch(ctx, "x", nil, domain.SearchOptions{})
		require.NoError(t, err)
		assert.Equal(t, []string{"a", "b"}, resultIDs(results))
	})

	t.Run("keyword failure degrades to vector", func(t *testing.T) {
		engine := &mockSearchEngine{searchErr: errors.New("fts5: syntax error")}
		svc := NewSearchService(engine, &mockVectorIndex{hits: vectorHits("b")}, newMockChunkStore("b"), nil, nil)

		results, err := svc.HybridSearch(ctx, "x", []float32{1}, domain.SearchOptions{})
		require.NoError(t, err)
		assert.Equal(t, []string{"b"}, resultIDs(results))
	})

	t.Run("vector failure degrades to keyword", func(t *testing.T) {
		vectors := &mockVectorIndex{searchErr: errors.New("dimension")}
		svc := NewSearchService(&mockSearchEngine{hits: keywordHits("a")}, vectors, newMockChunkStore("a"), nil, nil)

		results, err := svc.HybridSearch(ctx, "x", []float32{1}, domain.SearchOptions{})
		require.NoError(t, err)
		assert.Equal(t, []string{"a"}, resultIDs(results))
	})

	t.Run("both branches failing is an error", func(t *testing.T) {
		svc := NewSearchService(
			&mockSearchEngine{searchErr: errors.New("one")},
			&mockVectorIndex{searchErr: errors.New("two")},
			newMockChunkStore(), nil, nil)

		_, err := svc.HybridSearch(ctx, "x", []float32{1}, domain.SearchOptions{})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "one")
		assert.Contains(t, err.Error(), "two")
	})

	t.Run("fatal store error propagates", func(t *testing.T) {
		fatal := fmt.Errorf("%w: disk image is malformed", domain.ErrStoreFatal)
		svc := NewSearchService(
			&mockSearchEngine{searchErr: fatal},
			&mockVectorIndex{hits: vectorHits("a")},
			newMockChunkStore("a"), nil, nil)

		_, err := svc.HybridSearch(ctx, "x", []float32{1}, domain.SearchOptions{})
		require.Error(t, err)
		assert.ErrorIs(t, err, domain.ErrStoreFatal)
	})

	t.Run("closed store propagates", func(t *testing.T) {
		store := newMockChunkStore("a")
		store.err = domain.ErrStoreClosed
		svc := NewSearchService(&mockSearchEngine{hits: keywordHits("a")}, &mockVectorIndex{}, store, nil, nil)

		_, err := svc.HybridSearch(ctx, "x", nil, domain.SearchOptions{})
		assert.ErrorIs(t, err, domain.ErrStoreClosed)
	})
}

func TestSearchService_Search(t *testing.T) {
	ctx := context.Background()
	sources := newMockSourceStore(domain.Source{ID: "s1", Name: "stripe"})

	t.Run("embeds query and names sources", func(t *testing.T) {
		vectors := &mockVectorIndex{hits: vectorHits("b")}
		embedder := &mockEmbeddingService{dims: 3}
		svc := NewSearchService(&mockSearchEngine{hits: keywordHits("a")}, vectors, newMockChunkStore("a", "b"), sources, embedder)

		results, err := svc.Search(ctx, "refund", domain.SearchOptions{})
		require.NoError(t, err)
		assert.Equal(t, []string{"a", "b"}, resultIDs(results))
		assert.Equal(t, 1, vectors.calls)
		for _, r := range results {
			assert.Equal(t, "stripe", r.SourceName)
		}
	})

	t.Run("embedding failure falls back to full-text", func(t *testing.T) {
		vectors := &mockVectorIndex{hits: vectorHits("b")}
		embedder := &mockEmbeddingService{dims: 3, queryErr: domain.ErrEmbeddingUnavailable}
		svc := NewSearchService(&mockSearchEngine{hits: keywordHits("a")}, vectors, newMockChunkStore("a", "b"), sources, embedder)

		results, err := svc.Search(ctx, "refund", domain.SearchOptions{})
		require.NoError(t, err)
		assert.Equal(t, []string{"a"}, resultIDs(results))
		assert.Zero(t, vectors.calls)
	})

	t.Run("cancelled embedding is returned", func(t *testing.T) {
		embedder := &mockEmbeddingService{dims: 3, queryErr: context.Canceled}
		svc := NewSearchService(&mockSearchEngine{}, &mockVectorIndex{}, newMockChunkStore(), sources, embedder)

		_, err := svc.Search(ctx, "refund", domain.SearchOptions{})
		assert.ErrorIs(t, err, context.Canceled)
	})

	t.Run("no embedder", func(t *testing.T) {
		svc := NewSearchService(&mockSearchEngine{hits: keywordHits("a")}, &mockVectorIndex{}, newMockChunkStore("a"), nil, nil)

		results, err := svc.Search(ctx, "refund", domain.SearchOptions{})
		require.NoError(t, err)
		assert.Equal(t, []string{"a"}, resultIDs(results))
		assert.Empty(t, results[0].SourceName)
	})
}
