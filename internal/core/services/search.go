package services

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"sync"
	"unicode"

	"github.com/custodia-labs/alexandria/internal/core/domain"
	"github.com/custodia-labs/alexandria/internal/core/ports/driven"
	"github.com/custodia-labs/alexandria/internal/core/ports/driving"
	"github.com/custodia-labs/alexandria/internal/logger"
)

// Ensure SearchService implements the interface.
var _ driving.SearchService = (*SearchService)(nil)

// SearchService fuses full-text and vector search with Reciprocal Rank Fusion.
type SearchService struct {
	searchEngine     driven.SearchEngine
	vectorIndex      driven.VectorIndex
	chunkStore       driven.ChunkStore
	sourceStore      driven.SourceStore
	embeddingService driven.EmbeddingService
	fusion           domain.FusionConfig
}

// SearchOption customises a SearchService.
type SearchOption func(*SearchService)

// WithFusionConfig overrides the fusion constants.
func WithFusionConfig(cfg domain.FusionConfig) SearchOption {
	return func(s *SearchService) {
		s.fusion = cfg
	}
}

// NewSearchService creates a new search service.
// The embedding service may be nil; search then runs on full-text only.
func NewSearchService(
	searchEngine driven.SearchEngine,
	vectorIndex driven.VectorIndex,
	chunkStore driven.ChunkStore,
	sourceStore driven.SourceStore,
	embeddingService driven.EmbeddingService,
	opts ...SearchOption,
) *SearchService {
	s := &SearchService{
		searchEngine:     searchEngine,
		vectorIndex:      vectorIndex,
		chunkStore:       chunkStore,
		sourceStore:      sourceStore,
		embeddingService: embeddingService,
		fusion:           domain.DefaultFusionConfig(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// scoredChunk represents a chunk with its relevance score.
type scoredChunk struct {
	chunkID string
	score   float64
	source  string // "keyword", "vector", or "merged"
}

// Search embeds the query and runs hybrid search. If the query cannot be
// embedded the vector branch is skipped.
func (s *SearchService) Search(
	ctx context.Context,
	query string,
	opts domain.SearchOptions,
) ([]domain.SearchResult, error) {
	logger.Section("Search")
	logger.Debug("Query: %q", query)
	defer logger.Timer("Search")()

	var embedding []float32
	if s.embeddingService != nil {
		vec, err := s.embeddingService.EmbedQuery(ctx, query)
		switch {
		case err == nil:
			embedding = vec
			logger.Debug("Query embedding: %d dimensions", len(vec))
		case domain.IsFatal(err):
			return nil, fmt.Errorf("embed query: %w", err)
		default:
			logger.Warn("Query embedding failed, using full-text only: %v", err)
		}
	}

	results, err := s.HybridSearch(ctx, query, embedding, opts)
	if err != nil {
		return nil, err
	}

	s.attachSourceNames(ctx, results)
	return results, nil
}

// HybridSearch runs both branches in parallel over the store and fuses them.
// An empty embedding disables the vector branch.
func (s *SearchService) HybridSearch(
	ctx context.Context,
	query string,
	embedding []float32,
	opts domain.SearchOptions,
) ([]domain.SearchResult, error) {
	limit := opts.Limit
	if limit <= 0 {
		limit = s.fusion.DefaultLimit
	}
	fetchLimit := limit * s.fusion.OverFetch
	filter := opts.Filter()

	logger.Debug("Limit: %d, fetch limit: %d, filter active: %t", limit, fetchLimit, filter.Active())

	var keywordResults, vectorResults []scoredChunk
	var keywordErr, vectorErr error

	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		keywordResults, keywordErr = s.keywordSearch(ctx, query, fetchLimit, filter)
	}()

	go func() {
		defer wg.Done()
		vectorResults, vectorErr = s.vectorSearch(ctx, embedding, fetchLimit, filter)
	}()

	wg.Wait()

	// Fatal storage errors always propagate; anything else degrades to the
	// branch that succeeded.
	switch {
	case domain.IsFatal(keywordErr):
		return nil, fmt.Errorf("keyword search: %w", keywordErr)
	case domain.IsFatal(vectorErr):
		return nil, fmt.Errorf("vector search: %w", vectorErr)
	case keywordErr != nil && vectorErr != nil:
		return nil, fmt.Errorf("hybrid search: %w", errors.Join(keywordErr, vectorErr))
	case keywordErr != nil:
		logger.Warn("Keyword search failed, using vector results only: %v", keywordErr)
	case vectorErr != nil:
		logger.Warn("Vector search failed, using keyword results only: %v", vectorErr)
	}

	logger.Debug("Merging %d keyword + %d vector results with RRF", len(keywordResults), len(vectorResults))
	merged := reciprocalRankFusion(keywordResults, vectorResults, s.fusion.K)
	if len(merged) > limit {
		merged = merged[:limit]
	}

	results, err := s.hydrateResults(ctx, merged)
	if err != nil {
		return nil, fmt.Errorf("hydrate results: %w", err)
	}

	logger.Info("Final results: %d", len(results))
	return results, nil
}

// keywordSearch performs full-text search on the sanitised query.
func (s *SearchService) keywordSearch(
	ctx context.Context,
	query string,
	limit int,
	filter domain.SearchFilter,
) ([]scoredChunk, error) {
	match := sanitizeMatchQuery(query)
	if match == "" {
		logger.Debug("Keyword search: no terms after sanitising")
		return nil, nil
	}

	logger.Debug("Keyword search: match=%s, limit=%d", match, limit)
	hits, err := s.searchEngine.Search(ctx, match, limit, filter)
	if err != nil {
		return nil, err
	}
	logger.Debug("Keyword search: %d hits", len(hits))

	results := make([]scoredChunk, len(hits))
	for i, hit := range hits {
		results[i] = scoredChunk{chunkID: hit.ChunkID, score: hit.Score, source: "keyword"}
	}
	return results, nil
}

// vectorSearch finds nearest neighbours. With a filter it asks for
// VectorFilterOverFetch times more raw neighbours, since the index filters
// after selecting them.
func (s *SearchService) vectorSearch(
	ctx context.Context,
	embedding []float32,
	limit int,
	filter domain.SearchFilter,
) ([]scoredChunk, error) {
	if len(embedding) == 0 || s.vectorIndex == nil {
		return nil, nil
	}

	k := limit
	if filter.Active() {
		k = limit * s.fusion.VectorFilterOverFetch
	}

	logger.Debug("Vector search: k=%d", k)
	hits, err := s.vectorIndex.Search(ctx, embedding, k, filter)
	if err != nil {
		return nil, err
	}
	if len(hits) > limit {
		hits = hits[:limit]
	}
	logger.Debug("Vector search: %d hits", len(hits))

	results := make([]scoredChunk, len(hits))
	for i, hit := range hits {
		results[i] = scoredChunk{chunkID: hit.ChunkID, score: hit.Distance, source: "vector"}
	}
	return results, nil
}

// reciprocalRankFusion scores each item 1/(k+rank), rank starting at 1, and
// sums across lists. Ties keep first-seen order (list1 before list2).
func reciprocalRankFusion(list1, list2 []scoredChunk, k int) []scoredChunk {
	scores := make(map[string]float64)
	var order []string

	for _, list := range [][]scoredChunk{list1, list2} {
		for i, chunk := range list {
			if _, seen := scores[chunk.chunkID]; !seen {
				order = append(order, chunk.chunkID)
			}
			scores[chunk.chunkID] += 1.0 / float64(k+i+1)
		}
	}

	results := make([]scoredChunk, len(order))
	for i, id := range order {
		results[i] = scoredChunk{chunkID: id, score: scores[id], source: "merged"}
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].score > results[j].score
	})
	return results
}

// hydrateResults resolves fused ids in one batch, dropping ids that no
// longer resolve.
func (s *SearchService) hydrateResults(ctx context.Context, ranked []scoredChunk) ([]domain.SearchResult, error) {
	if len(ranked) == 0 {
		return []domain.SearchResult{}, nil
	}

	ids := make([]string, len(ranked))
	for i, r := range ranked {
		ids[i] = r.chunkID
	}

	chunks, err := s.chunkStore.GetChunksByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[string]domain.Chunk, len(chunks))
	for _, c := range chunks {
		byID[c.ID] = c
	}

	results := make([]domain.SearchResult, 0, len(ranked))
	for _, r := range ranked {
		chunk, ok := byID[r.chunkID]
		if !ok {
			logger.Warn("Chunk %s in index but not in store, skipping", r.chunkID)
			continue
		}
		results = append(results, domain.SearchResult{Chunk: chunk, Score: r.score})
	}
	return results, nil
}

// attachSourceNames fills SourceName from the source registry.
func (s *SearchService) attachSourceNames(ctx context.Context, results []domain.SearchResult) {
	if s.sourceStore == nil || len(results) == 0 {
		return
	}
	sources, err := s.sourceStore.List(ctx)
	if err != nil {
		logger.Warn("Could not load source names: %v", err)
		return
	}
	names := make(map[string]string, len(sources))
	for _, src := range sources {
		names[src.ID] = src.Name
	}
	for i := range results {
		results[i].SourceName = names[results[i].Chunk.SourceID]
	}
}

// ftsOperators are characters FTS5 would read as query syntax.
var ftsOperators = regexp.MustCompile(`['"*()\-:^~@{}+]`)

// sanitizeMatchQuery turns free text into a sequence of quoted literal FTS5
// terms. Tokens with no letter or digit are dropped.
func sanitizeMatchQuery(query string) string {
	cleaned := ftsOperators.ReplaceAllString(query, " ")

	var terms []string
	for _, tok := range strings.Fields(cleaned) {
		if strings.IndexFunc(tok, isWordRune) < 0 {
			continue
		}
		terms = append(terms, `"`+tok+`"`)
	}
	return strings.Join(terms, " ")
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}
