package domain

import "slices"

// Reciprocal Rank Fusion defaults.
const (
	// DefaultRRFK is the rank offset K in 1/(K+rank).
	DefaultRRFK = 60

	// DefaultSearchLimit is used when SearchOptions.Limit is unset.
	DefaultSearchLimit = 20

	// DefaultLexicalOverFetch multiplies the limit for each branch.
	DefaultLexicalOverFetch = 3

	// DefaultVectorFilterOverFetch multiplies the branch limit for raw
	// neighbours when filters drop some of them.
	DefaultVectorFilterOverFetch = 5
)

// FusionConfig tunes the hybrid search engine.
type FusionConfig struct {
	// K is the RRF rank offset.
	K int

	// DefaultLimit is the result count when none is requested.
	DefaultLimit int

	// OverFetch multiplies the limit for both candidate lists.
	OverFetch int

	// VectorFilterOverFetch multiplies the candidate limit for the raw
	// nearest-neighbour query when filters are active.
	VectorFilterOverFetch int
}

// DefaultFusionConfig returns the standard fusion constants.
func DefaultFusionConfig() FusionConfig {
	return FusionConfig{
		K:                     DefaultRRFK,
		DefaultLimit:          DefaultSearchLimit,
		OverFetch:             DefaultLexicalOverFetch,
		VectorFilterOverFetch: DefaultVectorFilterOverFetch,
	}
}

// SearchOptions configures a search query.
type SearchOptions struct {
	// Limit is the maximum number of results.
	Limit int

	// SourceID filters to a single source.
	SourceID string

	// SourceIDs filters to specific sources. Unioned with SourceID.
	SourceIDs []string

	// Kinds filters to chunk kinds.
	Kinds []ChunkKind
}

// Filter returns the store-level filter for these options.
func (o SearchOptions) Filter() SearchFilter {
	var ids []string
	seen := make(map[string]bool)
	add := func(id string) {
		if id != "" && !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}
	add(o.SourceID)
	for _, id := range o.SourceIDs {
		add(id)
	}
	return SearchFilter{SourceIDs: ids, Kinds: o.Kinds}
}

// SearchFilter restricts candidate chunks in both index branches.
type SearchFilter struct {
	// SourceIDs is the allowed set of sources; empty allows all.
	SourceIDs []string

	// Kinds is the allowed set of kinds; empty allows all.
	Kinds []ChunkKind
}

// Active returns true if the filter restricts anything.
func (f SearchFilter) Active() bool {
	return len(f.SourceIDs) > 0 || len(f.Kinds) > 0
}

// Allows reports whether a chunk passes the filter.
func (f SearchFilter) Allows(c Chunk) bool {
	if len(f.SourceIDs) > 0 && !slices.Contains(f.SourceIDs, c.SourceID) {
		return false
	}
	return len(f.Kinds) == 0 || slices.Contains(f.Kinds, c.Kind)
}

// SearchResult represents a single search hit.
type SearchResult struct {
	// Chunk is the matched chunk.
	Chunk Chunk

	// Score is the fused RRF score.
	Score float64

	// SourceName is the display name of the owning source.
	SourceName string
}
