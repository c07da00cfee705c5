package sqlite

import (
	"context"
	"sort"

	"github.com/custodia-labs/alexandria/internal/core/domain"
	"github.com/custodia-labs/alexandria/internal/core/ports/driven"
)

// ==================== Full-Text Search ====================

// searchEngine implements driven.SearchEngine over the chunks_fts table.
type searchEngine struct {
	store *Store
}

var _ driven.SearchEngine = (*searchEngine)(nil)

// Search runs an FTS5 MATCH and returns hits in rank order.
func (e *searchEngine) Search(
	ctx context.Context,
	match string,
	limit int,
	filter domain.SearchFilter,
) ([]driven.SearchHit, error) {
	if match == "" || limit <= 0 {
		return nil, nil
	}

	db, err := e.store.conn()
	if err != nil {
		return nil, err
	}

	clause, filterArgs := filterClause("chunks", filter)
	query := `
		SELECT chunks_fts.chunk_id, chunks_fts.rank
		FROM chunks_fts
		JOIN chunks ON chunks.id = chunks_fts.chunk_id
		WHERE chunks_fts MATCH ?` + clause + `
		ORDER BY chunks_fts.rank
		LIMIT ?`

	args := make([]any, 0, len(filterArgs)+2)
	args = append(args, match)
	args = append(args, filterArgs...)
	args = append(args, limit)

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, classify("full-text search", err)
	}
	defer rows.Close()

	var hits []driven.SearchHit //nolint:prealloc // size unknown from query
	for rows.Next() {
		var hit driven.SearchHit
		if err := rows.Scan(&hit.ChunkID, &hit.Score); err != nil {
			return nil, classify("scanning search hit", err)
		}
		hits = append(hits, hit)
	}
	if err := rows.Err(); err != nil {
		return nil, classify("iterating search hits", err)
	}
	return hits, nil
}

// ==================== Vector Index ====================

// vectorIndex implements driven.VectorIndex with an exhaustive scan of
// chunk_vectors. Document collections are small enough that exact search
// over every vector beats maintaining an approximate index.
type vectorIndex struct {
	store *Store
}

var _ driven.VectorIndex = (*vectorIndex)(nil)

// Search returns the k nearest vectors by Euclidean distance, then drops the
// ones the filter rejects.
func (v *vectorIndex) Search(
	ctx context.Context,
	query []float32,
	k int,
	filter domain.SearchFilter,
) ([]driven.VectorHit, error) {
	if k <= 0 || len(query) == 0 {
		return nil, nil
	}

	db, err := v.store.conn()
	if err != nil {
		return nil, err
	}

	rows, err := db.QueryContext(ctx, "SELECT chunk_id, embedding FROM chunk_vectors")
	if err != nil {
		return nil, classify("vector search", err)
	}
	defer rows.Close()

	var hits []driven.VectorHit //nolint:prealloc // size unknown from query
	for rows.Next() {
		var id string
		var blob []byte
		if err := rows.Scan(&id, &blob); err != nil {
			return nil, classify("scanning vector", err)
		}
		hits = append(hits, driven.VectorHit{
			ChunkID:  id,
			Distance: euclideanDistance(query, bytesToFloat32Slice(blob)),
		})
	}
	if err := rows.Err(); err != nil {
		return nil, classify("iterating vectors", err)
	}

	sort.Slice(hits, func(i, j int) bool {
		if hits[i].Distance != hits[j].Distance {
			return hits[i].Distance < hits[j].Distance
		}
		return hits[i].ChunkID < hits[j].ChunkID
	})
	if len(hits) > k {
		hits = hits[:k]
	}

	if !filter.Active() || len(hits) == 0 {
		return hits, nil
	}
	return v.applyFilter(ctx, hits, filter)
}

// applyFilter keeps the hits whose chunk passes the filter, in distance order.
func (v *vectorIndex) applyFilter(
	ctx context.Context,
	hits []driven.VectorHit,
	filter domain.SearchFilter,
) ([]driven.VectorHit, error) {
	db, err := v.store.conn()
	if err != nil {
		return nil, err
	}

	allowed := make(map[string]bool, len(hits))
	for start := 0; start < len(hits); start += maxQueryParams {
		end := min(start+maxQueryParams, len(hits))
		batch := hits[start:end]

		args := make([]any, 0, len(batch))
		for _, h := range batch {
			args = append(args, h.ChunkID)
		}

		rows, err := db.QueryContext(ctx,
			"SELECT id, source_id, kind FROM chunks WHERE id IN ("+placeholders(len(batch))+")", args...)
		if err != nil {
			return nil, classify("filtering vector hits", err)
		}
		for rows.Next() {
			var c domain.Chunk
			var kind string
			if err := rows.Scan(&c.ID, &c.SourceID, &kind); err != nil {
				rows.Close()
				return nil, classify("scanning vector hit", err)
			}
			c.Kind = domain.ChunkKind(kind)
			allowed[c.ID] = filter.Allows(c)
		}
		err = rows.Err()
		rows.Close()
		if err != nil {
			return nil, classify("iterating vector hits", err)
		}
	}

	filtered := hits[:0]
	for _, h := range hits {
		if allowed[h.ChunkID] {
			filtered = append(filtered, h)
		}
	}
	return filtered, nil
}
