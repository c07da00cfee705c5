package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/custodia-labs/alexandria/internal/core/domain"
	"github.com/custodia-labs/alexandria/internal/core/ports/driven"
)

// maxQueryParams keeps IN lists below SQLite's host parameter limit.
const maxQueryParams = 500

// ==================== Chunk Store ====================

// chunkStore implements driven.ChunkStore.
type chunkStore struct {
	store *Store
}

var _ driven.ChunkStore = (*chunkStore)(nil)

// Dimension returns the fixed embedding dimension.
func (s *chunkStore) Dimension() int {
	return s.store.Dimension()
}

// UpsertChunk writes a chunk, its full-text entry and its vector in one transaction.
func (s *chunkStore) UpsertChunk(ctx context.Context, chunk domain.EmbeddedChunk) error {
	if err := s.checkEmbedding(chunk); err != nil {
		return err
	}
	return s.inTx(ctx, func(tx *sql.Tx) error {
		return upsertChunk(ctx, tx, chunk)
	})
}

// DeleteChunk removes a chunk from all three views.
func (s *chunkStore) DeleteChunk(ctx context.Context, id string) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		return deleteChunk(ctx, tx, id)
	})
}

// DeleteChunksBySource removes every chunk of a source from all three views.
func (s *chunkStore) DeleteChunksBySource(ctx context.Context, sourceID string) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `
			DELETE FROM chunks_fts WHERE chunk_id IN (SELECT id FROM chunks WHERE source_id = ?)
		`, sourceID); err != nil {
			return classify("deleting full-text entries", err)
		}
		if _, err := tx.ExecContext(ctx, `
			DELETE FROM chunk_vectors WHERE chunk_id IN (SELECT id FROM chunks WHERE source_id = ?)
		`, sourceID); err != nil {
			return classify("deleting vectors", err)
		}
		if _, err := tx.ExecContext(ctx, "DELETE FROM chunks WHERE source_id = ?", sourceID); err != nil {
			return classify("deleting chunks", err)
		}
		return nil
	})
}

// Commit upserts the source, writes changed chunks and deletes orphans
// atomically. Nothing is written if any step fails.
func (s *chunkStore) Commit(ctx context.Context, commit driven.IngestCommit) error {
	for _, c := range commit.Upserts {
		if err := s.checkEmbedding(c); err != nil {
			return err
		}
	}

	return s.inTx(ctx, func(tx *sql.Tx) error {
		if err := saveSource(ctx, tx, commit.Source); err != nil {
			return err
		}
		for _, c := range commit.Upserts {
			if err := upsertChunk(ctx, tx, c); err != nil {
				return err
			}
		}
		for _, id := range commit.Deletes {
			if err := deleteChunk(ctx, tx, id); err != nil {
				return err
			}
		}
		return nil
	})
}

// GetChunk retrieves a chunk by ID.
func (s *chunkStore) GetChunk(ctx context.Context, id string) (*domain.Chunk, error) {
	db, err := s.store.conn()
	if err != nil {
		return nil, err
	}

	row := db.QueryRowContext(ctx, "SELECT "+chunkColumns+" FROM chunks WHERE id = ?", id)
	chunk, err := scanChunk(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, classify("scanning chunk", err)
	}
	return chunk, nil
}

// GetChunksByIDs retrieves chunks in batches. Unknown ids are omitted.
func (s *chunkStore) GetChunksByIDs(ctx context.Context, ids []string) ([]domain.Chunk, error) {
	db, err := s.store.conn()
	if err != nil {
		return nil, err
	}

	chunks := make([]domain.Chunk, 0, len(ids))
	for start := 0; start < len(ids); start += maxQueryParams {
		end := min(start+maxQueryParams, len(ids))
		batch := ids[start:end]

		args := make([]any, len(batch))
		for i, id := range batch {
			args[i] = id
		}
		found, err := queryChunks(ctx, db,
			"SELECT "+chunkColumns+" FROM chunks WHERE id IN ("+placeholders(len(batch))+")", args...)
		if err != nil {
			return nil, err
		}
		chunks = append(chunks, found...)
	}
	return chunks, nil
}

// GetChunksBySource lists a source's chunks in id order.
func (s *chunkStore) GetChunksBySource(
	ctx context.Context,
	sourceID string,
	kinds ...domain.ChunkKind,
) ([]domain.Chunk, error) {
	db, err := s.store.conn()
	if err != nil {
		return nil, err
	}

	clause, args := filterClause("chunks", domain.SearchFilter{Kinds: kinds})
	args = append([]any{sourceID}, args...)
	return queryChunks(ctx, db,
		"SELECT "+chunkColumns+" FROM chunks WHERE chunks.source_id = ?"+clause+" ORDER BY id", args...)
}

// checkEmbedding rejects vectors that do not match the store dimension.
func (s *chunkStore) checkEmbedding(c domain.EmbeddedChunk) error {
	if want := s.store.Dimension(); len(c.Embedding) != want {
		return fmt.Errorf("%w: chunk %s has %d-dimensional embedding, store requires %d",
			domain.ErrInvalidInput, c.Chunk.ID, len(c.Embedding), want)
	}
	return nil
}

// inTx runs fn in a transaction, committing only if fn succeeds.
func (s *chunkStore) inTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	db, err := s.store.conn()
	if err != nil {
		return err
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return classify("beginning transaction", err)
	}
	defer tx.Rollback() //nolint:errcheck // rollback after commit is a no-op

	if err := fn(tx); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return classify("committing transaction", err)
	}
	return nil
}

func upsertChunk(ctx context.Context, tx *sql.Tx, ec domain.EmbeddedChunk) error {
	c := ec.Chunk
	metadataJSON, err := json.Marshal(c.Metadata)
	if err != nil {
		return fmt.Errorf("marshalling metadata: %w", err)
	}
	createdAt := c.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO chunks (id, source_id, kind, title, content, content_hash, metadata, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			source_id = excluded.source_id,
			kind = excluded.kind,
			title = excluded.title,
			content = excluded.content,
			content_hash = excluded.content_hash,
			metadata = excluded.metadata,
			created_at = excluded.created_at
	`, c.ID, c.SourceID, string(c.Kind), c.Title, c.Content, c.ContentHash,
		string(metadataJSON), createdAt); err != nil {
		return classify("saving chunk", err)
	}

	if _, err := tx.ExecContext(ctx, "DELETE FROM chunks_fts WHERE chunk_id = ?", c.ID); err != nil {
		return classify("replacing full-text entry", err)
	}
	if _, err := tx.ExecContext(ctx,
		"INSERT INTO chunks_fts (chunk_id, title, content) VALUES (?, ?, ?)",
		c.ID, c.Title, c.Content); err != nil {
		return classify("indexing chunk", err)
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO chunk_vectors (chunk_id, embedding) VALUES (?, ?)
		ON CONFLICT(chunk_id) DO UPDATE SET embedding = excluded.embedding
	`, c.ID, float32SliceToBytes(ec.Embedding)); err != nil {
		return classify("saving vector", err)
	}
	return nil
}

func deleteChunk(ctx context.Context, tx *sql.Tx, id string) error {
	if _, err := tx.ExecContext(ctx, "DELETE FROM chunks_fts WHERE chunk_id = ?", id); err != nil {
		return classify("deleting full-text entry", err)
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM chunk_vectors WHERE chunk_id = ?", id); err != nil {
		return classify("deleting vector", err)
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM chunks WHERE id = ?", id); err != nil {
		return classify("deleting chunk", err)
	}
	return nil
}

const chunkColumns = `id, source_id, kind, title, content, content_hash, metadata, created_at`

func scanChunk(row rowScanner) (*domain.Chunk, error) {
	var chunk domain.Chunk
	var kind string
	var metadataJSON sql.NullString
	var createdAt sql.NullTime
	if err := row.Scan(&chunk.ID, &chunk.SourceID, &kind, &chunk.Title, &chunk.Content,
		&chunk.ContentHash, &metadataJSON, &createdAt); err != nil {
		return nil, err
	}

	chunk.Kind = domain.ChunkKind(kind)
	if metadataJSON.Valid && metadataJSON.String != "" && metadataJSON.String != jsonNull {
		if err := json.Unmarshal([]byte(metadataJSON.String), &chunk.Metadata); err != nil {
			return nil, fmt.Errorf("unmarshalling metadata: %w", err)
		}
	}
	if createdAt.Valid {
		chunk.CreatedAt = createdAt.Time
	}
	return &chunk, nil
}

// queryer is satisfied by *sql.DB and *sql.Tx.
type queryer interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

func queryChunks(ctx context.Context, q queryer, query string, args ...any) ([]domain.Chunk, error) {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, classify("querying chunks", err)
	}
	defer rows.Close()

	var chunks []domain.Chunk //nolint:prealloc // size unknown from query
	for rows.Next() {
		chunk, err := scanChunk(rows)
		if err != nil {
			return nil, classify("scanning chunk", err)
		}
		chunks = append(chunks, *chunk)
	}
	if err := rows.Err(); err != nil {
		return nil, classify("iterating chunks", err)
	}
	return chunks, nil
}
