package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/custodia-labs/alexandria/internal/core/domain"
	"github.com/custodia-labs/alexandria/internal/core/ports/driven"
)

// ==================== Source Store ====================

// sourceStore implements driven.SourceStore.
type sourceStore struct {
	store *Store
}

var _ driven.SourceStore = (*sourceStore)(nil)

// execer is satisfied by *sql.DB and *sql.Tx.
type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// Save stores or updates a source.
func (s *sourceStore) Save(ctx context.Context, source domain.Source) error {
	db, err := s.store.conn()
	if err != nil {
		return err
	}
	return saveSource(ctx, db, source)
}

// saveSource upserts a source. created_at survives updates.
func saveSource(ctx context.Context, ex execer, source domain.Source) error {
	now := time.Now().UTC()
	if source.CreatedAt.IsZero() {
		source.CreatedAt = now
	}
	if source.UpdatedAt.IsZero() {
		source.UpdatedAt = now
	}

	_, err := ex.ExecContext(ctx, `
		INSERT INTO sources (id, name, version, spec_path, docs_path, source_hash, spec_content, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			version = excluded.version,
			spec_path = excluded.spec_path,
			docs_path = excluded.docs_path,
			source_hash = excluded.source_hash,
			spec_content = excluded.spec_content,
			updated_at = excluded.updated_at
	`, source.ID, source.Name, nullString(source.Version), nullString(source.SpecPath),
		nullString(source.DocsPath), nullString(source.SourceHash), nullString(source.SpecContent),
		source.CreatedAt, source.UpdatedAt)
	if err != nil {
		return classify("saving source", err)
	}
	return nil
}

const sourceColumns = `id, name, version, spec_path, docs_path, source_hash, spec_content, created_at, updated_at`

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanSource(row rowScanner) (*domain.Source, error) {
	var source domain.Source
	var version, specPath, docsPath, hash, content sql.NullString
	var createdAt, updatedAt sql.NullTime
	if err := row.Scan(&source.ID, &source.Name, &version, &specPath, &docsPath,
		&hash, &content, &createdAt, &updatedAt); err != nil {
		return nil, err
	}

	source.Version = version.String
	source.SpecPath = specPath.String
	source.DocsPath = docsPath.String
	source.SourceHash = hash.String
	source.SpecContent = content.String
	if createdAt.Valid {
		source.CreatedAt = createdAt.Time
	}
	if updatedAt.Valid {
		source.UpdatedAt = updatedAt.Time
	}
	return &source, nil
}

// Get retrieves a source by ID.
func (s *sourceStore) Get(ctx context.Context, id string) (*domain.Source, error) {
	return s.getBy(ctx, "id", id)
}

// GetByName retrieves a source by its unique name.
func (s *sourceStore) GetByName(ctx context.Context, name string) (*domain.Source, error) {
	return s.getBy(ctx, "name", name)
}

func (s *sourceStore) getBy(ctx context.Context, column, value string) (*domain.Source, error) {
	db, err := s.store.conn()
	if err != nil {
		return nil, err
	}

	row := db.QueryRowContext(ctx, "SELECT "+sourceColumns+" FROM sources WHERE "+column+" = ?", value)
	source, err := scanSource(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, classify("scanning source", err)
	}
	return source, nil
}

// List returns all sources ordered by name.
func (s *sourceStore) List(ctx context.Context) ([]domain.Source, error) {
	db, err := s.store.conn()
	if err != nil {
		return nil, err
	}

	rows, err := db.QueryContext(ctx, "SELECT "+sourceColumns+" FROM sources ORDER BY name")
	if err != nil {
		return nil, classify("querying sources", err)
	}
	defer rows.Close()

	var sources []domain.Source //nolint:prealloc // size unknown from query
	for rows.Next() {
		source, err := scanSource(rows)
		if err != nil {
			return nil, classify("scanning source", err)
		}
		sources = append(sources, *source)
	}
	if err := rows.Err(); err != nil {
		return nil, classify("iterating sources", err)
	}

	return sources, nil
}

// Delete removes a source and its chunks from every view.
func (s *sourceStore) Delete(ctx context.Context, id string) error {
	db, err := s.store.conn()
	if err != nil {
		return err
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return classify("beginning transaction", err)
	}
	defer tx.Rollback() //nolint:errcheck // rollback after commit is a no-op

	// Chunks first so the delete trigger runs even if foreign keys are off.
	if _, err := tx.ExecContext(ctx, "DELETE FROM chunks WHERE source_id = ?", id); err != nil {
		return classify("deleting source chunks", err)
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM sources WHERE id = ?", id); err != nil {
		return classify("deleting source", err)
	}

	if err := tx.Commit(); err != nil {
		return classify("committing transaction", err)
	}
	return nil
}
