package sqlite

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/custodia-labs/alexandria/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/custodia-labs/alexandria/internal/core/domain"
	"github.com/custodia-labs/alexandria/internal/core/ports/driven"
)

// jsonNull is the JSON representation of null.
const jsonNull = "null"

// dimensionKey is the config row holding the embedding dimension.
const dimensionKey = "embedding_dimension"

// DefaultPath returns ~/.alexandria/alexandria.db.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("getting home directory: %w", err)
	}
	return filepath.Join(home, ".alexandria", "alexandria.db"), nil
}

// Store is the handle to one SQLite database. It provides the source, chunk,
// full-text and vector interfaces through wrapper types.
type Store struct {
	mu        sync.RWMutex
	db        *sql.DB
	path      string
	dimension int
}

// NewStore opens the database at path. A dimension of 0 selects
// domain.DefaultDimension.
func NewStore(path string, dimension int) (*Store, error) {
	s := &Store{}
	if err := s.Open(path, dimension); err != nil {
		return nil, err
	}
	return s, nil
}

// Open binds the handle to path. Calling Open again with the same path is a
// no-op apart from the dimension check; a different path fails until Close.
func (s *Store) Open(path string, dimension int) error {
	if dimension == 0 {
		dimension = domain.DefaultDimension
	}
	if dimension < 0 {
		return fmt.Errorf("%w: invalid embedding dimension %d", domain.ErrConfiguration, dimension)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.db != nil {
		if path != s.path {
			return fmt.Errorf("%w: Database already open at %q, cannot open %q. Call Close() first.",
				domain.ErrStoreAlreadyOpen, s.path, path)
		}
		if dimension != s.dimension {
			return &domain.DimensionMismatchError{Stored: s.dimension, Requested: dimension}
		}
		return nil
	}

	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0700); err != nil {
			return fmt.Errorf("creating data directory: %w", err)
		}
	}

	// WAL for concurrent readers; foreign_keys per connection so the pool
	// never hands out one without cascades.
	dsn := path + "?_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return classify("opening database", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return classify("opening database", err)
	}

	if err := migrate(db); err != nil {
		db.Close()
		return fmt.Errorf("running migrations: %w", err)
	}

	stored, err := initDimension(db, dimension)
	if err != nil {
		db.Close()
		return err
	}

	s.db = db
	s.path = path
	s.dimension = stored
	return nil
}

// Close releases the database. The handle may be reopened afterwards.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	s.path = ""
	s.dimension = 0
	return err
}

// Path returns the database file path, or "" when closed.
func (s *Store) Path() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.path
}

// Dimension returns the embedding dimension fixed for this database.
func (s *Store) Dimension() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.dimension
}

// conn returns the live database or domain.ErrStoreClosed.
func (s *Store) conn() (*sql.DB, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.db == nil {
		return nil, domain.ErrStoreClosed
	}
	return s.db, nil
}

// SourceStore returns a SourceStore interface backed by this store.
func (s *Store) SourceStore() driven.SourceStore {
	return &sourceStore{store: s}
}

// ChunkStore returns a ChunkStore interface backed by this store.
func (s *Store) ChunkStore() driven.ChunkStore {
	return &chunkStore{store: s}
}

// SearchEngine returns the FTS5-backed SearchEngine.
func (s *Store) SearchEngine() driven.SearchEngine {
	return &searchEngine{store: s}
}

// VectorIndex returns the embedding-backed VectorIndex.
func (s *Store) VectorIndex() driven.VectorIndex {
	return &vectorIndex{store: s}
}

// initDimension records the dimension on a fresh database and checks it on
// an existing one.
func initDimension(db *sql.DB, dimension int) (int, error) {
	var value string
	err := db.QueryRow("SELECT value FROM config WHERE key = ?", dimensionKey).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		if _, err := db.Exec("INSERT INTO config (key, value) VALUES (?, ?)",
			dimensionKey, strconv.Itoa(dimension)); err != nil {
			return 0, classify("recording embedding dimension", err)
		}
		return dimension, nil
	}
	if err != nil {
		return 0, classify("reading embedding dimension", err)
	}

	stored, err := strconv.Atoi(value)
	if err != nil {
		return 0, &domain.StoreError{Op: "reading embedding dimension",
			Err: fmt.Errorf("corrupt value %q", value)}
	}
	if stored != dimension {
		return 0, &domain.DimensionMismatchError{Stored: stored, Requested: dimension}
	}
	return stored, nil
}

// migrate applies the embedded migrations newer than the recorded version.
func migrate(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return classify("creating schema_migrations table", err)
	}

	var current int
	if err := db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations").Scan(&current); err != nil {
		return classify("getting current version", err)
	}

	pending, err := migrations.After(current)
	if err != nil {
		return err
	}
	for _, m := range pending {
		if _, err := db.Exec(m.SQL); err != nil {
			return classify("executing migration "+m.Name, err)
		}
		if _, err := db.Exec("INSERT INTO schema_migrations (version) VALUES (?)", m.Version); err != nil {
			return classify("recording migration "+m.Name, err)
		}
	}
	return nil
}

// placeholders returns "?, ?, ?" for n parameters.
func placeholders(n int) string {
	if n <= 0 {
		return ""
	}
	return strings.Repeat("?, ", n-1) + "?"
}

// nullString converts an empty string to NULL.
func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

// filterClause renders the source and kind restrictions for a query joined
// against the chunks table under the given alias.
func filterClause(alias string, filter domain.SearchFilter) (string, []any) {
	var clause strings.Builder
	var args []any
	if len(filter.SourceIDs) > 0 {
		clause.WriteString(" AND " + alias + ".source_id IN (" + placeholders(len(filter.SourceIDs)) + ")")
		for _, id := range filter.SourceIDs {
			args = append(args, id)
		}
	}
	if len(filter.Kinds) > 0 {
		clause.WriteString(" AND " + alias + ".kind IN (" + placeholders(len(filter.Kinds)) + ")")
		for _, k := range filter.Kinds {
			args = append(args, string(k))
		}
	}
	return clause.String(), args
}
