// Package sqlite provides the SQLite-based chunk store.
//
// This adapter uses modernc.org/sqlite, a pure Go SQLite implementation that requires
// no CGO, enabling easy cross-compilation. One database holds three views of every
// chunk, and every write touches all three inside one transaction:
//
//   - chunks: the primary record table
//   - chunks_fts: an FTS5 full-text index over title and content
//   - chunk_vectors: fixed-dimension float32 embeddings, searched exhaustively
//
// The same handle implements SourceStore, ChunkStore, SearchEngine and VectorIndex.
//
// # Schema
//
// The database schema is managed through versioned migrations stored in the
// migrations/ directory. Each migration is a pair of .up.sql and .down.sql files.
//
// # Data Location
//
// By default, the database is stored at ~/.alexandria/alexandria.db
//
// # Handle Lifecycle
//
// A Store is bound to one path at a time. Opening a different path on an open
// handle fails; Close must be called first. The embedding dimension is recorded
// on first open and checked on every later open.
package sqlite
