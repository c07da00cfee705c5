// Package driven declares what the core needs from infrastructure.
//
//   - SourceStore, ChunkStore: sources, chunks and the atomic ingestion commit
//   - SearchEngine: FTS5 keyword ranking
//   - VectorIndex: nearest-neighbour ranking over stored embeddings
//   - EmbeddingService: text to vectors (Voyage, Ollama, OpenAI)
//   - SpecParser, MarkdownParser: files to chunks
//   - RegistryLoader: the apis.yml source list
//   - ConfigStore: persisted settings
//   - AIConfigValidator: pre-flight check of embedding settings
//
// The SQLite adapter implements the four storage ports over one database so
// a single transaction spans all of them. Only domain may be imported here.
package driven
