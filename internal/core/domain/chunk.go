package domain

import (
	"fmt"
	"strings"
	"time"
)

// ChunkKind classifies a chunk. The set is closed.
type ChunkKind string

// Available chunk kinds.
const (
	ChunkKindOverview ChunkKind = "overview"
	ChunkKindEndpoint ChunkKind = "endpoint"
	ChunkKindSchema   ChunkKind = "schema"
	ChunkKindGlossary ChunkKind = "glossary"
	ChunkKindUseCase  ChunkKind = "use-case"
	ChunkKindGuide    ChunkKind = "guide"
)

// AllChunkKinds returns every kind in display order.
func AllChunkKinds() []ChunkKind {
	return []ChunkKind{
		ChunkKindOverview,
		ChunkKindEndpoint,
		ChunkKindSchema,
		ChunkKindGlossary,
		ChunkKindUseCase,
		ChunkKindGuide,
	}
}

// IsValid returns true if the kind is recognised.
func (k ChunkKind) IsValid() bool {
	for _, known := range AllChunkKinds() {
		if k == known {
			return true
		}
	}
	return false
}

// String returns the string representation.
func (k ChunkKind) String() string {
	return string(k)
}

// ParseChunkKinds converts names to kinds, rejecting unknown names.
func ParseChunkKinds(names []string) ([]ChunkKind, error) {
	kinds := make([]ChunkKind, 0, len(names))
	for _, name := range names {
		kind := ChunkKind(strings.TrimSpace(name))
		if !kind.IsValid() {
			return nil, fmt.Errorf("%w: unknown chunk kind %q", ErrInvalidInput, name)
		}
		kinds = append(kinds, kind)
	}
	return kinds, nil
}

// Chunk is a unit of retrievable content.
type Chunk struct {
	// ID is deterministic from (SourceID, Kind, structural path).
	ID string

	// SourceID is the owning source.
	SourceID string

	// Kind classifies the chunk.
	Kind ChunkKind

	// Title is a short label (endpoint "GET /users", heading text).
	Title string

	// Content is the text that is indexed and embedded.
	Content string

	// ContentHash is the hex sha256 of Content only.
	ContentHash string

	// Metadata holds kind-specific attributes (path, method, headings).
	Metadata map[string]any

	// CreatedAt is when this version of the chunk was written.
	CreatedAt time.Time
}

// MetadataString returns a string metadata value, or "".
func (c Chunk) MetadataString(key string) string {
	if c.Metadata == nil {
		return ""
	}
	s, _ := c.Metadata[key].(string)
	return s
}

// EmbeddedChunk pairs a chunk with its embedding for storage.
type EmbeddedChunk struct {
	Chunk     Chunk
	Embedding []float32
}
