// Package messages defines Bubbletea message types for the TUI.
package messages

import (
	"github.com/custodia-labs/alexandria/internal/core/domain"
)

// SearchCompleted carries search results back to the model.
type SearchCompleted struct {
	Query   string
	Results []domain.SearchResult
	Err     error
}

// ChunkOpened is sent when a chunk is opened for reading.
type ChunkOpened struct {
	Chunk      domain.Chunk
	SourceName string
	// From is the view to return to.
	From ViewType
}

// ViewChanged is sent when navigating between views.
type ViewChanged struct {
	View ViewType
}

// ViewType identifies which view is currently active.
type ViewType int

const (
	// ViewSearch is the search input and results view.
	ViewSearch ViewType = iota
	// ViewSources lists indexed sources.
	ViewSources
	// ViewEndpoints lists the endpoints of one source.
	ViewEndpoints
	// ViewChunk shows the full content of one chunk.
	ViewChunk
	// ViewHelp is the keybindings view.
	ViewHelp
)

// String returns the string representation of the view type.
func (v ViewType) String() string {
	switch v {
	case ViewSearch:
		return "search"
	case ViewSources:
		return "sources"
	case ViewEndpoints:
		return "endpoints"
	case ViewChunk:
		return "chunk"
	case ViewHelp:
		return "help"
	default:
		return "unknown"
	}
}

// ErrorOccurred signals that an error happened.
type ErrorOccurred struct {
	Err error
}

// Quit signals the application should exit.
type Quit struct{}

// SourcesLoaded carries the list of indexed sources.
type SourcesLoaded struct {
	Sources []domain.Source
	Err     error
}

// SourceSelected signals a source was chosen from the sources list.
type SourceSelected struct {
	Source domain.Source
}

// SourceRemoved signals a source was removed.
type SourceRemoved struct {
	Name string
	Err  error
}

// EndpointsLoaded carries the endpoint chunks of a source.
type EndpointsLoaded struct {
	SourceName string
	Endpoints  []domain.Chunk
	Err        error
}
