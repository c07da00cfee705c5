// Package mcp serves hybrid search and endpoint browsing to AI assistants
// over the Model Context Protocol.
package mcp

import (
	"errors"

	"github.com/custodia-labs/alexandria/internal/core/ports/driving"
)

var (
	ErrMissingSearchService = errors.New("mcp: search service is required")
	ErrMissingSourceService = errors.New("mcp: source service is required")
)

// Ports is everything the tools and resources call into.
type Ports struct {
	Search driving.SearchService
	Source driving.SourceService
}

// Validate reports every missing port.
func (p *Ports) Validate() error {
	var errs []error
	if p.Search == nil {
		errs = append(errs, ErrMissingSearchService)
	}
	if p.Source == nil {
		errs = append(errs, ErrMissingSourceService)
	}
	return errors.Join(errs...)
}
