// Package tui provides an interactive terminal browser for indexed API
// documentation. It is a driving adapter over the search and source services.
package tui

import (
	"errors"

	"github.com/custodia-labs/alexandria/internal/core/ports/driving"
)

var (
	ErrMissingSearchService = errors.New("tui: search service is required")
	ErrMissingSourceService = errors.New("tui: source service is required")
)

// Ports aggregates the driving ports used by the TUI.
type Ports struct {
	// Search runs hybrid queries.
	Search driving.SearchService

	// Source lists, inspects and removes indexed sources.
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
