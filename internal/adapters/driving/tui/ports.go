// Package tui provides an interactive terminal user interface for product search.
// It implements a driving adapter following hexagonal architecture principles.
package tui

import (
	"github.com/kush-lhmm/sampann-search/internal/core/ports/driving"
)

// Ports aggregates all driving port interfaces required by the TUI.
// This provides a single injection point for dependency injection.
type Ports struct {
	// Search runs product searches.
	Search driving.SearchService

	// Assistant answers free-text shopper questions.
	Assistant driving.AssistantService

	// Catalog provides catalog stats for the menu header.
	Catalog driving.CatalogService

	// Settings manages application settings.
	Settings driving.SettingsService
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	if p == nil {
		return ErrInvalidPorts
	}
	if p.Search == nil {
		return ErrMissingSearchService
	}
	return nil
}
