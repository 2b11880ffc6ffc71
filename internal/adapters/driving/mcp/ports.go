package mcp

import (
	"github.com/kush-lhmm/sampann-search/internal/core/ports/driving"
)

// Ports aggregates all driving port interfaces required by the MCP server.
// This provides a single injection point for dependency injection.
type Ports struct {
	// Search provides product search.
	Search driving.SearchService

	// Compare picks the best offer for two products.
	Compare driving.CompareService

	// Assistant answers free-form shopper questions.
	Assistant driving.AssistantService

	// Catalog exposes product cards as resources.
	Catalog driving.CatalogService
}

// Validate ensures all required ports are set.
// Returns an error if any required port is nil.
func (p *Ports) Validate() error {
	if p.Search == nil {
		return ErrMissingSearchService
	}
	// Compare, Assistant and Catalog only gate their own tools and resources.
	return nil
}
