// Package mcp provides an MCP (Model Context Protocol) server adapter for
// the product search pipeline. It lets AI assistants search, compare and
// ask questions about the Tata Sampann catalog.
package mcp

import "errors"

// ErrMissingSearchService is returned when the search service is not provided.
var ErrMissingSearchService = errors.New("mcp: search service is required")
