// Package domain defines the core business entities for the product search pipeline.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - ProductCard: The authoritative record for one catalog product
//   - Passage: An independently embedded unit of product text
//   - Hit: A ranked search result surfaced to a caller
//   - QueryFilters: Constraints extracted from a free-text query
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
