// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
//   - CardStore: Authoritative product card lookup
//   - PassageIndex: Nearest-neighbour search over embedded passages
//   - EmbeddingService: Turns query and passage text into vectors
//   - ConfigStore: Application configuration
//
// # Optional Interfaces
//
// These can be nil. Callers that explicitly ask for a missing capability
// get domain.ErrCapabilityUnavailable; everything else degrades:
//
//   - Reranker: Batched pairwise relevance scoring
//   - LLMService: Answer synthesis over grounded evidence
//   - ResultCache: Search result caching
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter package
package driven
