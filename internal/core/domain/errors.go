package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	// Query parsing never returns it; unparsable constraints are dropped instead.
	ErrInvalidInput = errors.New("invalid input")

	// ErrConfigNotFound indicates a configuration key has no value.
	ErrConfigNotFound = errors.New("config key not found")

	// Capability Errors.

	// ErrCapabilityUnavailable indicates an explicitly requested capability
	// (such as the re-ranker) is not provisioned. It is fatal and never retried.
	ErrCapabilityUnavailable = errors.New("capability unavailable")

	// ErrUpstreamFailure indicates a call into the index, scorer, embedder or
	// language model failed.
	ErrUpstreamFailure = errors.New("upstream failure")

	// Evidence Errors.

	// ErrNoEvidence indicates the grounding filter rejected every hit.
	// Callers answer with a clarification message instead of an error code.
	ErrNoEvidence = errors.New("no grounded evidence")

	// ErrInsufficientData indicates a comparison target matched no product.
	ErrInsufficientData = errors.New("insufficient data")

	// ErrAmbiguousComparison indicates fewer than two comparison targets
	// could be recovered from the query.
	ErrAmbiguousComparison = errors.New("comparison needs exactly two products")
)
