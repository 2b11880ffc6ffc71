package driving

import (
	"context"

	"github.com/kush-lhmm/sampann-search/internal/core/domain"
)

// SearchService provides product search to external actors.
type SearchService interface {
	// Search runs the retrieval and ranking pipeline for one request.
	// It returns domain.ErrCapabilityUnavailable when the request asks for a
	// re-ranker that is not provisioned, and wraps domain.ErrUpstreamFailure
	// when the index, embedder or scorer fails.
	Search(ctx context.Context, req domain.SearchRequest) (*domain.SearchResult, error)
}

// CompareService picks the best offer for each of two products.
type CompareService interface {
	// Compare splits a free-text query into two targets and compares them.
	// Returns domain.ErrAmbiguousComparison if two targets cannot be recovered.
	Compare(ctx context.Context, query string) (*domain.Comparison, error)

	// CompareTargets compares two explicit targets.
	// Returns domain.ErrInsufficientData if either target matches nothing.
	CompareTargets(ctx context.Context, targets [2]string) (*domain.Comparison, error)
}
