package driven

import (
	"context"
	"time"

	"github.com/kush-lhmm/sampann-search/internal/core/domain"
)

// ResultCache stores search results keyed by a request fingerprint.
type ResultCache interface {
	// Get returns a cached result or domain.ErrNotFound on a miss.
	Get(ctx context.Context, key string) (*domain.SearchResult, error)

	// Set stores a result for ttl.
	Set(ctx context.Context, key string, result *domain.SearchResult, ttl time.Duration) error

	// Flush drops every cached result.
	Flush(ctx context.Context) error

	// Close releases resources.
	Close() error
}
