package driven

import (
	"context"

	"github.com/kush-lhmm/sampann-search/internal/core/domain"
)

// PassageIndex provides nearest-neighbour search over embedded passages.
type PassageIndex interface {
	// Upsert stores passages with their embeddings. Both slices have equal length.
	Upsert(ctx context.Context, passages []domain.Passage, embeddings [][]float32) error

	// Search returns up to k passages closest to the query vector,
	// ordered by ascending distance.
	Search(ctx context.Context, query []float32, k int, filter PassageFilter) ([]PassageMatch, error)

	// Count returns the number of indexed passages.
	Count(ctx context.Context) (int, error)

	// Close releases resources.
	Close() error
}

// PassageFilter restricts a passage search by exact metadata.
type PassageFilter struct {
	// Category keeps only passages whose card category equals this value.
	Category string
}

// PassageMatch represents a similarity search result.
type PassageMatch struct {
	// Passage is the matched passage.
	Passage domain.Passage

	// Distance is the cosine distance (0 = identical). Lower is better.
	Distance float64
}
