package driven

import (
	"context"

	"github.com/kush-lhmm/sampann-search/internal/core/domain"
)

// PostProcessor turns a product card into indexable passages.
// PostProcessors are chained in a pipeline (e.g., summary passages, description chunking).
type PostProcessor interface {
	// Name returns the processor name for logging and configuration.
	Name() string

	// Process receives the passages built so far for card and returns the
	// new list. Processors that add passages append to the input.
	Process(ctx context.Context, card *domain.ProductCard, passages []domain.Passage) ([]domain.Passage, error)
}

// PostProcessorPipeline chains multiple PostProcessors.
type PostProcessorPipeline interface {
	// Process runs the card through all processors in order.
	// Returns the final passages after all processing.
	Process(ctx context.Context, card *domain.ProductCard) ([]domain.Passage, error)
}
